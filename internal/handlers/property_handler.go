package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"property-service/internal/models"
	"property-service/internal/services"
)

// PropertyHandler serves the back-office house and room endpoints.
type PropertyHandler struct {
	propertyService    *services.PropertyService
	maintenanceService *services.MaintenanceService
}

// NewPropertyHandler creates a new property handler
func NewPropertyHandler(propertyService *services.PropertyService, maintenanceService *services.MaintenanceService) *PropertyHandler {
	return &PropertyHandler{
		propertyService:    propertyService,
		maintenanceService: maintenanceService,
	}
}

// CreateHouse registers a boarding house
// @Summary Create a house
// @Tags houses
// @Accept json
// @Produce json
// @Param house body models.CreateHouseRequest true "House data"
// @Success 201 {object} models.House
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/houses [post]
func (h *PropertyHandler) CreateHouse(c *gin.Context) {
	var req models.CreateHouseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	house, err := h.propertyService.CreateHouse(c.Request.Context(), &req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "House created", house)
}

// GetHouse returns one house
// @Summary Get a house
// @Tags houses
// @Produce json
// @Param id path string true "House ID"
// @Success 200 {object} models.House
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/houses/{id} [get]
func (h *PropertyHandler) GetHouse(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid house ID", nil)
		return
	}

	house, err := h.propertyService.GetHouse(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "House retrieved", house)
}

// GetHouseOccupancy returns the house's room counts
// @Summary Get house occupancy
// @Description Returns total, occupied and vacant room counts for a house
// @Tags houses
// @Produce json
// @Param id path string true "House ID"
// @Success 200 {object} models.HouseOccupancy
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/houses/{id}/occupancy [get]
func (h *PropertyHandler) GetHouseOccupancy(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid house ID", nil)
		return
	}

	summary, err := h.propertyService.GetHouseOccupancy(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Occupancy retrieved", summary)
}

// CreateRoom registers a room under a house
// @Summary Create a room
// @Tags rooms
// @Accept json
// @Produce json
// @Param room body models.CreateRoomRequest true "Room data"
// @Success 201 {object} models.Room
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/rooms [post]
func (h *PropertyHandler) CreateRoom(c *gin.Context) {
	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	room, err := h.propertyService.CreateRoom(c.Request.Context(), &req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Room created", room)
}

// GetRoom returns one room with its current occupant
// @Summary Get a room
// @Tags rooms
// @Produce json
// @Param id path string true "Room ID"
// @Success 200 {object} services.RoomView
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/rooms/{id} [get]
func (h *PropertyHandler) GetRoom(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid room ID", nil)
		return
	}

	room, err := h.propertyService.GetRoom(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Room retrieved", room)
}

// ResolveMaintenanceRequest updates a maintenance request from the back office
// @Summary Resolve a maintenance request
// @Description Moves a request to InProgress or Completed with an optional resolution note
// @Tags maintenance
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param resolution body models.ResolveMaintenanceRequest true "Resolution"
// @Success 200 {object} models.MaintenanceRequest
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/maintenance/{id}/resolve [post]
func (h *PropertyHandler) ResolveMaintenanceRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request ID", nil)
		return
	}

	var req models.ResolveMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	request, err := h.maintenanceService.ResolveRequest(c.Request.Context(), id, &req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Maintenance request updated", request)
}
