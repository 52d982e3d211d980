package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"property-service/internal/health"
	"property-service/internal/models"
	"property-service/internal/services"
	"property-service/internal/storage"
)

type ContractHandler struct {
	contractService *services.ContractService
	store           storage.Store
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractService *services.ContractService, store storage.Store) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		store:           store,
	}
}

// CreateContract creates a lease contract
// @Summary Create a lease contract
// @Description Creates a lease for a vacant room, registering the tenant and their portal credential in one transaction
// @Tags contracts
// @Accept multipart/form-data
// @Produce json
// @Param room_id formData string true "Room ID"
// @Param full_name formData string true "Tenant full name"
// @Param phone formData string true "Tenant phone number"
// @Param start_date formData string true "Start date (YYYY-MM-DD)"
// @Param end_date formData string true "End date (YYYY-MM-DD)"
// @Param cccd_front formData file false "ID card front photo"
// @Param cccd_back formData file false "ID card back photo"
// @Param contract_pdf formData file false "Signed lease PDF"
// @Success 201 {object} models.CreateContractResult
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/contracts [post]
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req models.CreateContractRequest
	if err := c.ShouldBind(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	photoPaths, err := h.savePhotos(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Failed to store ID card photos", err)
		return
	}

	var contractFileURL *string
	if file, err := c.FormFile("contract_pdf"); err == nil && file != nil {
		path, err := h.store.SaveUpload(file, "contracts")
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Failed to store contract file", err)
			return
		}
		contractFileURL = &path
	}

	result, err := h.contractService.CreateContract(c.Request.Context(), &req, photoPaths, contractFileURL)
	if err != nil {
		health.RecordContractOperation("create", false)
		ServiceErrorResponse(c, err)
		return
	}

	health.RecordContractOperation("create", true)
	SuccessResponse(c, http.StatusCreated, "Contract created", result)
}

// GetContract returns one contract
// @Summary Get a lease contract
// @Tags contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} services.ContractView
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/contracts/{id} [get]
func (h *ContractHandler) GetContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid contract ID", nil)
		return
	}

	contract, err := h.contractService.GetContract(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Contract retrieved", contract)
}

// UpdateContract edits a lease contract
// @Summary Update a lease contract
// @Description Edits contract fields; a password of six or more characters rotates the tenant's portal secret
// @Tags contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param contract body models.UpdateContractRequest true "Contract fields"
// @Success 200 {object} models.Contract
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/contracts/{id} [put]
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid contract ID", nil)
		return
	}

	var req models.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	contract, err := h.contractService.UpdateContract(c.Request.Context(), id, &req)
	if err != nil {
		health.RecordContractOperation("update", false)
		ServiceErrorResponse(c, err)
		return
	}

	health.RecordContractOperation("update", true)
	SuccessResponse(c, http.StatusOK, "Contract updated", contract)
}

// TerminateContract ends a lease
// @Summary Terminate a lease contract
// @Description Marks the contract Terminated and frees its room; repeat calls are no-ops
// @Tags contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} models.Contract
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/contracts/{id}/terminate [post]
func (h *ContractHandler) TerminateContract(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid contract ID", nil)
		return
	}

	contract, err := h.contractService.TerminateContract(c.Request.Context(), id)
	if err != nil {
		health.RecordContractOperation("terminate", false)
		ServiceErrorResponse(c, err)
		return
	}

	health.RecordContractOperation("terminate", true)
	SuccessResponse(c, http.StatusOK, "Contract terminated", contract)
}

// savePhotos stores the uploaded ID card photos, front then back.
func (h *ContractHandler) savePhotos(c *gin.Context) ([]string, error) {
	var paths []string
	for _, field := range []string{"cccd_front", "cccd_back"} {
		file, err := c.FormFile(field)
		if err != nil || file == nil {
			continue
		}
		path, err := h.store.SaveUpload(file, "id_cards")
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
