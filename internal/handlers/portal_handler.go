package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"property-service/internal/models"
	"property-service/internal/services"
)

// PortalHandler serves the tenant-facing portal: everything here is
// scoped to the authenticated tenant from the session token.
type PortalHandler struct {
	contractService    *services.ContractService
	invoiceService     *services.InvoiceService
	maintenanceService *services.MaintenanceService
}

// NewPortalHandler creates a new portal handler
func NewPortalHandler(contractService *services.ContractService, invoiceService *services.InvoiceService, maintenanceService *services.MaintenanceService) *PortalHandler {
	return &PortalHandler{
		contractService:    contractService,
		invoiceService:     invoiceService,
		maintenanceService: maintenanceService,
	}
}

// GetMyContract returns the tenant's current lease
// @Summary Get the caller's current contract
// @Tags portal
// @Produce json
// @Security BearerAuth
// @Success 200 {object} services.ContractView
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/portal/contract [get]
func (h *PortalHandler) GetMyContract(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	current, err := h.contractService.GetCurrentContractForTenant(c.Request.Context(), tenantID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	contract, err := h.contractService.GetContract(c.Request.Context(), current.ID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Contract retrieved", contract)
}

// GetMyInvoices returns the tenant's invoices
// @Summary List the caller's invoices
// @Tags portal
// @Produce json
// @Security BearerAuth
// @Success 200 {array} services.InvoiceView
// @Router /api/v1/portal/invoices [get]
func (h *PortalHandler) GetMyInvoices(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	invoices, err := h.invoiceService.ListInvoicesForTenant(c.Request.Context(), tenantID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Invoices retrieved", invoices)
}

// FileMaintenanceRequest files a maintenance request
// @Summary File a maintenance request
// @Description Files a request against the room of the caller's active lease
// @Tags portal
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateMaintenanceRequest true "Request data"
// @Success 201 {object} models.MaintenanceRequest
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/portal/maintenance [post]
func (h *PortalHandler) FileMaintenanceRequest(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	var req models.CreateMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	request, err := h.maintenanceService.FileRequest(c.Request.Context(), tenantID, &req)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "Maintenance request filed", request)
}

// GetMyMaintenanceRequests lists the caller's maintenance requests
// @Summary List the caller's maintenance requests
// @Tags portal
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.MaintenanceRequest
// @Router /api/v1/portal/maintenance [get]
func (h *PortalHandler) GetMyMaintenanceRequests(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	requests, err := h.maintenanceService.ListForTenant(c.Request.Context(), tenantID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Maintenance requests retrieved", requests)
}

// CancelMaintenanceRequest cancels the caller's own request
// @Summary Cancel a maintenance request
// @Tags portal
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} models.MaintenanceRequest
// @Failure 403 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/portal/maintenance/{id}/cancel [post]
func (h *PortalHandler) CancelMaintenanceRequest(c *gin.Context) {
	tenantID, ok := tenantFromContext(c)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request ID", nil)
		return
	}

	request, err := h.maintenanceService.CancelRequest(c.Request.Context(), tenantID, requestID)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Maintenance request cancelled", request)
}

// tenantFromContext extracts the authenticated tenant ID set by the
// portal auth middleware. Writes the error response itself on failure.
func tenantFromContext(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("tenant_id")
	if !exists {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return uuid.Nil, false
	}
	tenantID, ok := value.(uuid.UUID)
	if !ok {
		ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return uuid.Nil, false
	}
	return tenantID, true
}
