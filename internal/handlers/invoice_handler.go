package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"property-service/internal/health"
	"property-service/internal/models"
	"property-service/internal/services"
)

type InvoiceHandler struct {
	invoiceService *services.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// CreateInvoice creates an invoice with its line items
// @Summary Create an invoice
// @Description Creates one invoice per contract per billing period with its line items
// @Tags invoices
// @Accept json
// @Produce json
// @Param invoice body models.CreateInvoiceRequest true "Invoice data"
// @Success 201 {object} models.Invoice
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req models.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), &req)
	if err != nil {
		health.RecordInvoiceOperation("create", false)
		ServiceErrorResponse(c, err)
		return
	}

	health.RecordInvoiceOperation("create", true)
	SuccessResponse(c, http.StatusCreated, "Invoice created", invoice)
}

// GetInvoice returns one invoice shaped for display
// @Summary Get an invoice
// @Description Returns the invoice with labelled line items and the derived overdue status
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} services.InvoiceView
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid invoice ID", nil)
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		ServiceErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "Invoice retrieved", invoice)
}

// UpdateInvoiceStatus flips an invoice between Unpaid and Paid
// @Summary Update invoice status
// @Description Marks an invoice Paid (stamping the paid date) or back to Unpaid
// @Tags invoices
// @Accept json
// @Produce json
// @Param id path string true "Invoice ID"
// @Param status body models.UpdateInvoiceStatusRequest true "New status"
// @Success 200 {object} models.Invoice
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateInvoiceStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid invoice ID", nil)
		return
	}

	var req models.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error(), nil)
		return
	}

	invoice, err := h.invoiceService.UpdateInvoiceStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		health.RecordInvoiceOperation("update_status", false)
		ServiceErrorResponse(c, err)
		return
	}

	health.RecordInvoiceOperation("update_status", true)
	SuccessResponse(c, http.StatusOK, "Invoice status updated", invoice)
}

// DeleteInvoice removes an unpaid invoice
// @Summary Delete an invoice
// @Description Deletes an unpaid invoice and its line items; paid invoices are refused
// @Tags invoices
// @Produce json
// @Param id path string true "Invoice ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid invoice ID", nil)
		return
	}

	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), id); err != nil {
		health.RecordInvoiceOperation("delete", false)
		ServiceErrorResponse(c, err)
		return
	}

	health.RecordInvoiceOperation("delete", true)
	SuccessResponse(c, http.StatusOK, "Invoice deleted", nil)
}
