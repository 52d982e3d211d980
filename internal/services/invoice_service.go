package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"property-service/internal/events"
	"property-service/internal/models"
	"property-service/internal/repository"
)

var billingPeriodRe = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// InvoiceService handles invoice business logic
type InvoiceService struct {
	invoiceRepo repository.InvoiceRepository
	publisher   *events.Client
	logger      *logrus.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(invoiceRepo repository.InvoiceRepository, publisher *events.Client, logger *logrus.Logger) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// InvoiceView is an invoice shaped for display: the stored state plus
// the derived overdue status and labelled line items.
type InvoiceView struct {
	*models.Invoice
	DisplayStatus string            `json:"displayStatus"`
	OverdueDays   int               `json:"overdueDays,omitempty"`
	ItemLabels    map[string]string `json:"itemLabels,omitempty"`
}

// CreateInvoice validates and creates an invoice with its line items.
// The billing period falls back from the caller's value to the due
// date's year-month to the current year-month.
func (s *InvoiceService) CreateInvoice(ctx context.Context, req *models.CreateInvoiceRequest) (*models.Invoice, error) {
	var dueDate *time.Time
	if req.DueDate != "" {
		parsed, err := time.Parse(dateLayout, req.DueDate)
		if err != nil {
			return nil, NewValidationError("due_date", "must be a valid date in YYYY-MM-DD format", nil)
		}
		dueDate = &parsed
	}
	if req.BillingPeriod != "" && !billingPeriodRe.MatchString(req.BillingPeriod) {
		return nil, NewValidationError("billing_period", "must be in YYYY-MM format", nil)
	}
	invoiceType := req.Type
	if invoiceType == "" {
		invoiceType = models.InvoiceMonthly
	}
	if invoiceType != models.InvoiceMonthly && invoiceType != models.InvoiceIncidental {
		return nil, NewValidationError("type", fmt.Sprintf("unknown invoice type %q", req.Type), []string{
			models.InvoiceMonthly, models.InvoiceIncidental,
		})
	}
	for i, item := range req.Items {
		if item.Amount < 0 {
			return nil, NewValidationError(fmt.Sprintf("items[%d].amount", i), "must not be negative", nil)
		}
	}

	period := req.BillingPeriod
	if period == "" && dueDate != nil {
		period = dueDate.Format("2006-01")
	}
	if period == "" {
		period = time.Now().Format("2006-01")
	}

	total := req.TotalAmount
	if total == 0 {
		total = req.RoomRent
		for _, item := range req.Items {
			total += item.Amount
		}
	}

	invoice := &models.Invoice{
		ContractID:    req.ContractID,
		BillingPeriod: period,
		IssueDate:     time.Now(),
		DueDate:       dueDate,
		RoomRent:      req.RoomRent,
		TotalAmount:   total,
		Status:        models.InvoiceUnpaid,
		Notes:         req.Notes,
		Type:          invoiceType,
	}

	items := make([]models.InvoiceLineItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = models.InvoiceLineItem{
			ServiceType:     item.ServiceType,
			PreviousReading: item.PreviousReading,
			CurrentReading:  item.CurrentReading,
			UnitPrice:       item.UnitPrice,
			Amount:          item.Amount,
		}
	}

	created, err := s.invoiceRepo.Create(ctx, invoice, items)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("contract", "no such contract")
		}
		return nil, s.mapInvoiceError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id":     created.ID,
		"contract_id":    created.ContractID,
		"billing_period": created.BillingPeriod,
		"total_amount":   created.TotalAmount,
	}).Info("Invoice created")

	s.publishInvoiceEvent(ctx, events.EventInvoiceCreated, created)

	return created, nil
}

// GetInvoice returns an invoice shaped for display.
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceView, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapInvoiceError(err)
	}
	return s.shapeInvoice(invoice), nil
}

// UpdateInvoiceStatus flips an invoice between Unpaid and Paid. Marking
// Paid stamps the paid date; marking Unpaid clears it.
func (s *InvoiceService) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*models.Invoice, error) {
	if status != models.InvoicePaid && status != models.InvoiceUnpaid {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", status), []string{
			models.InvoicePaid, models.InvoiceUnpaid,
		})
	}

	invoice, err := s.invoiceRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.mapInvoiceError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id": invoice.ID,
		"status":     status,
	}).Info("Invoice status updated")

	if status == models.InvoicePaid {
		s.publishInvoiceEvent(ctx, events.EventInvoicePaid, invoice)
	}

	return invoice, nil
}

// DeleteInvoice removes an unpaid invoice and its line items. Paid
// invoices are immutable and refuse deletion.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrInvoicePaid) {
			return NewForbiddenError("invoice", "paid invoices cannot be deleted")
		}
		return s.mapInvoiceError(err)
	}

	s.logger.WithField("invoice_id", id).Info("Invoice deleted")

	s.publishInvoiceEvent(ctx, events.EventInvoiceDeleted, &models.Invoice{ID: id})
	return nil
}

// ListInvoicesForTenant returns the tenant's invoices shaped for the
// portal, newest first.
func (s *InvoiceService) ListInvoicesForTenant(ctx context.Context, tenantID uuid.UUID) ([]*InvoiceView, error) {
	invoices, err := s.invoiceRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	views := make([]*InvoiceView, len(invoices))
	for i := range invoices {
		views[i] = s.shapeInvoice(&invoices[i])
	}
	return views, nil
}

func (s *InvoiceService) shapeInvoice(invoice *models.Invoice) *InvoiceView {
	status, overdueDays := ComputeDisplayStatus(invoice, time.Now())
	view := &InvoiceView{
		Invoice:       invoice,
		DisplayStatus: status,
		OverdueDays:   overdueDays,
	}
	if len(invoice.Items) > 0 {
		view.ItemLabels = make(map[string]string, len(invoice.Items))
		for i := range invoice.Items {
			item := &invoice.Items[i]
			view.ItemLabels[item.ID.String()] = item.ServiceLabel()
		}
	}
	return view
}

// ComputeDisplayStatus derives the status shown to users. Stored Paid
// stays Paid; an unpaid invoice past its due date reads as Overdue with
// the day count, never persisted.
func ComputeDisplayStatus(invoice *models.Invoice, now time.Time) (string, int) {
	if invoice.Status == models.InvoicePaid {
		return models.InvoicePaid, 0
	}

	if invoice.DueDate == nil {
		return models.InvoiceUnpaid, 0
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	due := time.Date(invoice.DueDate.Year(), invoice.DueDate.Month(), invoice.DueDate.Day(), 0, 0, 0, 0, now.Location())
	if due.Before(today) {
		days := int(today.Sub(due).Hours() / 24)
		return models.InvoiceOverdue, days
	}
	return models.InvoiceUnpaid, 0
}

func (s *InvoiceService) mapInvoiceError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewConflictError("invoice", "an invoice already exists for this contract and billing period")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError("invoice", "no such record")
	default:
		s.logger.WithError(err).Error("Invoice operation failed")
		return fmt.Errorf("invoice operation failed: %w", err)
	}
}

// publishInvoiceEvent emits an invoice event; failures are logged only.
func (s *InvoiceService) publishInvoiceEvent(ctx context.Context, eventType string, invoice *models.Invoice) {
	err := s.publisher.PublishInvoiceEvent(ctx, eventType, &events.InvoiceEvent{
		InvoiceID:     invoice.ID.String(),
		ContractID:    invoice.ContractID.String(),
		BillingPeriod: invoice.BillingPeriod,
		TotalAmount:   invoice.TotalAmount,
		Status:        invoice.Status,
	})
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("Failed to publish invoice event")
	}
}
