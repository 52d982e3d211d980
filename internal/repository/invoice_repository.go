package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"property-service/internal/models"
)

// ErrInvoicePaid is returned when deleting a paid invoice: paid
// invoices are immutable.
var ErrInvoicePaid = errors.New("invoice is paid")

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) (*models.Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Invoice, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// Create inserts the invoice and its line items atomically. LineNo is
// assigned from the submitted order. A duplicate (contract, period)
// pair surfaces as gorm.ErrDuplicatedKey.
func (r *invoiceRepository) Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) (*models.Invoice, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if err := tx.First(&contract, "id = ?", invoice.ContractID).Error; err != nil {
			return err
		}

		if err := tx.Create(invoice).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].InvoiceID = invoice.ID
			items[i].LineNo = i
			if err := tx.Create(&items[i]).Error; err != nil {
				return fmt.Errorf("failed to create line item: %w", err)
			}
		}
		invoice.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_no ASC")
		}).
		Preload("Contract").
		Preload("Contract.Room").
		Preload("Contract.Tenant").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// UpdateStatus sets the stored status; Paid stamps the paid date, any
// other status clears it. Single-row update, no other invariant depends
// on it.
func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if status == models.InvoicePaid {
		now := time.Now()
		updates["paid_date"] = &now
	} else {
		updates["paid_date"] = nil
	}

	if err := r.db.WithContext(ctx).Model(&invoice).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}
	return &invoice, nil
}

// Delete removes an unpaid invoice and its line items atomically. Paid
// invoices are refused and left untouched.
func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		if err := tx.First(&invoice, "id = ?", id).Error; err != nil {
			return err
		}
		if invoice.Status == models.InvoicePaid {
			return ErrInvoicePaid
		}

		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceLineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete line items: %w", err)
		}
		if err := tx.Delete(&models.Invoice{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}
		return nil
	})
}

// ListByTenant returns the tenant's invoices, newest first, for the
// portal.
func (r *invoiceRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Joins("JOIN contracts ON contracts.id = invoices.contract_id").
		Where("contracts.tenant_id = ?", tenantID).
		Preload("Contract").
		Preload("Contract.Room").
		Order("invoices.issue_date DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant invoices: %w", err)
	}
	return invoices, nil
}
