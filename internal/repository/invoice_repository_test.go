package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"property-service/internal/models"
)

func createTestLease(t *testing.T, db *gorm.DB) *models.Contract {
	room := createTestRoom(t, db)
	contract, err := NewContractRepository(db).CreateLease(context.Background(), leaseParams(room.ID, "0901234567", "111111"))
	require.NoError(t, err)
	return contract
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func monthlyInvoice(contract *models.Contract, period string) *models.Invoice {
	return &models.Invoice{
		ContractID:    contract.ID,
		BillingPeriod: period,
		IssueDate:     time.Now(),
		DueDate:       datePtr(time.Now().AddDate(0, 0, 10)),
		RoomRent:      3000000,
		TotalAmount:   3550000,
		Status:        models.InvoiceUnpaid,
		Type:          models.InvoiceMonthly,
	}
}

func TestInvoiceCreate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	prev, curr := 1200.0, 1325.0
	items := []models.InvoiceLineItem{
		{ServiceType: models.ServiceElectricity, PreviousReading: &prev, CurrentReading: &curr, UnitPrice: 3500, Amount: 437500},
		{ServiceType: models.ServiceWater, UnitPrice: 15000, Amount: 112500},
	}

	invoice, err := repo.Create(ctx, monthlyInvoice(contract, "2025-03"), items)
	require.NoError(t, err)

	loaded, err := repo.GetByID(ctx, invoice.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)

	// Line numbers follow submission order.
	assert.Equal(t, 0, loaded.Items[0].LineNo)
	assert.Equal(t, models.ServiceElectricity, loaded.Items[0].ServiceType)
	assert.Equal(t, 1, loaded.Items[1].LineNo)
	assert.Equal(t, models.ServiceWater, loaded.Items[1].ServiceType)
}

func TestInvoiceCreate_DuplicatePeriod(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	_, err := repo.Create(ctx, monthlyInvoice(contract, "2025-03"), nil)
	require.NoError(t, err)

	_, err = repo.Create(ctx, monthlyInvoice(contract, "2025-03"), nil)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	// A different period for the same contract is fine.
	_, err = repo.Create(ctx, monthlyInvoice(contract, "2025-04"), nil)
	assert.NoError(t, err)
}

func TestInvoiceCreate_UnknownContract(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	orphan := monthlyInvoice(&models.Contract{}, "2025-03")
	_, err := repo.Create(ctx, orphan, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestInvoiceUpdateStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	invoice, err := repo.Create(ctx, monthlyInvoice(contract, "2025-03"), nil)
	require.NoError(t, err)

	paid, err := repo.UpdateStatus(ctx, invoice.ID, models.InvoicePaid)
	require.NoError(t, err)

	var stored models.Invoice
	require.NoError(t, db.First(&stored, "id = ?", paid.ID).Error)
	assert.Equal(t, models.InvoicePaid, stored.Status)
	require.NotNil(t, stored.PaidDate)

	// Flipping back clears the paid date.
	_, err = repo.UpdateStatus(ctx, invoice.ID, models.InvoiceUnpaid)
	require.NoError(t, err)
	stored = models.Invoice{} // gorm leaves stale pointer fields when scanning NULL into a reused struct
	require.NoError(t, db.First(&stored, "id = ?", invoice.ID).Error)
	assert.Equal(t, models.InvoiceUnpaid, stored.Status)
	assert.Nil(t, stored.PaidDate)
}

func TestInvoiceDelete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	items := []models.InvoiceLineItem{{ServiceType: models.ServiceWater, Amount: 100000}}
	invoice, err := repo.Create(ctx, monthlyInvoice(contract, "2025-03"), items)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, invoice.ID))

	// Line items went with it.
	var itemCount int64
	require.NoError(t, db.Model(&models.InvoiceLineItem{}).Where("invoice_id = ?", invoice.ID).Count(&itemCount).Error)
	assert.EqualValues(t, 0, itemCount)
}

func TestInvoiceDelete_PaidRefused(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	invoice, err := repo.Create(ctx, monthlyInvoice(contract, "2025-03"), nil)
	require.NoError(t, err)
	_, err = repo.UpdateStatus(ctx, invoice.ID, models.InvoicePaid)
	require.NoError(t, err)

	err = repo.Delete(ctx, invoice.ID)
	assert.ErrorIs(t, err, ErrInvoicePaid)

	// Still there.
	_, err = repo.GetByID(ctx, invoice.ID)
	assert.NoError(t, err)
}

func TestInvoiceListByTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	contract := createTestLease(t, db)
	ctx := context.Background()

	_, err := repo.Create(ctx, monthlyInvoice(contract, "2025-03"), nil)
	require.NoError(t, err)
	_, err = repo.Create(ctx, monthlyInvoice(contract, "2025-04"), nil)
	require.NoError(t, err)

	invoices, err := repo.ListByTenant(ctx, contract.TenantID)
	require.NoError(t, err)
	assert.Len(t, invoices, 2)

	other, err := repo.ListByTenant(ctx, contract.RoomID)
	require.NoError(t, err)
	assert.Empty(t, other)
}
