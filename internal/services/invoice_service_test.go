package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"property-service/internal/models"
	"property-service/internal/repository"
)

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *models.Invoice, items []models.InvoiceLineItem) (*models.Invoice, error) {
	args := m.Called(ctx, invoice, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Invoice, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockInvoiceRepo) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.Invoice, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func newTestInvoiceService(repo *mockInvoiceRepo) *InvoiceService {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewInvoiceService(repo, nil, logger)
}

func dueOn(t time.Time) *time.Time {
	return &t
}

func TestCreateInvoice_PeriodFromDueDate(t *testing.T) {
	repo := new(mockInvoiceRepo)
	svc := newTestInvoiceService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.BillingPeriod == "2025-03"
	}), mock.Anything).Return(&models.Invoice{ID: uuid.New(), BillingPeriod: "2025-03"}, nil)

	_, err := svc.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{
		ContractID: uuid.New(),
		DueDate:    "2025-03-15",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateInvoice_PeriodDefaultsToCurrentMonth(t *testing.T) {
	repo := new(mockInvoiceRepo)
	svc := newTestInvoiceService(repo)

	thisMonth := time.Now().Format("2006-01")
	repo.On("Create", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.BillingPeriod == thisMonth && inv.DueDate == nil
	}), mock.Anything).Return(&models.Invoice{ID: uuid.New(), BillingPeriod: thisMonth}, nil)

	// No billing period and no due date: the current year-month applies.
	_, err := svc.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{
		ContractID: uuid.New(),
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateInvoice_ExplicitPeriodWins(t *testing.T) {
	repo := new(mockInvoiceRepo)
	svc := newTestInvoiceService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.BillingPeriod == "2025-02"
	}), mock.Anything).Return(&models.Invoice{ID: uuid.New(), BillingPeriod: "2025-02"}, nil)

	_, err := svc.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{
		ContractID:    uuid.New(),
		BillingPeriod: "2025-02",
		DueDate:       "2025-03-15",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateInvoice_TotalFromItems(t *testing.T) {
	repo := new(mockInvoiceRepo)
	svc := newTestInvoiceService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.TotalAmount == 3550000
	}), mock.Anything).Return(&models.Invoice{ID: uuid.New()}, nil)

	_, err := svc.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{
		ContractID: uuid.New(),
		DueDate:    "2025-03-15",
		RoomRent:   3000000,
		Items: []models.InvoiceItemRequest{
			{ServiceType: models.ServiceElectricity, Amount: 437500},
			{ServiceType: models.ServiceWater, Amount: 112500},
		},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestCreateInvoice_Validation(t *testing.T) {
	repo := new(mockInvoiceRepo)
	svc := newTestInvoiceService(repo)
	ctx := context.Background()

	_, err := svc.CreateInvoice(ctx, &models.CreateInvoiceRequest{ContractID: uuid.New(), DueDate: "15/03/2025"})
	_, ok := IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.CreateInvoice(ctx, &models.CreateInvoiceRequest{ContractID: uuid.New(), DueDate: "2025-03-15", BillingPeriod: "2025-13"})
	_, ok = IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.CreateInvoice(ctx, &models.CreateInvoiceRequest{ContractID: uuid.New(), DueDate: "2025-03-15", Type: "Weekly"})
	_, ok = IsValidationError(err)
	assert.True(t, ok)

	repo.AssertNotCalled(t, "Create")
}

func TestCreateInvoice_DuplicateMapsToConflict(t *testing.T) {
	repo := new(mockInvoiceRepo)
	svc := newTestInvoiceService(repo)

	repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, gorm.ErrDuplicatedKey)

	_, err := svc.CreateInvoice(context.Background(), &models.CreateInvoiceRequest{
		ContractID: uuid.New(),
		DueDate:    "2025-03-15",
	})
	_, ok := IsConflictError(err)
	assert.True(t, ok)
}

func TestDeleteInvoice_PaidMapsToForbidden(t *testing.T) {
	repo := new(mockInvoiceRepo)
	svc := newTestInvoiceService(repo)

	repo.On("Delete", mock.Anything, mock.Anything).Return(repository.ErrInvoicePaid)

	err := svc.DeleteInvoice(context.Background(), uuid.New())
	_, ok := IsForbiddenError(err)
	assert.True(t, ok)
}

func TestUpdateInvoiceStatus_RejectsUnknown(t *testing.T) {
	repo := new(mockInvoiceRepo)
	svc := newTestInvoiceService(repo)

	_, err := svc.UpdateInvoiceStatus(context.Background(), uuid.New(), "Overdue")
	_, ok := IsValidationError(err)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "UpdateStatus")
}

func TestComputeDisplayStatus(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)

	paid := &models.Invoice{Status: models.InvoicePaid, DueDate: dueOn(now.AddDate(0, 0, -30))}
	status, days := ComputeDisplayStatus(paid, now)
	assert.Equal(t, models.InvoicePaid, status)
	assert.Equal(t, 0, days)

	overdue := &models.Invoice{Status: models.InvoiceUnpaid, DueDate: dueOn(now.AddDate(0, 0, -1))}
	status, days = ComputeDisplayStatus(overdue, now)
	assert.Equal(t, models.InvoiceOverdue, status)
	assert.Equal(t, 1, days)

	longOverdue := &models.Invoice{Status: models.InvoiceUnpaid, DueDate: dueOn(now.AddDate(0, 0, -45))}
	status, days = ComputeDisplayStatus(longOverdue, now)
	assert.Equal(t, models.InvoiceOverdue, status)
	assert.Equal(t, 45, days)

	// Due today is still just unpaid.
	dueToday := &models.Invoice{Status: models.InvoiceUnpaid, DueDate: dueOn(now)}
	status, days = ComputeDisplayStatus(dueToday, now)
	assert.Equal(t, models.InvoiceUnpaid, status)
	assert.Equal(t, 0, days)

	dueTomorrow := &models.Invoice{Status: models.InvoiceUnpaid, DueDate: dueOn(now.AddDate(0, 0, 1))}
	status, _ = ComputeDisplayStatus(dueTomorrow, now)
	assert.Equal(t, models.InvoiceUnpaid, status)

	// No due date means it can never read as overdue.
	noDue := &models.Invoice{Status: models.InvoiceUnpaid}
	status, days = ComputeDisplayStatus(noDue, now)
	assert.Equal(t, models.InvoiceUnpaid, status)
	assert.Equal(t, 0, days)
}
