package services

import (
	"context"
	"regexp"
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

type mockContractRepo struct {
	mock.Mock
}

func (m *mockContractRepo) CreateLease(ctx context.Context, params *repository.CreateLeaseParams) (*models.Contract, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) UpdateLease(ctx context.Context, params *repository.UpdateLeaseParams) (*models.Contract, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) Terminate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func (m *mockContractRepo) GetCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Contract, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Contract), args.Error(1)
}

func newTestContractService(repo *mockContractRepo) *ContractService {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewContractService(repo, nil, nil, logger)
}

func validCreateRequest() *models.CreateContractRequest {
	return &models.CreateContractRequest{
		RoomID:        uuid.New(),
		FullName:      "Nguyen Van A",
		Phone:         "0901234567",
		StartDate:     "2025-01-01",
		EndDate:       "2026-01-01",
		DepositAmount: 3000000,
		RentAmount:    3000000,
	}
}

func TestCreateContract_GeneratesSixDigitSecret(t *testing.T) {
	repo := new(mockContractRepo)
	svc := newTestContractService(repo)

	var captured *repository.CreateLeaseParams
	repo.On("CreateLease", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*repository.CreateLeaseParams)
		}).
		Return(&models.Contract{ID: uuid.New()}, nil)

	result, err := svc.CreateContract(context.Background(), validCreateRequest(), nil, nil)
	require.NoError(t, err)
	require.NotNil(t, captured)

	assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{5}$`), captured.PortalSecret)
	assert.Equal(t, captured.PortalSecret, result.Password)
}

func TestCreateContract_Validation(t *testing.T) {
	repo := new(mockContractRepo)
	svc := newTestContractService(repo)
	ctx := context.Background()

	bad := validCreateRequest()
	bad.StartDate = "01/01/2025"
	_, err := svc.CreateContract(ctx, bad, nil, nil)
	_, ok := IsValidationError(err)
	assert.True(t, ok)

	bad = validCreateRequest()
	bad.EndDate = "2024-01-01"
	_, err = svc.CreateContract(ctx, bad, nil, nil)
	_, ok = IsValidationError(err)
	assert.True(t, ok)

	bad = validCreateRequest()
	bad.Phone = "  "
	_, err = svc.CreateContract(ctx, bad, nil, nil)
	_, ok = IsValidationError(err)
	assert.True(t, ok)

	bad = validCreateRequest()
	bad.DepositAmount = -1
	_, err = svc.CreateContract(ctx, bad, nil, nil)
	_, ok = IsValidationError(err)
	assert.True(t, ok)

	repo.AssertNotCalled(t, "CreateLease")
}

func TestCreateContract_OccupiedRoomMapsToConflict(t *testing.T) {
	repo := new(mockContractRepo)
	svc := newTestContractService(repo)

	repo.On("CreateLease", mock.Anything, mock.Anything).Return(nil, repository.ErrRoomOccupied)

	_, err := svc.CreateContract(context.Background(), validCreateRequest(), nil, nil)
	_, ok := IsConflictError(err)
	assert.True(t, ok)
}

func TestCreateContract_DuplicateKeyMapsToConflict(t *testing.T) {
	repo := new(mockContractRepo)
	svc := newTestContractService(repo)

	// A concurrent insert can win the tenant-phone or credential
	// unique index inside the lease transaction.
	repo.On("CreateLease", mock.Anything, mock.Anything).Return(nil, gorm.ErrDuplicatedKey)

	_, err := svc.CreateContract(context.Background(), validCreateRequest(), nil, nil)
	_, ok := IsConflictError(err)
	assert.True(t, ok)
}

func TestUpdateContract_ShortPasswordIgnored(t *testing.T) {
	repo := new(mockContractRepo)
	svc := newTestContractService(repo)

	repo.On("UpdateLease", mock.Anything, mock.MatchedBy(func(p *repository.UpdateLeaseParams) bool {
		return p.NewSecret == ""
	})).Return(&models.Contract{ID: uuid.New()}, nil)

	_, err := svc.UpdateContract(context.Background(), uuid.New(), &models.UpdateContractRequest{
		StartDate: "2025-01-01",
		EndDate:   "2026-01-01",
		Password:  "123",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateContract_PasswordTrimmedBeforeLengthCheck(t *testing.T) {
	repo := new(mockContractRepo)
	svc := newTestContractService(repo)

	repo.On("UpdateLease", mock.Anything, mock.MatchedBy(func(p *repository.UpdateLeaseParams) bool {
		return p.NewSecret == "123456"
	})).Return(&models.Contract{ID: uuid.New()}, nil)

	_, err := svc.UpdateContract(context.Background(), uuid.New(), &models.UpdateContractRequest{
		StartDate: "2025-01-01",
		EndDate:   "2026-01-01",
		Password:  "  123456  ",
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUpdateContract_RejectsUnknownStatus(t *testing.T) {
	repo := new(mockContractRepo)
	svc := newTestContractService(repo)

	_, err := svc.UpdateContract(context.Background(), uuid.New(), &models.UpdateContractRequest{
		StartDate: "2025-01-01",
		EndDate:   "2026-01-01",
		Status:    "Paused",
	})
	_, ok := IsValidationError(err)
	assert.True(t, ok)
	repo.AssertNotCalled(t, "UpdateLease")
}

func TestTerminateContract(t *testing.T) {
	repo := new(mockContractRepo)
	svc := newTestContractService(repo)
	id := uuid.New()

	repo.On("Terminate", mock.Anything, id).Return(&models.Contract{
		ID:        id,
		Status:    models.ContractTerminated,
		IsCurrent: false,
	}, nil)

	contract, err := svc.TerminateContract(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ContractTerminated, contract.Status)
}

func TestGeneratePortalSecret_Range(t *testing.T) {
	for i := 0; i < 50; i++ {
		secret, err := generatePortalSecret()
		require.NoError(t, err)
		require.Len(t, secret, 6)
		assert.GreaterOrEqual(t, secret, "100000")
		assert.LessOrEqual(t, secret, "999999")
	}
}

func TestParseContractDates(t *testing.T) {
	start, end, err := parseContractDates("2025-01-01", "2026-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), end)

	_, _, err = parseContractDates("2025-01-01", "2025-01-01")
	_, ok := IsValidationError(err)
	assert.True(t, ok)
}
