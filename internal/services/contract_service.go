package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"property-service/internal/cache"
	"property-service/internal/events"
	"property-service/internal/models"
	"property-service/internal/repository"
)

const dateLayout = "2006-01-02"

// ContractService handles lease lifecycle business logic
type ContractService struct {
	contractRepo   repository.ContractRepository
	publisher      *events.Client
	occupancyCache *cache.OccupancyCache
	logger         *logrus.Logger
}

// NewContractService creates a new contract service
func NewContractService(contractRepo repository.ContractRepository, publisher *events.Client, occupancyCache *cache.OccupancyCache, logger *logrus.Logger) *ContractService {
	return &ContractService{
		contractRepo:   contractRepo,
		publisher:      publisher,
		occupancyCache: occupancyCache,
		logger:         logger,
	}
}

// CreateContract registers a lease: it validates the request, generates
// the tenant's portal secret and delegates the multi-table write to the
// repository transaction. The plaintext secret is returned exactly once.
func (s *ContractService) CreateContract(ctx context.Context, req *models.CreateContractRequest, photoPaths []string, contractFileURL *string) (*models.CreateContractResult, error) {
	startDate, endDate, err := parseContractDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.DepositAmount < 0 {
		return nil, NewValidationError("deposit_amount", "must not be negative", nil)
	}
	if req.RentAmount < 0 {
		return nil, NewValidationError("rent_amount", "must not be negative", nil)
	}
	if strings.TrimSpace(req.Phone) == "" {
		return nil, NewValidationError("phone", "is required", nil)
	}
	if strings.TrimSpace(req.FullName) == "" {
		return nil, NewValidationError("full_name", "is required", nil)
	}

	secret, err := generatePortalSecret()
	if err != nil {
		s.logger.WithError(err).Error("Failed to generate portal secret")
		return nil, fmt.Errorf("failed to generate portal secret: %w", err)
	}

	contract, err := s.contractRepo.CreateLease(ctx, &repository.CreateLeaseParams{
		RoomID:          req.RoomID,
		FullName:        strings.TrimSpace(req.FullName),
		Phone:           strings.TrimSpace(req.Phone),
		IDCardPhotos:    photoPaths,
		ContractFileURL: contractFileURL,
		StartDate:       startDate,
		EndDate:         endDate,
		DepositAmount:   req.DepositAmount,
		RentAmount:      req.RentAmount,
		Notes:           req.Notes,
		PortalSecret:    secret,
	})
	if err != nil {
		return nil, s.mapContractError(err, "room")
	}

	s.logger.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"room_id":     contract.RoomID,
		"tenant_id":   contract.TenantID,
	}).Info("Lease contract created")

	s.publishContractEvent(ctx, events.EventContractCreated, contract)
	s.invalidateOccupancy()

	return &models.CreateContractResult{
		ContractID: contract.ID,
		Password:   secret,
	}, nil
}

// UpdateContract edits a contract. A password of at least six
// characters after trimming rotates the tenant's portal secret; shorter
// values are ignored and the stored credential survives.
func (s *ContractService) UpdateContract(ctx context.Context, id uuid.UUID, req *models.UpdateContractRequest) (*models.Contract, error) {
	startDate, endDate, err := parseContractDates(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	if req.Status != "" && !validContractStatus(req.Status) {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", req.Status), []string{
			models.ContractActive, models.ContractTerminated, models.ContractExpired, models.ContractUnoccupied,
		})
	}

	newSecret := strings.TrimSpace(req.Password)
	if len(newSecret) < 6 {
		newSecret = ""
	}

	contract, err := s.contractRepo.UpdateLease(ctx, &repository.UpdateLeaseParams{
		ContractID:    id,
		StartDate:     startDate,
		EndDate:       endDate,
		DepositAmount: req.DepositAmount,
		RentAmount:    req.RentAmount,
		Notes:         req.Notes,
		Status:        req.Status,
		NewSecret:     newSecret,
	})
	if err != nil {
		return nil, s.mapContractError(err, "contract")
	}

	s.logger.WithFields(logrus.Fields{
		"contract_id":    contract.ID,
		"status":         contract.Status,
		"secret_rotated": newSecret != "",
	}).Info("Lease contract updated")

	s.publishContractEvent(ctx, events.EventContractUpdated, contract)
	s.invalidateOccupancy()

	return contract, nil
}

// TerminateContract ends a lease and frees its room. Terminating an
// already-terminated contract succeeds and returns the same end state.
func (s *ContractService) TerminateContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.contractRepo.Terminate(ctx, id)
	if err != nil {
		return nil, s.mapContractError(err, "contract")
	}

	s.logger.WithFields(logrus.Fields{
		"contract_id": contract.ID,
		"room_id":     contract.RoomID,
	}).Info("Lease contract terminated")

	s.publishContractEvent(ctx, events.EventContractTerminated, contract)
	s.invalidateOccupancy()

	return contract, nil
}

// ContractView is a contract read enriched with the portal password
// recovered from the notes marker, when present.
type ContractView struct {
	*models.Contract
	PortalPassword string `json:"portalPassword,omitempty"`
}

// GetContract returns a contract with its tenant and room preloaded.
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*ContractView, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.mapContractError(err, "contract")
	}
	return &ContractView{
		Contract:       contract,
		PortalPassword: models.ExtractPortalPassword(contract.Notes),
	}, nil
}

// GetCurrentContractForTenant returns the tenant's active lease, if any.
func (s *ContractService) GetCurrentContractForTenant(ctx context.Context, tenantID uuid.UUID) (*models.Contract, error) {
	contract, err := s.contractRepo.GetCurrentByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("contract", "tenant has no current contract")
		}
		return nil, fmt.Errorf("failed to load current contract: %w", err)
	}
	return contract, nil
}

// invalidateOccupancy drops cached occupancy summaries after a
// lifecycle change touches room state. The cache is optional.
func (s *ContractService) invalidateOccupancy() {
	if s.occupancyCache != nil {
		s.occupancyCache.InvalidateAll()
	}
}

func (s *ContractService) mapContractError(err error, resource string) error {
	switch {
	case errors.Is(err, repository.ErrRoomOccupied):
		return NewConflictError("room", "room is not vacant")
	case errors.Is(err, repository.ErrRoomHasCurrentContract):
		return NewConflictError("room", "room already has a current contract")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return NewConflictError(resource, "a record with the same unique value already exists")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError(resource, "no such record")
	default:
		s.logger.WithError(err).Error("Contract operation failed")
		return fmt.Errorf("contract operation failed: %w", err)
	}
}

// publishContractEvent emits a lifecycle event; publish failures are
// logged, never surfaced to the caller.
func (s *ContractService) publishContractEvent(ctx context.Context, eventType string, contract *models.Contract) {
	err := s.publisher.PublishContractEvent(ctx, eventType, &events.ContractEvent{
		ContractID: contract.ID.String(),
		RoomID:     contract.RoomID.String(),
		TenantID:   contract.TenantID.String(),
		Status:     contract.Status,
	})
	if err != nil {
		s.logger.WithError(err).WithField("event_type", eventType).Warn("Failed to publish contract event")
	}
}

func parseContractDates(start, end string) (time.Time, time.Time, error) {
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("start_date", "must be a valid date in YYYY-MM-DD format", nil)
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("end_date", "must be a valid date in YYYY-MM-DD format", nil)
	}
	if !endDate.After(startDate) {
		return time.Time{}, time.Time{}, NewValidationError("end_date", "must be after start_date", nil)
	}
	return startDate, endDate, nil
}

func validContractStatus(status string) bool {
	switch status {
	case models.ContractActive, models.ContractTerminated, models.ContractExpired, models.ContractUnoccupied:
		return true
	}
	return false
}

// generatePortalSecret returns a random six digit secret in
// [100000, 999999].
func generatePortalSecret() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
