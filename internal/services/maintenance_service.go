package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"property-service/internal/events"
	"property-service/internal/models"
	"property-service/internal/repository"
)

// MaintenanceService handles maintenance request business logic
type MaintenanceService struct {
	maintenanceRepo repository.MaintenanceRepository
	contractRepo    repository.ContractRepository
	publisher       *events.Client
	logger          *logrus.Logger
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(maintenanceRepo repository.MaintenanceRepository, contractRepo repository.ContractRepository, publisher *events.Client, logger *logrus.Logger) *MaintenanceService {
	return &MaintenanceService{
		maintenanceRepo: maintenanceRepo,
		contractRepo:    contractRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

// FileRequest creates a maintenance request. The room must be the one
// the tenant currently leases.
func (s *MaintenanceService) FileRequest(ctx context.Context, tenantID uuid.UUID, req *models.CreateMaintenanceRequest) (*models.MaintenanceRequest, error) {
	current, err := s.contractRepo.GetCurrentByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewForbiddenError("maintenance", "tenant has no active lease")
		}
		return nil, fmt.Errorf("failed to load current contract: %w", err)
	}
	if current.RoomID != req.RoomID {
		return nil, NewForbiddenError("maintenance", "room is not leased by this tenant")
	}

	request, err := s.maintenanceRepo.Create(ctx, &models.MaintenanceRequest{
		RoomID:      req.RoomID,
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to create maintenance request")
		return nil, fmt.Errorf("failed to create maintenance request: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": request.ID,
		"room_id":    request.RoomID,
		"tenant_id":  request.TenantID,
	}).Info("Maintenance request filed")

	if pubErr := s.publisher.PublishMaintenanceEvent(ctx, &events.MaintenanceEvent{
		RequestID: request.ID.String(),
		RoomID:    request.RoomID.String(),
		TenantID:  request.TenantID.String(),
		Title:     request.Title,
	}); pubErr != nil {
		s.logger.WithError(pubErr).Warn("Failed to publish maintenance event")
	}

	return request, nil
}

// ListForTenant returns the tenant's requests, newest first.
func (s *MaintenanceService) ListForTenant(ctx context.Context, tenantID uuid.UUID) ([]models.MaintenanceRequest, error) {
	requests, err := s.maintenanceRepo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance requests: %w", err)
	}
	return requests, nil
}

// CancelRequest cancels the tenant's own request unless it has already
// reached a terminal state.
func (s *MaintenanceService) CancelRequest(ctx context.Context, tenantID, requestID uuid.UUID) (*models.MaintenanceRequest, error) {
	request, err := s.maintenanceRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, s.mapMaintenanceError(err)
	}
	if request.TenantID != tenantID {
		return nil, NewForbiddenError("maintenance", "request belongs to another tenant")
	}

	cancelled, err := s.maintenanceRepo.Cancel(ctx, requestID)
	if err != nil {
		return nil, s.mapMaintenanceError(err)
	}

	s.logger.WithField("request_id", requestID).Info("Maintenance request cancelled")
	return cancelled, nil
}

// ResolveRequest moves a request to InProgress or Completed from the
// back office.
func (s *MaintenanceService) ResolveRequest(ctx context.Context, requestID uuid.UUID, req *models.ResolveMaintenanceRequest) (*models.MaintenanceRequest, error) {
	if req.Status != models.MaintenanceInProgress && req.Status != models.MaintenanceCompleted {
		return nil, NewValidationError("status", fmt.Sprintf("unknown status %q", req.Status), []string{
			models.MaintenanceInProgress, models.MaintenanceCompleted,
		})
	}

	resolved, err := s.maintenanceRepo.Resolve(ctx, requestID, req.Status, req.ResolutionNote)
	if err != nil {
		return nil, s.mapMaintenanceError(err)
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"status":     req.Status,
	}).Info("Maintenance request resolved")
	return resolved, nil
}

func (s *MaintenanceService) mapMaintenanceError(err error) error {
	switch {
	case errors.Is(err, repository.ErrMaintenanceTerminal):
		return NewConflictError("maintenance", "request is already completed or cancelled")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewNotFoundError("maintenance", "no such request")
	default:
		s.logger.WithError(err).Error("Maintenance operation failed")
		return fmt.Errorf("maintenance operation failed: %w", err)
	}
}
