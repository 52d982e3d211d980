package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"property-service/internal/models"
)

// ErrMaintenanceTerminal is returned when a state change is attempted
// on a completed or cancelled request.
var ErrMaintenanceTerminal = errors.New("maintenance request is in a terminal state")

type MaintenanceRepository interface {
	Create(ctx context.Context, request *models.MaintenanceRequest) (*models.MaintenanceRequest, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.MaintenanceRequest, error)
	Cancel(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	Resolve(ctx context.Context, id uuid.UUID, status, note string) (*models.MaintenanceRequest, error)
}

type maintenanceRepository struct {
	db *gorm.DB
}

// NewMaintenanceRepository creates a new maintenance repository
func NewMaintenanceRepository(db *gorm.DB) MaintenanceRepository {
	return &maintenanceRepository{db: db}
}

func (r *maintenanceRepository) Create(ctx context.Context, request *models.MaintenanceRequest) (*models.MaintenanceRequest, error) {
	if request.Status == "" {
		request.Status = models.MaintenanceNew
	}
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	err := r.db.WithContext(ctx).
		Preload("Room").
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *maintenanceRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]models.MaintenanceRequest, error) {
	var requests []models.MaintenanceRequest
	err := r.db.WithContext(ctx).
		Preload("Room").
		Where("tenant_id = ?", tenantID).
		Order("request_date DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// Cancel moves a request to Cancelled unless it is already terminal.
func (r *maintenanceRepository) Cancel(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			return err
		}
		if request.Terminal() {
			return ErrMaintenanceTerminal
		}
		request.Status = models.MaintenanceCancelled
		return tx.Model(&request).Update("status", models.MaintenanceCancelled).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// Resolve transitions a request to InProgress or Completed. Completing
// stamps the resolved date.
func (r *maintenanceRepository) Resolve(ctx context.Context, id uuid.UUID, status, note string) (*models.MaintenanceRequest, error) {
	var request models.MaintenanceRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&request, "id = ?", id).Error; err != nil {
			return err
		}
		if request.Terminal() {
			return ErrMaintenanceTerminal
		}

		updates := map[string]interface{}{"status": status}
		if note != "" {
			updates["resolution_note"] = note
		}
		if status == models.MaintenanceCompleted {
			now := time.Now()
			updates["resolved_date"] = &now
			request.ResolvedDate = &now
		}
		request.Status = status
		if note != "" {
			request.ResolutionNote = note
		}
		return tx.Model(&models.MaintenanceRequest{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}
