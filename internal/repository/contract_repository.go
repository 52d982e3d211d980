package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"property-service/internal/models"
)

var (
	// ErrRoomOccupied is returned when the conditional claim of a room
	// affects zero rows: the room was taken between the caller's check
	// and the transaction.
	ErrRoomOccupied = errors.New("room is not vacant")

	// ErrRoomHasCurrentContract is returned when activating a contract
	// would create a second current contract for the same room.
	ErrRoomHasCurrentContract = errors.New("room already has a current contract")
)

// CreateLeaseParams is everything the lease creation transaction needs.
// PortalSecret is the freshly generated plaintext secret; only its
// bcrypt hash is persisted, plus the notes marker for legacy reads.
type CreateLeaseParams struct {
	RoomID          uuid.UUID
	FullName        string
	Phone           string
	Email           string
	IDCardPhotos    []string
	ContractFileURL *string
	StartDate       time.Time
	EndDate         time.Time
	DepositAmount   float64
	RentAmount      float64
	Notes           string
	PortalSecret    string
}

// UpdateLeaseParams carries a contract edit. Status "" keeps the stored
// state; NewSecret "" keeps the stored credential and notes marker.
type UpdateLeaseParams struct {
	ContractID    uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	DepositAmount float64
	RentAmount    float64
	Notes         string
	Status        string
	NewSecret     string
}

type ContractRepository interface {
	CreateLease(ctx context.Context, params *CreateLeaseParams) (*models.Contract, error)
	UpdateLease(ctx context.Context, params *UpdateLeaseParams) (*models.Contract, error)
	Terminate(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	GetCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Contract, error)
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

// CreateLease runs the whole lease creation as one transaction: tenant
// upsert by phone, contract insert, conditional room claim, credential
// upsert. Any step failing rolls the whole operation back.
func (r *contractRepository) CreateLease(ctx context.Context, params *CreateLeaseParams) (*models.Contract, error) {
	var contract *models.Contract

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tenant, err := upsertTenantByPhone(tx, params)
		if err != nil {
			return err
		}

		contract = &models.Contract{
			RoomID:          params.RoomID,
			TenantID:        tenant.ID,
			StartDate:       params.StartDate,
			EndDate:         params.EndDate,
			DepositAmount:   params.DepositAmount,
			RentAmount:      params.RentAmount,
			Notes:           models.AppendPasswordMarker(params.Notes, params.PortalSecret),
			ContractFileURL: params.ContractFileURL,
			Status:          models.ContractActive,
			IsCurrent:       true,
		}
		if err := tx.Create(contract).Error; err != nil {
			return fmt.Errorf("failed to create contract: %w", err)
		}

		if err := claimRoom(tx, params.RoomID); err != nil {
			return err
		}

		if err := upsertCredential(tx, tenant.ID, tenant.Phone, params.PortalSecret); err != nil {
			return err
		}

		contract.Tenant = tenant
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contract, nil
}

// UpdateLease edits contract fields, rotates or preserves the portal
// secret and its notes marker, and keeps room occupancy and the
// is_current flag consistent with the resulting state, all in one
// transaction.
func (r *contractRepository) UpdateLease(ctx context.Context, params *UpdateLeaseParams) (*models.Contract, error) {
	var updated *models.Contract

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract models.Contract
		if err := tx.First(&contract, "id = ?", params.ContractID).Error; err != nil {
			return err
		}

		status := params.Status
		if status == "" {
			status = contract.Status
		}

		notes := params.Notes
		if params.NewSecret != "" {
			// Rotate: drop the old marker, keep caller notes if any,
			// append the new marker, and re-key the credential.
			base := notes
			if base == "" {
				base = models.StripPasswordMarkers(contract.Notes)
			}
			notes = models.AppendPasswordMarker(base, params.NewSecret)

			var tenant models.Tenant
			if err := tx.First(&tenant, "id = ?", contract.TenantID).Error; err != nil {
				return fmt.Errorf("failed to load tenant: %w", err)
			}
			if err := upsertCredential(tx, tenant.ID, tenant.Phone, params.NewSecret); err != nil {
				return err
			}
		} else if notes == "" {
			// No new notes and no new secret: keep the stored notes,
			// marker included.
			notes = contract.Notes
		} else {
			// New notes replace the old text but the current secret's
			// marker survives the rewrite.
			notes = models.CarryPasswordMarker(notes, contract.Notes)
		}

		if err := tx.Model(&contract).Updates(map[string]interface{}{
			"start_date":     params.StartDate,
			"end_date":       params.EndDate,
			"deposit_amount": params.DepositAmount,
			"rent_amount":    params.RentAmount,
			"notes":          notes,
			"status":         status,
			"updated_at":     time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to update contract: %w", err)
		}

		if err := syncOccupancy(tx, &contract, status); err != nil {
			return err
		}

		updated = &models.Contract{}
		return tx.Preload("Tenant").Preload("Room").First(updated, "id = ?", contract.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Terminate marks the contract Terminated and non-current and frees its
// room, atomically. Terminating an already-terminated contract is a
// no-op that leaves the same end state.
func (r *contractRepository) Terminate(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&contract, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Model(&contract).Updates(map[string]interface{}{
			"status":     models.ContractTerminated,
			"is_current": false,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return fmt.Errorf("failed to terminate contract: %w", err)
		}

		if err := releaseRoom(tx, contract.RoomID); err != nil {
			return err
		}

		contract.Status = models.ContractTerminated
		contract.IsCurrent = false
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Preload("Room").
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// GetCurrentByTenant returns the tenant's newest current contract, or
// gorm.ErrRecordNotFound when the tenant has none.
func (r *contractRepository) GetCurrentByTenant(ctx context.Context, tenantID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND is_current = ?", tenantID, true).
		Order("created_at DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// upsertTenantByPhone reuses the tenant registered under the phone
// number, replacing document photos only when new ones were uploaded;
// otherwise it registers a new tenant with a placeholder document
// number.
func upsertTenantByPhone(tx *gorm.DB, params *CreateLeaseParams) (*models.Tenant, error) {
	var tenant models.Tenant
	err := tx.First(&tenant, "phone = ?", params.Phone).Error
	switch {
	case err == nil:
		if len(params.IDCardPhotos) > 0 {
			if err := tx.Model(&tenant).Updates(map[string]interface{}{
				"id_card_photos": models.EncodePhotoPaths(params.IDCardPhotos),
				"updated_at":     time.Now(),
			}).Error; err != nil {
				return nil, fmt.Errorf("failed to update tenant photos: %w", err)
			}
		}
		return &tenant, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		tenant = models.Tenant{
			FullName:     params.FullName,
			Phone:        params.Phone,
			Email:        params.Email,
			IDCardNumber: fmt.Sprintf("PENDING_%d", time.Now().UnixMilli()),
			IDCardPhotos: models.EncodePhotoPaths(params.IDCardPhotos),
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return nil, fmt.Errorf("failed to create tenant: %w", err)
		}
		return &tenant, nil
	default:
		return nil, fmt.Errorf("failed to look up tenant: %w", err)
	}
}

// claimRoom flips a vacant room to occupied with a conditional update
// so two concurrent lease creations cannot both take the same room.
func claimRoom(tx *gorm.DB, roomID uuid.UUID) error {
	var room models.Room
	if err := tx.First(&room, "id = ?", roomID).Error; err != nil {
		return err
	}

	result := tx.Model(&models.Room{}).
		Where("id = ? AND status = ?", roomID, models.RoomVacant).
		Updates(map[string]interface{}{
			"status":     models.RoomOccupied,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to claim room: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRoomOccupied
	}
	return nil
}

func releaseRoom(tx *gorm.DB, roomID uuid.UUID) error {
	if err := tx.Model(&models.Room{}).
		Where("id = ?", roomID).
		Updates(map[string]interface{}{
			"status":     models.RoomVacant,
			"updated_at": time.Now(),
		}).Error; err != nil {
		return fmt.Errorf("failed to release room: %w", err)
	}
	return nil
}

// syncOccupancy applies the occupancy side of a state change: releasing
// states free the room and clear is_current; Active re-claims the room
// and sets is_current, refusing if another contract currently holds it.
func syncOccupancy(tx *gorm.DB, contract *models.Contract, status string) error {
	switch {
	case models.ReleasesRoom(status):
		if err := tx.Model(&models.Contract{}).
			Where("id = ?", contract.ID).
			Update("is_current", false).Error; err != nil {
			return fmt.Errorf("failed to clear current flag: %w", err)
		}
		return releaseRoom(tx, contract.RoomID)

	case status == models.ContractActive:
		var competing int64
		if err := tx.Model(&models.Contract{}).
			Where("room_id = ? AND is_current = ? AND id <> ?", contract.RoomID, true, contract.ID).
			Count(&competing).Error; err != nil {
			return fmt.Errorf("failed to check current contracts: %w", err)
		}
		if competing > 0 {
			return ErrRoomHasCurrentContract
		}

		if err := tx.Model(&models.Contract{}).
			Where("id = ?", contract.ID).
			Update("is_current", true).Error; err != nil {
			return fmt.Errorf("failed to set current flag: %w", err)
		}

		// Manual reactivation claims the room regardless of its prior
		// state; the competing-contract check above is the guard.
		if err := tx.Model(&models.Room{}).
			Where("id = ?", contract.RoomID).
			Updates(map[string]interface{}{
				"status":     models.RoomOccupied,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return fmt.Errorf("failed to occupy room: %w", err)
		}
	}
	return nil
}

// upsertCredential writes the tenant's portal credential, hashing the
// secret. Username is the tenant's phone number.
func upsertCredential(tx *gorm.DB, tenantID uuid.UUID, phone, secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash secret: %w", err)
	}

	now := time.Now()
	var credential models.Credential
	err = tx.First(&credential, "tenant_id = ?", tenantID).Error
	switch {
	case err == nil:
		if err := tx.Model(&credential).Updates(map[string]interface{}{
			"password_hash":   string(hash),
			"password_set_at": now,
			"login_attempts":  0,
			"locked_until":    nil,
			"is_active":       true,
			"updated_at":      now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update credential: %w", err)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		credential = models.Credential{
			TenantID:      tenantID,
			Username:      phone,
			PasswordHash:  string(hash),
			IsActive:      true,
			PasswordSetAt: now,
		}
		if err := tx.Create(&credential).Error; err != nil {
			return fmt.Errorf("failed to create credential: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("failed to look up credential: %w", err)
	}
}
