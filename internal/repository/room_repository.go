package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"property-service/internal/models"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) (*models.Room, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	CurrentContract(ctx context.Context, roomID uuid.UUID) (*models.Contract, error)
	HouseOccupancy(ctx context.Context, houseID uuid.UUID) (*models.HouseOccupancy, error)
}

type roomRepository struct {
	db *gorm.DB
}

// NewRoomRepository creates a new room repository
func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

// Create inserts a vacant room and bumps the house's room counter in
// the same transaction.
func (r *roomRepository) Create(ctx context.Context, room *models.Room) (*models.Room, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var house models.House
		if err := tx.First(&house, "id = ?", room.HouseID).Error; err != nil {
			return err
		}

		room.Status = models.RoomVacant
		if err := tx.Create(room).Error; err != nil {
			return fmt.Errorf("failed to create room: %w", err)
		}

		if err := tx.Model(&models.House{}).
			Where("id = ?", room.HouseID).
			UpdateColumn("total_rooms", gorm.Expr("total_rooms + 1")).Error; err != nil {
			return fmt.Errorf("failed to update house room count: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return room, nil
}

func (r *roomRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).Preload("House").First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// CurrentContract returns the room's newest current contract with its
// tenant preloaded, or gorm.ErrRecordNotFound when the room is vacant.
func (r *roomRepository) CurrentContract(ctx context.Context, roomID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Tenant").
		Where("room_id = ? AND is_current = ?", roomID, true).
		Order("created_at DESC").
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// HouseOccupancy counts the house's rooms by occupancy state.
func (r *roomRepository) HouseOccupancy(ctx context.Context, houseID uuid.UUID) (*models.HouseOccupancy, error) {
	var house models.House
	if err := r.db.WithContext(ctx).First(&house, "id = ?", houseID).Error; err != nil {
		return nil, err
	}

	summary := &models.HouseOccupancy{HouseID: houseID}
	if err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("house_id = ?", houseID).
		Count(&summary.Total).Error; err != nil {
		return nil, fmt.Errorf("failed to count rooms: %w", err)
	}
	if err := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("house_id = ? AND status = ?", houseID, models.RoomOccupied).
		Count(&summary.Occupied).Error; err != nil {
		return nil, fmt.Errorf("failed to count occupied rooms: %w", err)
	}
	summary.Vacant = summary.Total - summary.Occupied
	return summary, nil
}
