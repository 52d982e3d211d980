package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"property-service/internal/models"
)

type HouseRepository interface {
	Create(ctx context.Context, house *models.House) (*models.House, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.House, error)
}

type houseRepository struct {
	db *gorm.DB
}

// NewHouseRepository creates a new house repository
func NewHouseRepository(db *gorm.DB) HouseRepository {
	return &houseRepository{db: db}
}

func (r *houseRepository) Create(ctx context.Context, house *models.House) (*models.House, error) {
	if err := r.db.WithContext(ctx).Create(house).Error; err != nil {
		return nil, err
	}
	return house, nil
}

func (r *houseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.House, error) {
	var house models.House
	if err := r.db.WithContext(ctx).First(&house, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &house, nil
}
