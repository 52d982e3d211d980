package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// House is a boarding house owned by a landlord. TotalRooms is a
// denormalized counter maintained by room creation.
type House struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Address     string    `json:"address" gorm:"type:varchar(500)"`
	Description string    `json:"description" gorm:"type:text"`
	TotalRooms  int       `json:"totalRooms" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (h *House) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
