package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Room occupancy states
const (
	RoomVacant   = "Vacant"
	RoomOccupied = "Occupied"
)

// Room belongs to exactly one house. Status is mutated only by the
// contract lifecycle, never by room edit paths: a room is Occupied if
// and only if it has a current active contract.
type Room struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	HouseID    uuid.UUID `json:"houseId" gorm:"type:uuid;not null;index"`
	RoomNumber string    `json:"roomNumber" gorm:"type:varchar(50);not null"`
	Floor      int       `json:"floor"`
	AreaM2     float64   `json:"areaM2"`
	BaseRent   float64   `json:"baseRent"`
	Facilities string    `json:"facilities" gorm:"type:text"`
	Status     string    `json:"status" gorm:"type:varchar(20);not null;default:'Vacant';index"`
	CreatedAt  time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	House *House `json:"house,omitempty" gorm:"foreignKey:HouseID"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// HouseOccupancy is the per-house room count summary kept by the room
// ledger and cached for the dashboard.
type HouseOccupancy struct {
	HouseID  uuid.UUID `json:"houseId"`
	Total    int64     `json:"total"`
	Occupied int64     `json:"occupied"`
	Vacant   int64     `json:"vacant"`
}
