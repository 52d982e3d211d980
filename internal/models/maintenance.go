package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Maintenance request states. Completed and Cancelled are terminal.
const (
	MaintenanceNew        = "New"
	MaintenanceInProgress = "InProgress"
	MaintenanceCompleted  = "Completed"
	MaintenanceCancelled  = "Cancelled"
)

// MaintenanceRequest is filed by a tenant against the room of their
// active lease.
type MaintenanceRequest struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	RoomID         uuid.UUID  `json:"roomId" gorm:"type:uuid;not null;index"`
	TenantID       uuid.UUID  `json:"tenantId" gorm:"type:uuid;not null;index"`
	Title          string     `json:"title" gorm:"type:varchar(255);not null"`
	Description    string     `json:"description" gorm:"type:text"`
	Status         string     `json:"status" gorm:"type:varchar(20);not null;default:'New';index"`
	RequestDate    time.Time  `json:"requestDate" gorm:"autoCreateTime"`
	ResolvedDate   *time.Time `json:"resolvedDate,omitempty"`
	ResolutionNote string     `json:"resolutionNote" gorm:"type:text"`
	CreatedAt      time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`

	Room   *Room   `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

func (m *MaintenanceRequest) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Terminal reports whether the request can no longer change state.
func (m *MaintenanceRequest) Terminal() bool {
	return m.Status == MaintenanceCompleted || m.Status == MaintenanceCancelled
}
