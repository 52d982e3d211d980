package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Credential is the tenant portal login. One per tenant; username is
// the tenant's phone number. Only the bcrypt hash of the secret is
// stored; the plaintext is surfaced exactly once at lease creation.
type Credential struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID  `json:"tenantId" gorm:"type:uuid;not null;uniqueIndex"`
	Username      string     `json:"username" gorm:"type:varchar(20);not null;uniqueIndex"`
	PasswordHash  string     `json:"-" gorm:"type:varchar(255);not null"`
	IsActive      bool       `json:"isActive" gorm:"not null;default:true"`
	LoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockedUntil   *time.Time `json:"-"`
	PasswordSetAt time.Time  `json:"passwordSetAt"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (c *Credential) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
