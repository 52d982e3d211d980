package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tenant is a person renting a room. Phone is the natural key: the
// contract lifecycle reuses an existing tenant when the phone number is
// already registered.
type Tenant struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey"`
	FullName     string         `json:"fullName" gorm:"type:varchar(255);not null"`
	Phone        string         `json:"phone" gorm:"type:varchar(20);not null;uniqueIndex"`
	Email        string         `json:"email" gorm:"type:varchar(255)"`
	IDCardNumber string         `json:"idCardNumber" gorm:"type:varchar(50)"`
	IDCardPhotos datatypes.JSON `json:"idCardPhotos" gorm:"type:jsonb"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updatedAt" gorm:"autoUpdateTime"`
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// PhotoPaths decodes the stored document image references in insertion
// order. An empty or malformed column yields an empty slice.
func (t *Tenant) PhotoPaths() []string {
	var paths []string
	if len(t.IDCardPhotos) == 0 {
		return paths
	}
	if err := json.Unmarshal(t.IDCardPhotos, &paths); err != nil {
		return nil
	}
	return paths
}

// EncodePhotoPaths encodes an ordered list of document image references
// for storage.
func EncodePhotoPaths(paths []string) datatypes.JSON {
	data, err := json.Marshal(paths)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
