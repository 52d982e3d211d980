package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Contract lifecycle states
const (
	ContractActive     = "Active"
	ContractTerminated = "Terminated"
	ContractExpired    = "Expired"
	// ContractUnoccupied is a legacy alias some clients still send; it
	// releases the room like Terminated/Expired.
	ContractUnoccupied = "Unoccupied"
)

// Contract is a lease binding one tenant to one room. At most one
// contract per room may have IsCurrent set at any time; the lifecycle
// operations preserve this inside their transactions.
type Contract struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	RoomID          uuid.UUID `json:"roomId" gorm:"type:uuid;not null;index"`
	TenantID        uuid.UUID `json:"tenantId" gorm:"type:uuid;not null;index"`
	StartDate       time.Time `json:"startDate" gorm:"not null"`
	EndDate         time.Time `json:"endDate" gorm:"not null"`
	DepositAmount   float64   `json:"depositAmount"`
	RentAmount      float64   `json:"rentAmount"`
	Notes           string    `json:"notes" gorm:"type:text"`
	ContractFileURL *string   `json:"contractFileUrl,omitempty" gorm:"type:varchar(500)"`
	Status          string    `json:"status" gorm:"type:varchar(20);not null;default:'Active';index"`
	IsCurrent       bool      `json:"isCurrent" gorm:"not null;default:false;index"`
	CreatedAt       time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updatedAt" gorm:"autoUpdateTime"`

	Room   *Room   `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Tenant *Tenant `json:"tenant,omitempty" gorm:"foreignKey:TenantID"`
}

func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ReleasesRoom reports whether a lifecycle state frees the room.
func ReleasesRoom(status string) bool {
	switch status {
	case ContractTerminated, ContractExpired, ContractUnoccupied:
		return true
	}
	return false
}

// The generated portal password is embedded in the contract notes as a
// `PASSWORD:<digits>` line. The format is load-bearing: existing rows
// were written this way by the previous system and the portal password
// column does not exist, so reads and rewrites must keep it byte
// compatible.
var passwordMarkerRe = regexp.MustCompile(`PASSWORD:\d+`)

// ExtractPortalPassword returns the password embedded in notes, or ""
// when no marker is present.
func ExtractPortalPassword(notes string) string {
	m := passwordMarkerRe.FindString(notes)
	if m == "" {
		return ""
	}
	return strings.TrimPrefix(m, "PASSWORD:")
}

// PasswordMarker returns the marker line for a secret.
func PasswordMarker(secret string) string {
	return "PASSWORD:" + secret
}

// StripPasswordMarkers removes every marker from notes and trims the
// result, matching how the previous system rewrote notes on password
// change.
func StripPasswordMarkers(notes string) string {
	return strings.TrimSpace(passwordMarkerRe.ReplaceAllString(notes, ""))
}

// AppendPasswordMarker appends the marker for secret as a new line
// after the given notes text.
func AppendPasswordMarker(notes, secret string) string {
	if notes == "" {
		return PasswordMarker(secret)
	}
	return notes + "\n" + PasswordMarker(secret)
}

// CarryPasswordMarker re-appends the first marker found in oldNotes to
// newNotes, preserving the current secret across a notes rewrite that
// does not change the password.
func CarryPasswordMarker(newNotes, oldNotes string) string {
	m := passwordMarkerRe.FindString(oldNotes)
	if m == "" {
		return newNotes
	}
	if newNotes == "" {
		return m
	}
	return newNotes + "\n" + m
}
