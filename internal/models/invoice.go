package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stored invoice states
const (
	InvoiceUnpaid = "Unpaid"
	InvoicePaid   = "Paid"
)

// Derived display state; never persisted.
const InvoiceOverdue = "Overdue"

// Invoice types
const (
	InvoiceMonthly    = "Monthly"
	InvoiceIncidental = "Incidental"
)

// Line item service types. Rows written by the previous system carry no
// type; for those the positional convention applies on read (index 0 is
// electricity, 1 is water, the rest are numbered services).
const (
	ServiceElectricity = "electricity"
	ServiceWater       = "water"
	ServiceOther       = "other"
)

// Invoice bills one contract for one period. (ContractID, BillingPeriod)
// is unique; duplicate periods surface as a conflict.
type Invoice struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ContractID    uuid.UUID  `json:"contractId" gorm:"type:uuid;not null;uniqueIndex:idx_invoice_contract_period"`
	BillingPeriod string     `json:"billingPeriod" gorm:"type:varchar(7);not null;uniqueIndex:idx_invoice_contract_period"`
	IssueDate     time.Time  `json:"issueDate" gorm:"not null"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	RoomRent      float64    `json:"roomRent"`
	TotalAmount   float64    `json:"totalAmount"`
	Status        string     `json:"status" gorm:"type:varchar(20);not null;default:'Unpaid';index"`
	PaidDate      *time.Time `json:"paidDate,omitempty"`
	Notes         string     `json:"notes" gorm:"type:text"`
	Type          string     `json:"type" gorm:"column:invoice_type;type:varchar(20);not null;default:'Monthly'"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt     time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`

	Contract *Contract         `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
	Items    []InvoiceLineItem `json:"items,omitempty" gorm:"foreignKey:InvoiceID"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// InvoiceLineItem is one metered or flat charge on an invoice. LineNo
// preserves insertion order.
type InvoiceLineItem struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	InvoiceID       uuid.UUID `json:"invoiceId" gorm:"type:uuid;not null;index"`
	LineNo          int       `json:"lineNo" gorm:"not null"`
	ServiceType     string    `json:"serviceType" gorm:"type:varchar(30)"`
	PreviousReading *float64  `json:"previousReading,omitempty"`
	CurrentReading  *float64  `json:"currentReading,omitempty"`
	UnitPrice       float64   `json:"unitPrice"`
	Amount          float64   `json:"amount"`
	CreatedAt       time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

func (i *InvoiceLineItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ServiceLabel names a line item for display. The stored service type
// wins; rows without one fall back to the positional convention of the
// previous schema.
func (i *InvoiceLineItem) ServiceLabel() string {
	switch i.ServiceType {
	case ServiceElectricity:
		return "Electricity"
	case ServiceWater:
		return "Water"
	}
	if i.ServiceType != "" && i.ServiceType != ServiceOther {
		return i.ServiceType
	}
	switch i.LineNo {
	case 0:
		return "Electricity"
	case 1:
		return "Water"
	}
	return fmt.Sprintf("Service %d", i.LineNo-1)
}
