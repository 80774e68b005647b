package models

import (
	"time"

	"github.com/google/uuid"
)

// Resident is a directory entry reconciliation decisions are made against.
// Read-only from this engine.
type Resident struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName string     `gorm:"index" json:"display_name"`
	Apartment   string     `gorm:"index" json:"apartment"`
	PaymentCode string     `gorm:"index" json:"payment_code"`
	ProfileID   *uuid.UUID `gorm:"type:uuid" json:"profile_id"`
	Email       string     `json:"email"`
	Active      bool       `gorm:"index" json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Vendor is a counterparty for bank statement reconciliation. Read-only here.
type Vendor struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName string    `gorm:"index" json:"display_name"`
	Email       string    `json:"email"`
	Active      bool      `gorm:"index" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
