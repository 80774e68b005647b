package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type AssignmentStatus string

const (
	StatusPending          AssignmentStatus = "pending"
	StatusAutoMatched      AssignmentStatus = "auto_matched"
	StatusManuallyAssigned AssignmentStatus = "manually_assigned"
	StatusConfirmed        AssignmentStatus = "confirmed"
	StatusRejected         AssignmentStatus = "rejected"
)

type MatchType string

const (
	MatchManual          MatchType = "manual"
	MatchApartmentNumber MatchType = "apartment_number"
	MatchPaymentCode     MatchType = "payment_code"
	MatchNameExact       MatchType = "name_exact"
	MatchNameFuzzy       MatchType = "name_fuzzy"
)

// PaymentRecord is one extracted payment slip. Invariant: MatchedBy is
// non-nil exactly when ResidentID is non-nil, and ProfileID mirrors the
// resident's linked profile (nil when ResidentID is nil).
type PaymentRecord struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	BatchID *uuid.UUID `gorm:"type:uuid;index" json:"batch_id"`

	InvoiceNumber string `json:"invoice_number"`
	Apartment     string `gorm:"index" json:"apartment"`
	PayerName     string `gorm:"index" json:"payer_name"`
	PaymentCode   string `gorm:"index" json:"payment_code"`

	PreviousBalance  decimal.Decimal `gorm:"type:numeric(12,2)" json:"previous_balance"`
	PaymentsReceived decimal.Decimal `gorm:"type:numeric(12,2)" json:"payments_received"`
	Accrued          decimal.Decimal `gorm:"type:numeric(12,2)" json:"accrued"`
	TotalDue         decimal.Decimal `gorm:"type:numeric(12,2)" json:"total_due"`

	LineItems datatypes.JSON `json:"line_items"`

	ResidentID       *uuid.UUID       `gorm:"type:uuid;index" json:"resident_id"`
	ProfileID        *uuid.UUID       `gorm:"type:uuid" json:"profile_id"`
	AssignmentStatus AssignmentStatus `gorm:"index" json:"assignment_status"`
	MatchedBy        *MatchType       `json:"matched_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineItem is one cost row extracted from a slip.
type LineItem struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

const lineItemsVersion = 1

type lineItemsDoc struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// EncodeLineItems serializes items under the current schema version.
func EncodeLineItems(items []LineItem) (datatypes.JSON, error) {
	raw, err := json.Marshal(lineItemsDoc{Version: lineItemsVersion, Items: items})
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeLineItems validates the stored payload against the schema version.
// An empty column decodes to no items.
func DecodeLineItems(raw datatypes.JSON) ([]LineItem, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var doc lineItemsDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("line items: %w", err)
	}
	if doc.Version != lineItemsVersion {
		return nil, fmt.Errorf("line items: unsupported schema version %d", doc.Version)
	}
	return doc.Items, nil
}
