package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EntryKind string

const (
	EntryCredit EntryKind = "credit"
	EntryDebit  EntryKind = "debit"
)

type BankEntryStatus string

const (
	EntryUnassigned      BankEntryStatus = "unassigned"
	EntryAutoMatched     BankEntryStatus = "auto_matched"
	EntryManuallyMatched BankEntryStatus = "manually_matched"
)

// BankStatementEntry is one imported or manually entered statement line.
// At most one of AssignedVendorID / AssignedResidentID is non-nil; both are
// written only through BankAssignment.
type BankStatementEntry struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionDate time.Time       `gorm:"index" json:"transaction_date"`
	Counterparty    string          `gorm:"index" json:"counterparty"`
	Memo            string          `json:"memo"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2)" json:"amount"`
	Kind            EntryKind       `json:"kind"`

	AssignedVendorID   *uuid.UUID      `gorm:"type:uuid;index" json:"assigned_vendor_id"`
	AssignedResidentID *uuid.UUID      `gorm:"type:uuid;index" json:"assigned_resident_id"`
	AssignmentStatus   BankEntryStatus `gorm:"index" json:"assignment_status"`
	AssignedAt         *time.Time      `json:"assigned_at"`

	CreatedAt time.Time `json:"created_at"`
}

type bankAssignmentKind int

const (
	assignNone bankAssignmentKind = iota
	assignVendor
	assignResident
)

// BankAssignment is the tagged union {Unassigned | Vendor(id) | Resident(id)}.
// Constructing it is the only way to set the entry's counterparty link, so
// the exclusivity invariant cannot be bypassed.
type BankAssignment struct {
	kind bankAssignmentKind
	id   uuid.UUID
}

func Unassigned() BankAssignment { return BankAssignment{} }

func AssignVendor(id uuid.UUID) BankAssignment {
	return BankAssignment{kind: assignVendor, id: id}
}

func AssignResident(id uuid.UUID) BankAssignment {
	return BankAssignment{kind: assignResident, id: id}
}

func (a BankAssignment) IsAssigned() bool { return a.kind != assignNone }

func (a BankAssignment) VendorID() *uuid.UUID {
	if a.kind != assignVendor {
		return nil
	}
	id := a.id
	return &id
}

func (a BankAssignment) ResidentID() *uuid.UUID {
	if a.kind != assignResident {
		return nil
	}
	id := a.id
	return &id
}

// Apply writes the union onto the entry's nullable column pair and keeps the
// status and timestamp consistent with it.
func (a BankAssignment) Apply(e *BankStatementEntry, now time.Time) {
	e.AssignedVendorID = a.VendorID()
	e.AssignedResidentID = a.ResidentID()
	if a.IsAssigned() {
		e.AssignmentStatus = EntryManuallyMatched
		e.AssignedAt = &now
	} else {
		e.AssignmentStatus = EntryUnassigned
		e.AssignedAt = nil
	}
}
