// Package bankentries manages bank statement lines: manual entry, bulk
// import from a spreadsheet, and ad hoc linking of a line to exactly one
// vendor or resident.
package bankentries

import (
	"time"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/models"
	"association-backoffice/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Editor struct {
	db        *gorm.DB
	entries   *repository.BankEntryRepository
	directory *repository.DirectoryRepository
	log       *zap.Logger
}

func NewEditor(
	entries *repository.BankEntryRepository,
	directory *repository.DirectoryRepository,
	log *zap.Logger,
) *Editor {
	return &Editor{
		db:        entries.DB(),
		entries:   entries,
		directory: directory,
		log:       log,
	}
}

// Create inserts one manually entered statement line, unassigned.
func (e *Editor) Create(date time.Time, counterparty, memo string, amount decimal.Decimal) (*models.BankStatementEntry, error) {
	entry := &models.BankStatementEntry{
		ID:               uuid.New(),
		TransactionDate:  date,
		Counterparty:     counterparty,
		Memo:             memo,
		Amount:           amount,
		Kind:             kindForAmount(amount),
		AssignmentStatus: models.EntryUnassigned,
		CreatedAt:        time.Now(),
	}
	if err := e.entries.Create(entry); err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
			"create bank entry", err)
	}
	return entry, nil
}

func kindForAmount(amount decimal.Decimal) models.EntryKind {
	if amount.Sign() < 0 {
		return models.EntryDebit
	}
	return models.EntryCredit
}

// Assign links the entry to exactly one counterparty kind. Passing both a
// vendor and a resident is a contract violation; passing neither resets the
// entry to unassigned. The later call fully supersedes the earlier one.
func (e *Editor) Assign(entryID uuid.UUID, vendorID, residentID *uuid.UUID) (*models.BankStatementEntry, error) {
	if vendorID != nil && residentID != nil {
		return nil, apperrors.New(apperrors.KindPrecondition, apperrors.CodeAmbiguousAssignment,
			"an entry can be assigned to a vendor or a resident, not both")
	}

	assignment := models.Unassigned()
	switch {
	case vendorID != nil:
		if _, err := e.directory.GetVendor(*vendorID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.New(apperrors.KindInput, apperrors.CodeDirectoryNotFound,
					"vendor not found")
			}
			return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeDirectoryNotFound,
				"load vendor", err)
		}
		assignment = models.AssignVendor(*vendorID)
	case residentID != nil:
		if _, err := e.directory.GetResident(*residentID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, apperrors.New(apperrors.KindInput, apperrors.CodeDirectoryNotFound,
					"resident not found")
			}
			return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeDirectoryNotFound,
				"load resident", err)
		}
		assignment = models.AssignResident(*residentID)
	}

	entry, err := e.entries.GetByID(entryID)
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.New(apperrors.KindNotFound, apperrors.CodeEntryNotFound,
			"bank entry not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeEntryNotFound,
			"load bank entry", err)
	}

	assignment.Apply(entry, time.Now())
	// Map updates so clearing a previously set counterparty writes the NULLs
	// instead of being skipped as zero values.
	if err := e.db.Model(entry).
		Updates(map[string]interface{}{
			"assigned_vendor_id":   entry.AssignedVendorID,
			"assigned_resident_id": entry.AssignedResidentID,
			"assignment_status":    entry.AssignmentStatus,
			"assigned_at":          entry.AssignedAt,
		}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
			"save bank entry", err)
	}
	return entry, nil
}

func (e *Editor) List(status, cursor string, limit int) ([]models.BankStatementEntry, string, bool, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	return e.entries.List(status, cursor, limit)
}
