package repository

import (
	"association-backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BankEntryRepository struct {
	db *gorm.DB
}

func NewBankEntryRepository(db *gorm.DB) *BankEntryRepository {
	return &BankEntryRepository{db: db}
}

func (r *BankEntryRepository) DB() *gorm.DB {
	return r.db
}

func (r *BankEntryRepository) GetByID(id uuid.UUID) (*models.BankStatementEntry, error) {
	var entry models.BankStatementEntry
	if err := r.db.First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *BankEntryRepository) Create(entry *models.BankStatementEntry) error {
	return r.db.Create(entry).Error
}

// List pages through entries newest-first with an id cursor, optionally
// filtered by assignment status.
func (r *BankEntryRepository) List(
	status string,
	cursor string,
	limit int,
) ([]models.BankStatementEntry, string, bool, error) {

	var entries []models.BankStatementEntry
	query := r.db.Order("id ASC").Limit(limit + 1)

	if status != "" && status != "all" {
		query = query.Where("assignment_status = ?", status)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	if err := query.Find(&entries).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(entries) > limit {
		hasMore = true
		nextCursor = entries[limit-1].ID.String()
		entries = entries[:limit]
	}
	return entries, nextCursor, hasMore, nil
}
