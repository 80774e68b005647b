package repository

import (
	"association-backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRecordRepository struct {
	db *gorm.DB
}

func NewPaymentRecordRepository(db *gorm.DB) *PaymentRecordRepository {
	return &PaymentRecordRepository{db: db}
}

func (r *PaymentRecordRepository) DB() *gorm.DB {
	return r.db
}

func (r *PaymentRecordRepository) GetByID(id uuid.UUID) (*models.PaymentRecord, error) {
	var record models.PaymentRecord
	if err := r.db.First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *PaymentRecordRepository) CountByBatch(tx *gorm.DB, batchID uuid.UUID) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	var count int64
	err := tx.Model(&models.PaymentRecord{}).Where("batch_id = ?", batchID).Count(&count).Error
	return count, err
}

// ListByBatch pages through a batch's records with an id cursor, optionally
// filtered by status.
func (r *PaymentRecordRepository) ListByBatch(
	batchID uuid.UUID,
	status string,
	cursor string,
	limit int,
) ([]models.PaymentRecord, string, bool, error) {

	var records []models.PaymentRecord
	query := r.db.
		Where("batch_id = ?", batchID).
		Order("id ASC").
		Limit(limit + 1)

	if status != "" && status != "all" {
		query = query.Where("assignment_status = ?", status)
	}
	if cursor != "" {
		query = query.Where("id > ?", cursor)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, "", false, err
	}

	hasMore := false
	var nextCursor string
	if len(records) > limit {
		hasMore = true
		nextCursor = records[limit-1].ID.String()
		records = records[:limit]
	}
	return records, nextCursor, hasMore, nil
}

type StatusCount struct {
	Status models.AssignmentStatus `json:"status"`
	Count  int64                   `json:"count"`
}

func (r *PaymentRecordRepository) StatusCounts(batchID uuid.UUID) ([]StatusCount, error) {
	var rows []StatusCount
	err := r.db.Model(&models.PaymentRecord{}).
		Where("batch_id = ?", batchID).
		Select("assignment_status AS status, COUNT(*) AS count").
		Group("assignment_status").
		Scan(&rows).Error
	return rows, err
}
