package repository

import (
	"association-backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Expose DB if needed
func (r *BatchRepository) DB() *gorm.DB {
	return r.db
}

func (r *BatchRepository) GetByID(id uuid.UUID) (*models.UploadBatch, error) {
	var batch models.UploadBatch
	if err := r.db.First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// Latest returns the most recently created batch, or nil when no batch exists.
func (r *BatchRepository) Latest(tx *gorm.DB) (*models.UploadBatch, error) {
	if tx == nil {
		tx = r.db
	}
	var batch models.UploadBatch
	err := tx.Order("created_at DESC").First(&batch).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// List returns batches newest-first, capped at limit.
func (r *BatchRepository) List(limit int) ([]models.UploadBatch, error) {
	var batches []models.UploadBatch
	err := r.db.Order("created_at DESC").Limit(limit).Find(&batches).Error
	return batches, err
}
