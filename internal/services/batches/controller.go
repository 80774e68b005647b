// Package batches owns the upload batch lifecycle: creation at preview
// commit, newest-first history, and latest-only cascade deletion.
package batches

import (
	"time"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/events"
	"association-backoffice/internal/models"
	"association-backoffice/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxPageSize = 50

type Controller struct {
	db      *gorm.DB
	batches *repository.BatchRepository
	records *repository.PaymentRecordRepository
	bus     *events.Bus
	log     *zap.Logger
}

func NewController(
	batches *repository.BatchRepository,
	records *repository.PaymentRecordRepository,
	bus *events.Bus,
	log *zap.Logger,
) *Controller {
	return &Controller{
		db:      batches.DB(),
		batches: batches,
		records: records,
		bus:     bus,
		log:     log,
	}
}

// CreateTx inserts a batch row inside the caller's transaction. slip_count
// starts at zero; the committer finalizes it after the records exist.
func (c *Controller) CreateTx(tx *gorm.DB, fileName string, kind models.SourceKind, period string) (*models.UploadBatch, error) {
	batch := &models.UploadBatch{
		ID:         uuid.New(),
		FileName:   fileName,
		SourceKind: kind,
		Period:     period,
		SlipCount:  0,
		Status:     "saved",
		CreatedAt:  time.Now(),
	}
	if err := tx.Create(batch).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
			"create batch", err)
	}
	return batch, nil
}

// List returns batches newest-first. The page size is capped so history
// stays a bounded query.
func (c *Controller) List(limit int) ([]models.UploadBatch, error) {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	batches, err := c.batches.List(limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
			"list batches", err)
	}
	return batches, nil
}

func (c *Controller) StatusCounts(batchID uuid.UUID) ([]repository.StatusCount, error) {
	return c.records.StatusCounts(batchID)
}

// Delete removes the batch and every record it owns in one transaction.
// Only the most recently created batch may be deleted; older batches stay
// for audit. The precondition is re-validated here regardless of what the
// caller presented as deletable.
func (c *Controller) Delete(batchID uuid.UUID) (int64, error) {
	var removed int64

	err := c.db.Transaction(func(tx *gorm.DB) error {
		latest, err := c.batches.Latest(tx)
		if err != nil {
			return apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeDeleteFailed,
				"resolve latest batch", err)
		}
		if latest == nil {
			return apperrors.New(apperrors.KindNotFound, apperrors.CodeBatchNotFound,
				"no batches exist")
		}
		if latest.ID != batchID {
			var exists int64
			if err := tx.Model(&models.UploadBatch{}).Where("id = ?", batchID).Count(&exists).Error; err != nil {
				return apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeDeleteFailed,
					"look up batch", err)
			}
			if exists == 0 {
				return apperrors.New(apperrors.KindNotFound, apperrors.CodeBatchNotFound,
					"batch not found")
			}
			return apperrors.New(apperrors.KindPrecondition, apperrors.CodeBatchNotLatest,
				"only the most recent batch can be deleted")
		}

		res := tx.Where("batch_id = ?", batchID).Delete(&models.PaymentRecord{})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeDeleteFailed,
				"delete batch records", res.Error)
		}
		removed = res.RowsAffected

		if err := tx.Delete(&models.UploadBatch{}, "id = ?", batchID).Error; err != nil {
			return apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeDeleteFailed,
				"delete batch", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	c.log.Info("batch deleted",
		zap.String("batch_id", batchID.String()),
		zap.Int64("records_removed", removed))
	c.bus.Publish(events.BatchDeleted{BatchID: batchID, RecordsRemoved: removed})
	return removed, nil
}
