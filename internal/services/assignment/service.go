// Package assignment governs the per-record lifecycle from unassigned
// through automatic or manual match to confirmed or rejected, plus the
// set-based bulk confirm.
package assignment

import (
	"context"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/events"
	"association-backoffice/internal/models"
	"association-backoffice/internal/notification"
	"association-backoffice/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NotificationOutcome distinguishes "not attempted" from "sent" from
// "attempted and failed"; the last one is a warning, never an error.
type NotificationOutcome string

const (
	NotificationNotAttempted NotificationOutcome = "not_attempted"
	NotificationSent         NotificationOutcome = "sent"
	NotificationFailed       NotificationOutcome = "failed"
)

type AssignResult struct {
	Record       *models.PaymentRecord `json:"record"`
	Notification NotificationOutcome   `json:"notification"`
	Warning      string                `json:"warning,omitempty"`
}

type Service struct {
	db        *gorm.DB
	records   *repository.PaymentRecordRepository
	directory *repository.DirectoryRepository
	notifier  notification.Dispatcher
	bus       *events.Bus
	log       *zap.Logger
}

func NewService(
	records *repository.PaymentRecordRepository,
	directory *repository.DirectoryRepository,
	notifier notification.Dispatcher,
	bus *events.Bus,
	log *zap.Logger,
) *Service {
	return &Service{
		db:        records.DB(),
		records:   records,
		directory: directory,
		notifier:  notifier,
		bus:       bus,
		log:       log,
	}
}

func (s *Service) load(recordID uuid.UUID) (*models.PaymentRecord, error) {
	record, err := s.records.GetByID(recordID)
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.New(apperrors.KindNotFound, apperrors.CodeRecordNotFound,
			"payment record not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeRecordNotFound,
			"load payment record", err)
	}
	return record, nil
}

func (s *Service) save(record *models.PaymentRecord) error {
	if err := s.db.Save(record).Error; err != nil {
		return apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
			"save payment record", err)
	}
	return nil
}

// Assign links the record to a resident (target manually_assigned) or clears
// the link (nil resident, target pending). ResidentID and ProfileID move
// together: both set, or both nil. When the resident has a contact email a
// notification is attempted; its failure is reported as a warning on an
// otherwise successful result and never rolls the assignment back.
func (s *Service) Assign(ctx context.Context, recordID uuid.UUID, residentID *uuid.UUID) (*AssignResult, error) {
	record, err := s.load(recordID)
	if err != nil {
		return nil, err
	}

	if residentID == nil {
		next, err := Next(record.AssignmentStatus, ActionClear)
		if err != nil {
			return nil, err
		}
		record.AssignmentStatus = next
		record.ResidentID = nil
		record.ProfileID = nil
		record.MatchedBy = nil
		if err := s.save(record); err != nil {
			return nil, err
		}
		s.bus.Publish(events.RecordAssigned{RecordID: record.ID, Status: next})
		return &AssignResult{Record: record, Notification: NotificationNotAttempted}, nil
	}

	next, err := Next(record.AssignmentStatus, ActionManualAssign)
	if err != nil {
		return nil, err
	}

	resident, err := s.directory.GetResident(*residentID)
	if err == gorm.ErrRecordNotFound {
		return nil, apperrors.New(apperrors.KindInput, apperrors.CodeDirectoryNotFound,
			"resident not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeDirectoryNotFound,
			"load resident", err)
	}

	manual := models.MatchManual
	record.AssignmentStatus = next
	record.ResidentID = &resident.ID
	// A resident without a linked profile degrades to no profile id; it does
	// not fail the assignment.
	record.ProfileID = resident.ProfileID
	record.MatchedBy = &manual
	if err := s.save(record); err != nil {
		return nil, err
	}
	s.bus.Publish(events.RecordAssigned{RecordID: record.ID, ResidentID: record.ResidentID, Status: next})

	result := &AssignResult{Record: record, Notification: NotificationNotAttempted}
	if resident.Email == "" {
		return result, nil
	}

	period := ""
	if record.BatchID != nil {
		var batch models.UploadBatch
		if err := s.db.First(&batch, "id = ?", *record.BatchID).Error; err == nil {
			period = batch.Period
		}
	}
	err = s.notifier.Send(ctx, notification.Dispatch{
		RecordID:      record.ID,
		ResidentID:    resident.ID,
		ProfileID:     resident.ProfileID,
		Email:         resident.Email,
		Period:        period,
		Amount:        record.TotalDue,
		InvoiceNumber: record.InvoiceNumber,
		Apartment:     record.Apartment,
	})
	if err != nil {
		s.log.Warn("assignment saved but notification failed",
			zap.String("record_id", record.ID.String()),
			zap.Error(err))
		result.Notification = NotificationFailed
		result.Warning = err.Error()
		return result, nil
	}
	result.Notification = NotificationSent
	return result, nil
}

// Accept confirms an automatic suggestion.
func (s *Service) Accept(recordID uuid.UUID) (*models.PaymentRecord, error) {
	record, err := s.load(recordID)
	if err != nil {
		return nil, err
	}
	next, err := Next(record.AssignmentStatus, ActionAccept)
	if err != nil {
		return nil, err
	}
	record.AssignmentStatus = next
	if err := s.save(record); err != nil {
		return nil, err
	}
	s.bus.Publish(events.RecordAssigned{RecordID: record.ID, ResidentID: record.ResidentID, Status: next})
	return record, nil
}

// Decline sends an automatic suggestion back to pending and drops the link,
// keeping resident id and matched-by in lockstep.
func (s *Service) Decline(recordID uuid.UUID) (*models.PaymentRecord, error) {
	record, err := s.load(recordID)
	if err != nil {
		return nil, err
	}
	next, err := Next(record.AssignmentStatus, ActionDecline)
	if err != nil {
		return nil, err
	}
	record.AssignmentStatus = next
	record.ResidentID = nil
	record.ProfileID = nil
	record.MatchedBy = nil
	if err := s.save(record); err != nil {
		return nil, err
	}
	s.bus.Publish(events.RecordAssigned{RecordID: record.ID, Status: next})
	return record, nil
}

// Reject marks the record rejected and drops the link.
func (s *Service) Reject(recordID uuid.UUID) (*models.PaymentRecord, error) {
	record, err := s.load(recordID)
	if err != nil {
		return nil, err
	}
	next, err := Next(record.AssignmentStatus, ActionReject)
	if err != nil {
		return nil, err
	}
	record.AssignmentStatus = next
	record.ResidentID = nil
	record.ProfileID = nil
	record.MatchedBy = nil
	if err := s.save(record); err != nil {
		return nil, err
	}
	s.bus.Publish(events.RecordAssigned{RecordID: record.ID, Status: next})
	return record, nil
}

// BulkConfirm promotes every auto_matched record in the set to confirmed in
// a single set-based update. Ids in any other state are untouched no-ops,
// not errors, so an interrupted caller can safely resend the same set.
func (s *Service) BulkConfirm(recordIDs []uuid.UUID) (int64, error) {
	if len(recordIDs) == 0 {
		return 0, nil
	}
	res := s.db.Model(&models.PaymentRecord{}).
		Where("id IN ? AND assignment_status = ?", recordIDs, models.StatusAutoMatched).
		Update("assignment_status", models.StatusConfirmed)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
			"bulk confirm", res.Error)
	}
	if res.RowsAffected > 0 {
		s.bus.Publish(events.BulkConfirmed{Confirmed: res.RowsAffected})
	}
	s.log.Info("bulk confirm", zap.Int64("confirmed", res.RowsAffected),
		zap.Int("requested", len(recordIDs)))
	return res.RowsAffected, nil
}
