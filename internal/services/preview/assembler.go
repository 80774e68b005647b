// Package preview holds the editable candidate list between "parsed" and
// "saved". Sessions live only in memory; abandoning one has no persistent
// side effect.
package preview

import (
	"sync"
	"time"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/gateway"
	"association-backoffice/internal/models"
	"association-backoffice/internal/services/batches"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Candidate is the ephemeral, editable form of one extracted record. The
// resolved match may be overwritten by the operator before commit.
type Candidate struct {
	TempID     string                  `json:"temp_id"`
	Extracted  gateway.ExtractedFields `json:"extracted"`
	ResidentID *uuid.UUID              `json:"resident_id"`
	ProfileID  *uuid.UUID              `json:"profile_id"`
	MatchedBy  *models.MatchType       `json:"matched_by"`
	WillBe     models.AssignmentStatus `json:"will_be"`
	Reason     string                  `json:"reason"`
}

type Session struct {
	ID         string            `json:"id"`
	FileName   string            `json:"file_name"`
	SourceKind models.SourceKind `json:"source_kind"`
	Period     string            `json:"period"`
	Candidates []Candidate       `json:"candidates"`
	Directory  []models.Resident `json:"directory"`
	CreatedAt  time.Time         `json:"created_at"`
}

type Stats struct {
	Total   int `json:"total"`
	Matched int `json:"matched"`
	Pending int `json:"pending"`
}

type CommitResult struct {
	Batch *models.UploadBatch `json:"batch"`
	Stats Stats               `json:"stats"`
}

type Assembler struct {
	mu       sync.Mutex
	sessions map[string]*Session

	db      *gorm.DB
	batches *batches.Controller
	log     *zap.Logger
}

func NewAssembler(db *gorm.DB, batchCtl *batches.Controller, log *zap.Logger) *Assembler {
	return &Assembler{
		sessions: make(map[string]*Session),
		db:       db,
		batches:  batchCtl,
		log:      log,
	}
}

// Begin stores a session built from the gateway's result and the directory
// snapshot used to render override choices. A zero-candidate result is a
// valid "nothing found" outcome, reported without creating any state.
func (a *Assembler) Begin(
	result *gateway.ParseResult,
	directory []models.Resident,
	fileName string,
	kind models.SourceKind,
	period string,
) (*Session, error) {
	if len(result.Candidates) == 0 {
		return nil, apperrors.New(apperrors.KindGateway, apperrors.CodeEmptyExtraction,
			"no records found in the supplied input")
	}

	profiles := make(map[uuid.UUID]*uuid.UUID, len(directory))
	for i := range directory {
		profiles[directory[i].ID] = directory[i].ProfileID
	}

	session := &Session{
		ID:         uuid.NewString(),
		FileName:   fileName,
		SourceKind: kind,
		Period:     period,
		Directory:  directory,
		CreatedAt:  time.Now(),
	}
	for _, c := range result.Candidates {
		cand := Candidate{
			TempID:    c.TempID,
			Extracted: c.Extracted,
			WillBe:    models.StatusPending,
			Reason:    c.FailureReason,
		}
		if c.Suggested != nil {
			id := c.Suggested.ResidentID
			mt := c.Suggested.MatchType
			cand.ResidentID = &id
			cand.ProfileID = profiles[id]
			cand.MatchedBy = &mt
			cand.WillBe = models.StatusAutoMatched
			cand.Reason = c.Suggested.Reason
		}
		session.Candidates = append(session.Candidates, cand)
	}

	snap := session.snapshot()
	a.mu.Lock()
	a.sessions[session.ID] = session
	a.mu.Unlock()
	return snap, nil
}

// snapshot copies the session so callers can read and marshal it while
// overrides keep mutating the stored one under the assembler's lock. The
// pointer fields are replaced wholesale by OverrideMatch, never written
// through, so copying the candidate structs is enough.
func (s *Session) snapshot() *Session {
	copied := *s
	copied.Candidates = make([]Candidate, len(s.Candidates))
	copy(copied.Candidates, s.Candidates)
	return &copied
}

func (a *Assembler) Get(sessionID string) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	session, ok := a.sessions[sessionID]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, apperrors.CodeSessionNotFound,
			"preview session not found")
	}
	return session.snapshot(), nil
}

// OverrideMatch replaces one candidate's resolved match. Setting a resident
// marks it manual/confirmed-to-be; clearing resets it to pending. No other
// candidate is read or touched.
func (a *Assembler) OverrideMatch(sessionID, tempID string, residentID *uuid.UUID) (*Candidate, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	session, ok := a.sessions[sessionID]
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, apperrors.CodeSessionNotFound,
			"preview session not found")
	}

	var cand *Candidate
	for i := range session.Candidates {
		if session.Candidates[i].TempID == tempID {
			cand = &session.Candidates[i]
			break
		}
	}
	if cand == nil {
		return nil, apperrors.New(apperrors.KindNotFound, apperrors.CodeCandidateNotFound,
			"candidate not found in session")
	}

	if residentID == nil {
		cand.ResidentID = nil
		cand.ProfileID = nil
		cand.MatchedBy = nil
		cand.WillBe = models.StatusPending
		cand.Reason = ""
		copied := *cand
		return &copied, nil
	}

	var resident *models.Resident
	for i := range session.Directory {
		if session.Directory[i].ID == *residentID {
			resident = &session.Directory[i]
			break
		}
	}
	if resident == nil {
		return nil, apperrors.New(apperrors.KindInput, apperrors.CodeDirectoryNotFound,
			"resident is not in the directory snapshot")
	}

	manual := models.MatchManual
	cand.ResidentID = &resident.ID
	cand.ProfileID = resident.ProfileID
	cand.MatchedBy = &manual
	cand.WillBe = models.StatusConfirmed
	cand.Reason = ""
	copied := *cand
	return &copied, nil
}

// Cancel drops the session. It holds no locks and reserved no ids, so there
// is nothing else to undo.
func (a *Assembler) Cancel(sessionID string) {
	a.mu.Lock()
	delete(a.sessions, sessionID)
	a.mu.Unlock()
}

// Commit converts every candidate into a PaymentRecord under a new batch.
// Records are written before the batch's slip_count is finalized, all inside
// one transaction: either the whole preview lands or none of it does.
// The session is claimed under the lock before the transaction starts, so a
// concurrent override cannot mutate a candidate mid-commit and tear the
// resident/matched-by pair; overrides racing a commit see session-not-found.
// A failed transaction puts the session back untouched.
func (a *Assembler) Commit(sessionID string) (*CommitResult, error) {
	a.mu.Lock()
	session, ok := a.sessions[sessionID]
	if ok {
		delete(a.sessions, sessionID)
	}
	a.mu.Unlock()
	if !ok {
		return nil, apperrors.New(apperrors.KindNotFound, apperrors.CodeSessionNotFound,
			"preview session not found")
	}

	var (
		batch *models.UploadBatch
		stats Stats
	)
	err := a.db.Transaction(func(tx *gorm.DB) error {
		var err error
		batch, err = a.batches.CreateTx(tx, session.FileName, session.SourceKind, session.Period)
		if err != nil {
			return err
		}

		for _, cand := range session.Candidates {
			items, err := models.EncodeLineItems(cand.Extracted.LineItems)
			if err != nil {
				return apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
					"encode line items", err)
			}
			record := models.PaymentRecord{
				ID:               uuid.New(),
				BatchID:          &batch.ID,
				InvoiceNumber:    cand.Extracted.InvoiceNumber,
				Apartment:        cand.Extracted.Apartment,
				PayerName:        cand.Extracted.PayerName,
				PaymentCode:      cand.Extracted.PaymentCode,
				PreviousBalance:  cand.Extracted.PreviousBalance,
				PaymentsReceived: cand.Extracted.PaymentsReceived,
				Accrued:          cand.Extracted.Accrued,
				TotalDue:         cand.Extracted.TotalDue,
				LineItems:        items,
				ResidentID:       cand.ResidentID,
				ProfileID:        cand.ProfileID,
				AssignmentStatus: cand.WillBe,
				MatchedBy:        cand.MatchedBy,
			}
			if err := tx.Create(&record).Error; err != nil {
				return apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
					"create payment record", err)
			}

			stats.Total++
			if cand.ResidentID != nil {
				stats.Matched++
			} else {
				stats.Pending++
			}
		}

		batch.SlipCount = stats.Total
		if err := tx.Model(&models.UploadBatch{}).
			Where("id = ?", batch.ID).
			Update("slip_count", stats.Total).Error; err != nil {
			return apperrors.Wrap(apperrors.KindPersistence, apperrors.CodeCommitFailed,
				"finalize slip count", err)
		}
		return nil
	})
	if err != nil {
		a.mu.Lock()
		a.sessions[sessionID] = session
		a.mu.Unlock()
		return nil, err
	}

	a.log.Info("preview committed",
		zap.String("batch_id", batch.ID.String()),
		zap.Int("total", stats.Total),
		zap.Int("matched", stats.Matched))
	return &CommitResult{Batch: batch, Stats: stats}, nil
}
