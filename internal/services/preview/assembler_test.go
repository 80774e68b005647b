package preview

import (
	"fmt"
	"testing"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/events"
	"association-backoffice/internal/gateway"
	"association-backoffice/internal/models"
	"association-backoffice/internal/repository"
	"association-backoffice/internal/services/batches"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAssembler(t *testing.T) (*Assembler, *gorm.DB) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.UploadBatch{},
		&models.PaymentRecord{},
	))

	ctl := batches.NewController(
		repository.NewBatchRepository(db),
		repository.NewPaymentRecordRepository(db),
		events.NewBus(),
		zap.NewNop(),
	)
	return NewAssembler(db, ctl, zap.NewNop()), db
}

func testDirectory() []models.Resident {
	profile := uuid.New()
	return []models.Resident{
		{ID: uuid.New(), DisplayName: "Ana Petrova", Apartment: "12", ProfileID: &profile, Active: true},
		{ID: uuid.New(), DisplayName: "Boris Ilic", Apartment: "7", Active: true},
	}
}

func suggestedFor(r models.Resident, mt models.MatchType) *gateway.SuggestedMatch {
	return &gateway.SuggestedMatch{ResidentID: r.ID, MatchType: mt, Reason: "matched by " + string(mt)}
}

func TestBeginWithZeroCandidatesCreatesNothing(t *testing.T) {
	assembler, db := setupAssembler(t)

	_, err := assembler.Begin(&gateway.ParseResult{}, testDirectory(), "empty.pdf", models.SourcePDF, "2026-07")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeEmptyExtraction, apperrors.CodeOf(err))

	var batchCount, recordCount int64
	require.NoError(t, db.Model(&models.UploadBatch{}).Count(&batchCount).Error)
	require.NoError(t, db.Model(&models.PaymentRecord{}).Count(&recordCount).Error)
	assert.Zero(t, batchCount)
	assert.Zero(t, recordCount)
}

func TestCommitPersistsAllCandidatesWithStats(t *testing.T) {
	assembler, db := setupAssembler(t)
	directory := testDirectory()

	result := &gateway.ParseResult{
		Candidates: []gateway.Candidate{
			{
				TempID:    "c1",
				Extracted: gateway.ExtractedFields{PayerName: "Ana Petrova", Apartment: "12", TotalDue: decimal.NewFromInt(120)},
				Suggested: suggestedFor(directory[0], models.MatchApartmentNumber),
			},
			{
				TempID:    "c2",
				Extracted: gateway.ExtractedFields{PayerName: "Boris Ilic", Apartment: "7", TotalDue: decimal.NewFromInt(85)},
				Suggested: suggestedFor(directory[1], models.MatchApartmentNumber),
			},
			{
				TempID:        "c3",
				Extracted:     gateway.ExtractedFields{PayerName: "Unknown Payer"},
				FailureReason: "no directory entry matched",
			},
		},
		Total: 3,
	}

	session, err := assembler.Begin(result, directory, "july.pdf", models.SourcePDF, "2026-07")
	require.NoError(t, err)

	commit, err := assembler.Commit(session.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Matched: 2, Pending: 1}, commit.Stats)
	assert.Equal(t, 3, commit.Batch.SlipCount)

	var saved models.UploadBatch
	require.NoError(t, db.First(&saved, "id = ?", commit.Batch.ID).Error)
	assert.Equal(t, 3, saved.SlipCount)

	var byApartment int64
	require.NoError(t, db.Model(&models.PaymentRecord{}).
		Where("batch_id = ? AND matched_by = ?", commit.Batch.ID, models.MatchApartmentNumber).
		Count(&byApartment).Error)
	assert.EqualValues(t, 2, byApartment)

	// Resident id and matched-by move together.
	var records []models.PaymentRecord
	require.NoError(t, db.Where("batch_id = ?", commit.Batch.ID).Find(&records).Error)
	require.Len(t, records, 3)
	for _, r := range records {
		assert.Equal(t, r.ResidentID != nil, r.MatchedBy != nil, "record %s", r.PayerName)
	}

	// The session is gone after commit.
	_, err = assembler.Get(session.ID)
	assert.Equal(t, apperrors.CodeSessionNotFound, apperrors.CodeOf(err))
}

func TestOverrideMatchIsPerCandidate(t *testing.T) {
	assembler, _ := setupAssembler(t)
	directory := testDirectory()

	result := &gateway.ParseResult{
		Candidates: []gateway.Candidate{
			{TempID: "c1", Extracted: gateway.ExtractedFields{PayerName: "One"}},
			{TempID: "c2", Extracted: gateway.ExtractedFields{PayerName: "Two"}, Suggested: suggestedFor(directory[1], models.MatchNameFuzzy)},
		},
		Total: 2,
	}
	session, err := assembler.Begin(result, directory, "july.pdf", models.SourcePDF, "2026-07")
	require.NoError(t, err)

	cand, err := assembler.OverrideMatch(session.ID, "c1", &directory[0].ID)
	require.NoError(t, err)
	require.NotNil(t, cand.MatchedBy)
	assert.Equal(t, models.MatchManual, *cand.MatchedBy)
	assert.Equal(t, models.StatusConfirmed, cand.WillBe)
	assert.Equal(t, directory[0].ProfileID, cand.ProfileID)

	// The other candidate kept its gateway suggestion.
	session, err = assembler.Get(session.ID)
	require.NoError(t, err)
	other := session.Candidates[1]
	require.NotNil(t, other.MatchedBy)
	assert.Equal(t, models.MatchNameFuzzy, *other.MatchedBy)
	assert.Equal(t, models.StatusAutoMatched, other.WillBe)

	// Clearing resets the candidate to pending with no link.
	cand, err = assembler.OverrideMatch(session.ID, "c1", nil)
	require.NoError(t, err)
	assert.Nil(t, cand.ResidentID)
	assert.Nil(t, cand.ProfileID)
	assert.Nil(t, cand.MatchedBy)
	assert.Equal(t, models.StatusPending, cand.WillBe)
}

func TestOverrideRejectsUnknownResident(t *testing.T) {
	assembler, _ := setupAssembler(t)

	result := &gateway.ParseResult{
		Candidates: []gateway.Candidate{{TempID: "c1"}},
		Total:      1,
	}
	session, err := assembler.Begin(result, testDirectory(), "july.pdf", models.SourcePDF, "2026-07")
	require.NoError(t, err)

	stranger := uuid.New()
	_, err = assembler.OverrideMatch(session.ID, "c1", &stranger)
	assert.Equal(t, apperrors.CodeDirectoryNotFound, apperrors.CodeOf(err))
}

func TestCommitClaimsSessionAgainstConcurrentOverrides(t *testing.T) {
	assembler, db := setupAssembler(t)
	directory := testDirectory()

	// A wide session keeps the commit transaction busy long enough for the
	// override loop to overlap it.
	const candidates = 200
	result := &gateway.ParseResult{Total: candidates}
	for i := 0; i < candidates; i++ {
		result.Candidates = append(result.Candidates, gateway.Candidate{
			TempID:    fmt.Sprintf("c%d", i),
			Extracted: gateway.ExtractedFields{PayerName: fmt.Sprintf("Payer %d", i)},
		})
	}
	session, err := assembler.Begin(result, directory, "july.pdf", models.SourcePDF, "2026-07")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; ; i++ {
			tempID := fmt.Sprintf("c%d", i%candidates)
			var target *uuid.UUID
			if i%2 == 0 {
				target = &directory[0].ID
			}
			_, err := assembler.OverrideMatch(session.ID, tempID, target)
			if err != nil {
				// The commit claimed the session; overrides racing it are
				// turned away, never applied halfway.
				assert.Equal(t, apperrors.CodeSessionNotFound, apperrors.CodeOf(err))
				return
			}
		}
	}()

	commit, err := assembler.Commit(session.ID)
	require.NoError(t, err)
	<-done

	var records []models.PaymentRecord
	require.NoError(t, db.Where("batch_id = ?", commit.Batch.ID).Find(&records).Error)
	require.Len(t, records, candidates)
	for _, r := range records {
		// Whatever interleaving won, each record is one of the two whole
		// outcomes an override produces, never a torn mix.
		if r.ResidentID != nil {
			require.NotNil(t, r.MatchedBy, "record %s", r.PayerName)
			assert.Equal(t, models.MatchManual, *r.MatchedBy)
			assert.Equal(t, models.StatusConfirmed, r.AssignmentStatus)
		} else {
			assert.Nil(t, r.MatchedBy, "record %s", r.PayerName)
			assert.Equal(t, models.StatusPending, r.AssignmentStatus)
		}
	}
}

func TestFailedCommitRestoresSession(t *testing.T) {
	assembler, db := setupAssembler(t)
	directory := testDirectory()

	result := &gateway.ParseResult{
		Candidates: []gateway.Candidate{{TempID: "c1", Extracted: gateway.ExtractedFields{PayerName: "One"}}},
		Total:      1,
	}
	session, err := assembler.Begin(result, directory, "july.pdf", models.SourcePDF, "2026-07")
	require.NoError(t, err)

	// Force the transaction to fail after it has started.
	require.NoError(t, db.Migrator().DropTable(&models.PaymentRecord{}))

	_, err = assembler.Commit(session.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindPersistence, apperrors.KindOf(err))

	// The claimed session went back; the operator can retry the commit.
	restored, err := assembler.Get(session.ID)
	require.NoError(t, err)
	assert.Len(t, restored.Candidates, 1)

	require.NoError(t, db.AutoMigrate(&models.PaymentRecord{}))
	commit, err := assembler.Commit(session.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 1, Matched: 0, Pending: 1}, commit.Stats)
}

func TestCancelLeavesNoPersistentState(t *testing.T) {
	assembler, db := setupAssembler(t)

	result := &gateway.ParseResult{
		Candidates: []gateway.Candidate{{TempID: "c1"}, {TempID: "c2"}},
		Total:      2,
	}
	session, err := assembler.Begin(result, testDirectory(), "july.pdf", models.SourcePDF, "2026-07")
	require.NoError(t, err)

	assembler.Cancel(session.ID)

	_, err = assembler.Commit(session.ID)
	assert.Equal(t, apperrors.CodeSessionNotFound, apperrors.CodeOf(err))

	var batchCount int64
	require.NoError(t, db.Model(&models.UploadBatch{}).Count(&batchCount).Error)
	assert.Zero(t, batchCount)
}
