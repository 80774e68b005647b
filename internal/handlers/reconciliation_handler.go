package handler

import (
	"io"
	"net/http"
	"strconv"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/gateway"
	"association-backoffice/internal/models"
	"association-backoffice/internal/repository"
	"association-backoffice/internal/services/assignment"
	"association-backoffice/internal/services/batches"
	"association-backoffice/internal/services/preview"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReconciliationHandler struct {
	extractor  gateway.Extractor
	directory  *repository.DirectoryRepository
	records    *repository.PaymentRecordRepository
	assembler  *preview.Assembler
	batches    *batches.Controller
	assignment *assignment.Service
}

func NewReconciliationHandler(
	extractor gateway.Extractor,
	directory *repository.DirectoryRepository,
	records *repository.PaymentRecordRepository,
	assembler *preview.Assembler,
	batchCtl *batches.Controller,
	assignSvc *assignment.Service,
) *ReconciliationHandler {
	return &ReconciliationHandler{
		extractor:  extractor,
		directory:  directory,
		records:    records,
		assembler:  assembler,
		batches:    batchCtl,
		assignment: assignSvc,
	}
}

// statusFor maps the error taxonomy onto HTTP statuses; rendering is the
// only thing this layer adds on top of the typed results.
func statusFor(err error) int {
	switch apperrors.KindOf(err) {
	case apperrors.KindInput:
		return http.StatusBadRequest
	case apperrors.KindGateway:
		return http.StatusBadGateway
	case apperrors.KindPrecondition:
		return http.StatusConflict
	case apperrors.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func renderError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		"error": err.Error(),
		"code":  string(apperrors.CodeOf(err)),
	})
}

// Parse accepts a multipart file or pasted text plus a period hint, calls
// the extraction gateway, and opens a preview session. A zero-candidate
// extraction is reported as found=false, not an error.
func (h *ReconciliationHandler) Parse(c *gin.Context) {
	req := gateway.ParseRequest{
		PeriodHint: c.PostForm("period"),
		SourceHint: models.SourceKind(c.PostForm("source_kind")),
		Text:       c.PostForm("text"),
	}

	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		data, rerr := io.ReadAll(file)
		if rerr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read uploaded file"})
			return
		}
		req.File = data
		req.FileName = header.Filename
	}

	result, err := h.extractor.Parse(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}

	directory, err := h.directory.ActiveResidents()
	if err != nil {
		renderError(c, err)
		return
	}

	session, err := h.assembler.Begin(result, directory, req.FileName, req.SourceHint, req.PeriodHint)
	if apperrors.IsCode(err, apperrors.CodeEmptyExtraction) {
		c.JSON(http.StatusOK, gin.H{"found": false, "message": "no records found"})
		return
	}
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"found": true, "session": session})
}

func (h *ReconciliationHandler) OverrideMatch(c *gin.Context) {
	var payload struct {
		TempID     string  `json:"temp_id"`
		ResidentID *string `json:"resident_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var residentID *uuid.UUID
	if payload.ResidentID != nil {
		id, err := uuid.Parse(*payload.ResidentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resident ID"})
			return
		}
		residentID = &id
	}

	cand, err := h.assembler.OverrideMatch(c.Param("sessionId"), payload.TempID, residentID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidate": cand})
}

func (h *ReconciliationHandler) CommitPreview(c *gin.Context) {
	result, err := h.assembler.Commit(c.Param("sessionId"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"batch": result.Batch,
		"stats": result.Stats,
	})
}

func (h *ReconciliationHandler) CancelPreview(c *gin.Context) {
	h.assembler.Cancel(c.Param("sessionId"))
	c.JSON(http.StatusOK, gin.H{"message": "preview discarded"})
}

func (h *ReconciliationHandler) ListBatches(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	list, err := h.batches.List(limit)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"batches": list})
}

func (h *ReconciliationHandler) DeleteBatch(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}
	removed, err := h.batches.Delete(batchID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":         "batch deleted",
		"records_removed": removed,
	})
}

func (h *ReconciliationHandler) ListBatchRecords(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("batchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid batch ID"})
		return
	}

	status := c.Query("status")
	cursor := c.Query("cursor")
	limit := 50

	items, nextCursor, hasMore, err := h.records.ListByBatch(batchID, status, cursor, limit)
	if err != nil {
		renderError(c, err)
		return
	}
	counts, err := h.batches.StatusCounts(batchID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
		"counts":      counts,
	})
}

// AssignRecord manually links a record to a resident, or clears the link
// when resident_id is null. A notification warning rides along with the
// successful result instead of failing it.
func (h *ReconciliationHandler) AssignRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID"})
		return
	}

	var payload struct {
		ResidentID *string `json:"resident_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var residentID *uuid.UUID
	if payload.ResidentID != nil {
		id, err := uuid.Parse(*payload.ResidentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resident ID"})
			return
		}
		residentID = &id
	}

	result, err := h.assignment.Assign(c.Request.Context(), recordID, residentID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"record":       result.Record,
		"notification": result.Notification,
		"warning":      result.Warning,
	})
}

func (h *ReconciliationHandler) AcceptRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID"})
		return
	}
	record, err := h.assignment.Accept(recordID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "record confirmed", "record": record})
}

func (h *ReconciliationHandler) DeclineRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID"})
		return
	}
	record, err := h.assignment.Decline(recordID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "suggestion declined", "record": record})
}

func (h *ReconciliationHandler) RejectRecord(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID"})
		return
	}
	record, err := h.assignment.Reject(recordID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "record rejected", "record": record})
}

func (h *ReconciliationHandler) BulkConfirm(c *gin.Context) {
	var payload struct {
		RecordIDs []string `json:"record_ids"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	ids := make([]uuid.UUID, 0, len(payload.RecordIDs))
	for _, raw := range payload.RecordIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record ID: " + raw})
			return
		}
		ids = append(ids, id)
	}

	count, err := h.assignment.BulkConfirm(ids)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":           "bulk confirm completed",
		"records_confirmed": count,
	})
}
