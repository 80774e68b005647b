package handler

import (
	"net/http"
	"time"

	"association-backoffice/internal/services/bankentries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BankEntryHandler struct {
	editor *bankentries.Editor
}

func NewBankEntryHandler(editor *bankentries.Editor) *BankEntryHandler {
	return &BankEntryHandler{editor: editor}
}

func (h *BankEntryHandler) List(c *gin.Context) {
	status := c.Query("status")
	cursor := c.Query("cursor")

	items, nextCursor, hasMore, err := h.editor.List(status, cursor, 50)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"next_cursor": nextCursor,
		"has_more":    hasMore,
	})
}

func (h *BankEntryHandler) Create(c *gin.Context) {
	var payload struct {
		TransactionDate string `json:"transaction_date"` // "2006-01-02"
		Counterparty    string `json:"counterparty"`
		Memo            string `json:"memo"`
		Amount          string `json:"amount"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	date, err := time.Parse("2006-01-02", payload.TransactionDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction date, expected yyyy-mm-dd"})
		return
	}
	amount, err := decimal.NewFromString(payload.Amount)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid amount"})
		return
	}
	if payload.Counterparty == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "counterparty required"})
		return
	}

	entry, err := h.editor.Create(date, payload.Counterparty, payload.Memo, amount)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry created", "entry": entry})
}

func (h *BankEntryHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	defer file.Close()

	imported, skipped, err := h.editor.ImportXLSX(file)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file":     header.Filename,
		"imported": imported,
		"skipped":  skipped,
	})
}

// Assign links an entry to exactly one vendor or resident; both ids null
// resets the entry to unassigned.
func (h *BankEntryHandler) Assign(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid entry ID"})
		return
	}

	var payload struct {
		VendorID   *string `json:"vendor_id"`
		ResidentID *string `json:"resident_id"`
	}
	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	var vendorID, residentID *uuid.UUID
	if payload.VendorID != nil {
		id, err := uuid.Parse(*payload.VendorID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid vendor ID"})
			return
		}
		vendorID = &id
	}
	if payload.ResidentID != nil {
		id, err := uuid.Parse(*payload.ResidentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid resident ID"})
			return
		}
		residentID = &id
	}

	entry, err := h.editor.Assign(entryID, vendorID, residentID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "entry updated", "entry": entry})
}
