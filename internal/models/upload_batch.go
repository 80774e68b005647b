package models

import (
	"time"

	"github.com/google/uuid"
)

type SourceKind string

const (
	SourcePDF   SourceKind = "pdf"
	SourceExcel SourceKind = "excel"
	SourceText  SourceKind = "text"
)

func (k SourceKind) Valid() bool {
	switch k {
	case SourcePDF, SourceExcel, SourceText:
		return true
	}
	return false
}

// UploadBatch groups every payment record saved from one preview session.
// SlipCount caches the number of owned records and must be updated in the
// same transaction as any change to batch membership.
type UploadBatch struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FileName   string     `json:"file_name"`
	SourceKind SourceKind `json:"source_kind"`
	Period     string     `gorm:"index" json:"period"`
	SlipCount  int        `json:"slip_count"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
