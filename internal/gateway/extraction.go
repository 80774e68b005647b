// Package gateway speaks to the external extraction service that turns an
// uploaded file or pasted text into candidate payment records. Matching
// heuristics live entirely on the other side of this contract.
package gateway

import (
	"bytes"
	"context"
	"fmt"

	"association-backoffice/internal/apperrors"
	"association-backoffice/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SuggestedMatch is the gateway's pre-resolved link to a directory entry.
// MatchType is opaque here; this engine never recomputes it.
type SuggestedMatch struct {
	ResidentID uuid.UUID        `json:"resident_id"`
	MatchType  models.MatchType `json:"match_type"`
	Reason     string           `json:"reason"`
}

type ExtractedFields struct {
	InvoiceNumber    string            `json:"invoice_number"`
	Apartment        string            `json:"apartment"`
	PayerName        string            `json:"payer_name"`
	PaymentCode      string            `json:"payment_code"`
	PreviousBalance  decimal.Decimal   `json:"previous_balance"`
	PaymentsReceived decimal.Decimal   `json:"payments_received"`
	Accrued          decimal.Decimal   `json:"accrued"`
	TotalDue         decimal.Decimal   `json:"total_due"`
	LineItems        []models.LineItem `json:"line_items"`
}

type Candidate struct {
	TempID        string          `json:"temp_id"`
	Extracted     ExtractedFields `json:"extracted"`
	Suggested     *SuggestedMatch `json:"suggested_match"`
	FailureReason string          `json:"failure_reason"`
}

type ParseRequest struct {
	FileName   string
	File       []byte
	Text       string
	PeriodHint string
	SourceHint models.SourceKind
}

type ParseResult struct {
	Candidates []Candidate
	Total      int
}

// Extractor is the seam tests fake the external service through.
type Extractor interface {
	Parse(ctx context.Context, req ParseRequest) (*ParseResult, error)
}

type Client struct {
	http *resty.Client
	log  *zap.Logger
}

func NewClient(baseURL string, log *zap.Logger) *Client {
	return &Client{
		http: resty.New().SetBaseURL(baseURL),
		log:  log,
	}
}

type parseResponse struct {
	Candidates []Candidate `json:"candidates"`
	Stats      struct {
		Total int `json:"total"`
	} `json:"stats"`
}

func (c *Client) Parse(ctx context.Context, req ParseRequest) (*ParseResult, error) {
	if len(req.File) == 0 && req.Text == "" {
		return nil, apperrors.New(apperrors.KindInput, apperrors.CodeNoInput,
			"either a file or pasted text is required")
	}
	if !req.SourceHint.Valid() {
		return nil, apperrors.New(apperrors.KindInput, apperrors.CodeUnsupportedSource,
			fmt.Sprintf("unsupported source kind %q", req.SourceHint))
	}

	var out parseResponse
	r := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetMultipartFormData(map[string]string{
			"period_hint": req.PeriodHint,
			"source_hint": string(req.SourceHint),
		})
	if len(req.File) > 0 {
		r.SetMultipartField("file", req.FileName, "application/octet-stream", bytes.NewReader(req.File))
	} else {
		r.SetMultipartFormData(map[string]string{"text": req.Text})
	}

	resp, err := r.Post("/parse")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindGateway, apperrors.CodeGatewayUnavailable,
			"extraction service unreachable", err)
	}
	if resp.IsError() {
		c.log.Warn("extraction service rejected request",
			zap.Int("status", resp.StatusCode()),
			zap.String("file", req.FileName))
		return nil, apperrors.New(apperrors.KindGateway, apperrors.CodeMalformedResponse,
			fmt.Sprintf("extraction service returned %d", resp.StatusCode()))
	}

	for i := range out.Candidates {
		if out.Candidates[i].TempID == "" {
			return nil, apperrors.New(apperrors.KindGateway, apperrors.CodeMalformedResponse,
				"candidate without temp id in extraction response")
		}
	}
	return &ParseResult{Candidates: out.Candidates, Total: out.Stats.Total}, nil
}
