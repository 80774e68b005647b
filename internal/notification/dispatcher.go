// Package notification delivers assignment notices to residents through the
// external mail service. Delivery failure is always a warning for callers,
// never a reason to undo an assignment.
package notification

import (
	"context"
	"fmt"

	"association-backoffice/internal/apperrors"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Dispatch struct {
	RecordID      uuid.UUID       `json:"record_id"`
	ResidentID    uuid.UUID       `json:"resident_ref"`
	ProfileID     *uuid.UUID      `json:"profile_ref"`
	Email         string          `json:"email"`
	Period        string          `json:"period"`
	Amount        decimal.Decimal `json:"amount"`
	InvoiceNumber string          `json:"invoice_number"`
	Apartment     string          `json:"apartment"`
}

// Dispatcher is the seam tests fake delivery through.
type Dispatcher interface {
	Send(ctx context.Context, d Dispatch) error
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

type sendResponse struct {
	Success bool   `json:"success"`
	Failed  int    `json:"failed"`
	Error   string `json:"error"`
}

func (c *Client) Send(ctx context.Context, d Dispatch) error {
	var out sendResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(d).
		SetResult(&out).
		Post("/notify")
	if err != nil {
		return apperrors.Wrap(apperrors.KindNotification, apperrors.CodeDispatchFailed,
			"notification service unreachable", err)
	}
	if resp.IsError() || !out.Success || out.Failed > 0 {
		c.log.Warn("notification delivery failed",
			zap.String("record_id", d.RecordID.String()),
			zap.Int("status", resp.StatusCode()),
			zap.String("error", out.Error))
		return apperrors.New(apperrors.KindNotification, apperrors.CodeDispatchFailed,
			fmt.Sprintf("delivery failed: %s", out.Error))
	}
	return nil
}
