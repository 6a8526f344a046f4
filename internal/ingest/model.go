package ingest

import (
	"strings"
	"time"
)

// Item statuses across the normalization queue.
const (
	StatusPending       = "PENDING"
	StatusNormalized    = "NORMALIZED"
	StatusPendingReview = "PENDING_REVIEW"
	StatusQuarantined   = "QUARANTINED"
	StatusFailed        = "FAILED"
)

// ReceiptPayload is the intake body posted by the receipt-capture app
// after fiscal parsing.
type ReceiptPayload struct {
	ReceiptID     string    `json:"receipt_id" binding:"required"`
	UserID        string    `json:"user_id" binding:"required"`
	Establishment string    `json:"establishment" binding:"required"`
	PurchasedAt   time.Time `json:"purchased_at" binding:"required"`
	Items         []RawItem `json:"items" binding:"required"`
}

// RawItem is one line of a parsed receipt, exactly as the fiscal note
// printed it.
type RawItem struct {
	Description  string  `json:"description"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	UnitPrice    float64 `json:"unit_price"`
	TotalPrice   float64 `json:"total_price"`
	CategoryHint string  `json:"category_hint"`
}

// ReceiptItem is a queued line item, persisted until the worker resolves
// it to a SKU or an operator handles it.
type ReceiptItem struct {
	ID            string    `json:"id"`
	ReceiptID     string    `json:"receipt_id"`
	UserID        string    `json:"user_id"`
	Establishment string    `json:"establishment"`
	Description   string    `json:"description"`
	Quantity      float64   `json:"quantity"`
	Unit          string    `json:"unit"`
	UnitPrice     float64   `json:"unit_price"`
	TotalPrice    float64   `json:"total_price"`
	CategoryHint  string    `json:"category_hint"`
	PurchasedAt   time.Time `json:"purchased_at"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
	ResolvedSKU   string    `json:"resolved_sku,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks one raw item. A non-empty reason quarantines the item;
// it is stored for audit but never normalized or priced.
func (i RawItem) Validate(purchasedAt time.Time, now time.Time) string {
	switch {
	case strings.TrimSpace(i.Description) == "":
		return "empty description"
	case i.UnitPrice < 0 || i.TotalPrice < 0:
		return "negative price"
	case i.UnitPrice == 0 && i.TotalPrice == 0:
		return "no price information"
	case i.Quantity < 0:
		return "negative quantity"
	case purchasedAt.IsZero():
		return "missing purchase timestamp"
	case purchasedAt.After(now.Add(24 * time.Hour)):
		return "purchase timestamp in the future"
	}
	return ""
}
