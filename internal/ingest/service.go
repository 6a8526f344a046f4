package ingest

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
)

// IntakeResult reports what happened to one posted receipt.
type IntakeResult struct {
	ReceiptID   string   `json:"receipt_id"`
	Enqueued    int      `json:"enqueued"`
	Quarantined int      `json:"quarantined"`
	ItemIDs     []string `json:"item_ids"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Accept validates a parsed receipt and queues its items. Malformed lines
// are stored quarantined instead of dropped, so nothing silently vanishes
// from the audit trail.
func (s *Service) Accept(ctx context.Context, payload ReceiptPayload) (*IntakeResult, error) {
	now := time.Now()
	result := &IntakeResult{ReceiptID: payload.ReceiptID}

	items := make([]ReceiptItem, 0, len(payload.Items))
	for _, raw := range payload.Items {
		item := ReceiptItem{
			ID:            uuid.NewString(),
			ReceiptID:     payload.ReceiptID,
			UserID:        payload.UserID,
			Establishment: payload.Establishment,
			Description:   raw.Description,
			Quantity:      raw.Quantity,
			Unit:          raw.Unit,
			UnitPrice:     raw.UnitPrice,
			TotalPrice:    raw.TotalPrice,
			CategoryHint:  raw.CategoryHint,
			PurchasedAt:   payload.PurchasedAt,
			Status:        StatusPending,
		}

		if reason := raw.Validate(payload.PurchasedAt, now); reason != "" {
			item.Status = StatusQuarantined
			item.FailureReason = reason
			result.Quarantined++
			log.Printf("[INGEST] quarantined item on receipt %s: %s", payload.ReceiptID, reason)
		} else {
			result.Enqueued++
		}

		result.ItemIDs = append(result.ItemIDs, item.ID)
		items = append(items, item)
	}

	if err := s.repo.EnqueueBatch(ctx, items); err != nil {
		return nil, err
	}

	log.Printf("[INGEST] receipt %s accepted: %d queued, %d quarantined",
		payload.ReceiptID, result.Enqueued, result.Quarantined)
	return result, nil
}

func (s *Service) ReceiptItems(ctx context.Context, receiptID string) ([]ReceiptItem, error) {
	return s.repo.ListByReceipt(ctx, receiptID)
}

func (s *Service) QueueStats(ctx context.Context) (map[string]int, error) {
	return s.repo.CountByStatus(ctx)
}
