package ingest

import "context"

// Repository is the receipt-item queue.
type Repository interface {
	EnqueueBatch(ctx context.Context, items []ReceiptItem) error
	FetchPendingBatch(ctx context.Context, limit int) ([]ReceiptItem, error)
	MarkNormalized(ctx context.Context, id, sku string) error
	MarkPendingReview(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
	RequeueForText(ctx context.Context, description string) (int, error)
	ListResolved(ctx context.Context) ([]ReceiptItem, error)
	ListByReceipt(ctx context.Context, receiptID string) ([]ReceiptItem, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}
