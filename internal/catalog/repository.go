package catalog

import "context"

type Repository interface {
	Create(ctx context.Context, p *MasterProduct) error
	GetBySKU(ctx context.Context, sku string) (*MasterProduct, error)
	ListActiveByCategory(ctx context.Context, category string) ([]MasterProduct, error)
	ListActive(ctx context.Context) ([]MasterProduct, error)

	// IncrementCounters bumps the receipt counter and, when this user has
	// not been seen for the product before, the distinct-user counter.
	// Both updates are atomic on the database side.
	IncrementCounters(ctx context.Context, sku, userID string) error

	SetEmbedding(ctx context.Context, sku string, embedding []float32) error
	Deactivate(ctx context.Context, sku string) error

	// AbsorbCounters folds the counters of a merged duplicate into the
	// surviving product. Distinct users are deduplicated, not summed.
	AbsorbCounters(ctx context.Context, fromSKU, toSKU string) error
}
