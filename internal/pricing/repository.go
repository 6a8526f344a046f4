package pricing

import "context"

// Repository stores one current price per (product, establishment).
type Repository interface {
	// Apply upserts an observation under the replacement rule and reports
	// whether the stored row changed. It must be atomic under concurrent
	// writers.
	Apply(ctx context.Context, obs Observation) (bool, error)
	Get(ctx context.Context, sku, establishment string) (*CurrentPrice, error)
	ListBySKU(ctx context.Context, sku string) ([]CurrentPrice, error)
	ListBySKUs(ctx context.Context, skus []string) ([]CurrentPrice, error)
	ReassignSKU(ctx context.Context, fromSKU, toSKU string) error
}
