package normalize

import (
	"context"

	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
)

// SynonymRepository stores raw-text to SKU bindings. Upsert never lowers a
// stored confidence.
type SynonymRepository interface {
	Upsert(ctx context.Context, s *Synonym) error
	GetByRawText(ctx context.Context, rawText string) (*Synonym, error)
	Lookup(ctx context.Context, rawText, canonicalText string) ([]matching.SynonymHit, error)
	ListBySKU(ctx context.Context, sku string) ([]Synonym, error)
	ReassignSKU(ctx context.Context, fromSKU, toSKU string) error
}
