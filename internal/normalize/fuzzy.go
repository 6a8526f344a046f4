package normalize

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
)

// PostgresFuzzySource scores candidate names with pg_trgm similarity on the
// database side, so only rows above the floor cross the wire.
type PostgresFuzzySource struct {
	pool *pgxpool.Pool
}

func NewPostgresFuzzySource(pool *pgxpool.Pool) *PostgresFuzzySource {
	return &PostgresFuzzySource{pool: pool}
}

func (f *PostgresFuzzySource) Similar(ctx context.Context, text string, floor float64, limit int) ([]matching.ScoredSKU, error) {
	query := `
		SELECT sku, similarity(base_name, $1) AS score
		FROM master_products
		WHERE status = 'active' AND similarity(base_name, $1) >= $2
		ORDER BY score DESC, sku
		LIMIT $3
	`

	rows, err := f.pool.Query(ctx, query, text, floor, limit)
	if err != nil {
		return nil, fmt.Errorf("trigram search: %w", err)
	}
	defer rows.Close()

	var out []matching.ScoredSKU
	for rows.Next() {
		var s matching.ScoredSKU
		if err := rows.Scan(&s.SKU, &s.Score); err != nil {
			return nil, fmt.Errorf("scan trigram row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MemoryFuzzySource walks the active catalog and scores names with an
// edit-distance ratio. Fine for tests and small catalogs.
type MemoryFuzzySource struct {
	products catalog.Repository
}

func NewMemoryFuzzySource(products catalog.Repository) *MemoryFuzzySource {
	return &MemoryFuzzySource{products: products}
}

func (f *MemoryFuzzySource) Similar(ctx context.Context, text string, floor float64, limit int) ([]matching.ScoredSKU, error) {
	active, err := f.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	var out []matching.ScoredSKU
	for _, p := range active {
		score := matching.NameRatio(text, p.BaseName)
		if score >= floor {
			out = append(out, matching.ScoredSKU{SKU: p.SKU, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].SKU < out[j].SKU
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
