package normalize

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
)

// ErrNotFound is returned when no synonym matches a lookup.
var ErrNotFound = errors.New("synonym not found")

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Upsert inserts a binding or raises the confidence of an existing one.
// GREATEST keeps repeated sightings from ever lowering a confirmed link.
func (r *PostgresRepository) Upsert(ctx context.Context, s *Synonym) error {
	query := `
		INSERT INTO product_synonyms (raw_text, normalized_text, sku, confidence, method)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (raw_text, sku) DO UPDATE SET
			confidence = GREATEST(product_synonyms.confidence, EXCLUDED.confidence),
			method     = EXCLUDED.method,
			updated_at = NOW()
		RETURNING id, confidence, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		s.RawText, s.NormalizedText, s.SKU, s.Confidence, s.Method,
	).Scan(&s.ID, &s.Confidence, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert synonym: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByRawText(ctx context.Context, rawText string) (*Synonym, error) {
	query := `
		SELECT id, raw_text, normalized_text, sku, confidence, method, created_at, updated_at
		FROM product_synonyms
		WHERE raw_text = $1
		ORDER BY confidence DESC
		LIMIT 1
	`

	var s Synonym
	err := r.pool.QueryRow(ctx, query, rawText).Scan(
		&s.ID, &s.RawText, &s.NormalizedText, &s.SKU, &s.Confidence, &s.Method, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get synonym: %w", err)
	}
	return &s, nil
}

// Lookup implements matching.SynonymSource. Exact raw-text matches come
// first; bindings that share the canonical form are a weaker second tier.
func (r *PostgresRepository) Lookup(ctx context.Context, rawText, canonicalText string) ([]matching.SynonymHit, error) {
	query := `
		SELECT sku, MAX(confidence)
		FROM product_synonyms
		WHERE raw_text = $1 OR normalized_text = $2
		GROUP BY sku
		ORDER BY MAX(confidence) DESC
	`

	rows, err := r.pool.Query(ctx, query, rawText, canonicalText)
	if err != nil {
		return nil, fmt.Errorf("lookup synonyms: %w", err)
	}
	defer rows.Close()

	var hits []matching.SynonymHit
	for rows.Next() {
		var h matching.SynonymHit
		if err := rows.Scan(&h.SKU, &h.Confidence); err != nil {
			return nil, fmt.Errorf("scan synonym hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}

func (r *PostgresRepository) ListBySKU(ctx context.Context, sku string) ([]Synonym, error) {
	query := `
		SELECT id, raw_text, normalized_text, sku, confidence, method, created_at, updated_at
		FROM product_synonyms
		WHERE sku = $1
		ORDER BY confidence DESC, raw_text
	`

	rows, err := r.pool.Query(ctx, query, sku)
	if err != nil {
		return nil, fmt.Errorf("list synonyms: %w", err)
	}
	defer rows.Close()

	var out []Synonym
	for rows.Next() {
		var s Synonym
		if err := rows.Scan(&s.ID, &s.RawText, &s.NormalizedText, &s.SKU, &s.Confidence, &s.Method, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan synonym: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ReassignSKU repoints bindings of a merged duplicate to the surviving
// product. A raw text already bound to the target keeps the higher
// confidence of the two rows.
func (r *PostgresRepository) ReassignSKU(ctx context.Context, fromSKU, toSKU string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reassign: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE product_synonyms AS dst
		SET confidence = GREATEST(dst.confidence, src.confidence), updated_at = NOW()
		FROM product_synonyms AS src
		WHERE dst.sku = $2 AND src.sku = $1 AND dst.raw_text = src.raw_text
	`, fromSKU, toSKU)
	if err != nil {
		return fmt.Errorf("merge overlapping synonyms: %w", err)
	}

	_, err = tx.Exec(ctx, `
		DELETE FROM product_synonyms AS src
		WHERE src.sku = $1 AND EXISTS (
			SELECT 1 FROM product_synonyms dst
			WHERE dst.sku = $2 AND dst.raw_text = src.raw_text
		)
	`, fromSKU, toSKU)
	if err != nil {
		return fmt.Errorf("drop merged synonyms: %w", err)
	}

	_, err = tx.Exec(ctx, `UPDATE product_synonyms SET sku = $2, updated_at = NOW() WHERE sku = $1`, fromSKU, toSKU)
	if err != nil {
		return fmt.Errorf("reassign synonyms: %w", err)
	}

	return tx.Commit(ctx)
}
