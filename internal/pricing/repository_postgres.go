package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Apply runs the replacement rule inside a single conditional upsert, so
// two workers racing on the same pair cannot interleave a read and a
// write. The WHERE clause is the strictly-newer AND strictly-lower rule.
func (r *PostgresRepository) Apply(ctx context.Context, obs Observation) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO current_prices (sku, establishment, unit_price, observed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (sku, establishment) DO UPDATE SET
			unit_price  = EXCLUDED.unit_price,
			observed_at = EXCLUDED.observed_at,
			updated_at  = NOW()
		WHERE EXCLUDED.observed_at > current_prices.observed_at
		  AND EXCLUDED.unit_price  < current_prices.unit_price
	`, obs.SKU, obs.Establishment, obs.UnitPrice, obs.ObservedAt)
	if err != nil {
		return false, fmt.Errorf("apply price observation: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PostgresRepository) Get(ctx context.Context, sku, establishment string) (*CurrentPrice, error) {
	var p CurrentPrice
	err := r.pool.QueryRow(ctx, `
		SELECT sku, establishment, unit_price, observed_at, updated_at
		FROM current_prices
		WHERE sku = $1 AND establishment = $2
	`, sku, establishment).Scan(&p.SKU, &p.Establishment, &p.UnitPrice, &p.ObservedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get current price: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) ListBySKU(ctx context.Context, sku string) ([]CurrentPrice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sku, establishment, unit_price, observed_at, updated_at
		FROM current_prices
		WHERE sku = $1
		ORDER BY unit_price, establishment
	`, sku)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()
	return scanPrices(rows)
}

func (r *PostgresRepository) ListBySKUs(ctx context.Context, skus []string) ([]CurrentPrice, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT sku, establishment, unit_price, observed_at, updated_at
		FROM current_prices
		WHERE sku = ANY($1)
		ORDER BY sku, unit_price
	`, skus)
	if err != nil {
		return nil, fmt.Errorf("list prices: %w", err)
	}
	defer rows.Close()
	return scanPrices(rows)
}

// ReassignSKU moves price rows of a merged duplicate onto the surviving
// product. Where both products already have a row at the same
// establishment, the replacement rule picks the survivor.
func (r *PostgresRepository) ReassignSKU(ctx context.Context, fromSKU, toSKU string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin price reassign: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO current_prices (sku, establishment, unit_price, observed_at)
		SELECT $2, establishment, unit_price, observed_at
		FROM current_prices
		WHERE sku = $1
		ON CONFLICT (sku, establishment) DO UPDATE SET
			unit_price  = EXCLUDED.unit_price,
			observed_at = EXCLUDED.observed_at,
			updated_at  = NOW()
		WHERE EXCLUDED.observed_at > current_prices.observed_at
		  AND EXCLUDED.unit_price  < current_prices.unit_price
	`, fromSKU, toSKU)
	if err != nil {
		return fmt.Errorf("move prices: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM current_prices WHERE sku = $1`, fromSKU); err != nil {
		return fmt.Errorf("drop duplicate prices: %w", err)
	}

	return tx.Commit(ctx)
}

func scanPrices(rows pgx.Rows) ([]CurrentPrice, error) {
	var out []CurrentPrice
	for rows.Next() {
		var p CurrentPrice
		if err := rows.Scan(&p.SKU, &p.Establishment, &p.UnitPrice, &p.ObservedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
