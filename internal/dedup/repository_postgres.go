package dedup

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPairRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresPairRepository(pool *pgxpool.Pool) *PostgresPairRepository {
	return &PostgresPairRepository{pool: pool}
}

// orderPair keeps the (a < b) storage invariant regardless of call order.
func orderPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

func (r *PostgresPairRepository) Ignore(ctx context.Context, skuA, skuB string) error {
	a, b := orderPair(skuA, skuB)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO ignored_duplicate_pairs (sku_a, sku_b)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, a, b)
	if err != nil {
		return fmt.Errorf("ignore pair: %w", err)
	}
	return nil
}

func (r *PostgresPairRepository) IsIgnored(ctx context.Context, skuA, skuB string) (bool, error) {
	a, b := orderPair(skuA, skuB)
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM ignored_duplicate_pairs WHERE sku_a = $1 AND sku_b = $2
		)
	`, a, b).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check ignored pair: %w", err)
	}
	return exists, nil
}

func (r *PostgresPairRepository) ListIgnored(ctx context.Context) ([][2]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT sku_a, sku_b FROM ignored_duplicate_pairs ORDER BY sku_a, sku_b`)
	if err != nil {
		return nil, fmt.Errorf("list ignored pairs: %w", err)
	}
	defer rows.Close()

	var out [][2]string
	for rows.Next() {
		var pair [2]string
		if err := rows.Scan(&pair[0], &pair[1]); err != nil {
			return nil, err
		}
		out = append(out, pair)
	}
	return out, rows.Err()
}
