package ingest

import (
	"context"
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

const itemColumns = `
	id, receipt_id, user_id, establishment, description,
	COALESCE(quantity, 0), COALESCE(unit, ''),
	COALESCE(unit_price, 0), COALESCE(total_price, 0),
	COALESCE(category_hint, ''),
	purchase_at, status, COALESCE(failure_reason, ''), COALESCE(resolved_sku, ''),
	created_at, updated_at
`

func (r *PostgresRepository) EnqueueBatch(ctx context.Context, items []ReceiptItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
			INSERT INTO receipt_items
				(id, receipt_id, user_id, establishment, description, quantity, unit,
				 unit_price, total_price, category_hint, purchase_at, status, failure_reason)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
		`, it.ID, it.ReceiptID, it.UserID, it.Establishment, it.Description,
			it.Quantity, it.Unit, it.UnitPrice, it.TotalPrice, it.CategoryHint,
			it.PurchasedAt, it.Status, it.FailureReason)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("enqueue receipt item: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) FetchPendingBatch(ctx context.Context, limit int) ([]ReceiptItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM receipt_items
		WHERE status = 'PENDING'
		ORDER BY created_at
		LIMIT $1
	`, itemColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch pending items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *PostgresRepository) MarkNormalized(ctx context.Context, id, sku string) error {
	return r.setStatus(ctx, id, StatusNormalized, "", sku)
}

func (r *PostgresRepository) MarkPendingReview(ctx context.Context, id string) error {
	return r.setStatus(ctx, id, StatusPendingReview, "", "")
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id, reason string) error {
	return r.setStatus(ctx, id, StatusFailed, reason, "")
}

// RequeueForText puts every item with the given description that is parked
// in review back on the pending queue. Called once the text gains a synonym
// so the next worker pass resolves the items and records their prices.
func (r *PostgresRepository) RequeueForText(ctx context.Context, description string) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE receipt_items
		SET status = 'PENDING', updated_at = NOW()
		WHERE status = 'PENDING_REVIEW' AND btrim(description) = $1
	`, description)
	if err != nil {
		return 0, fmt.Errorf("requeue items for %q: %w", description, err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PostgresRepository) setStatus(ctx context.Context, id, status, reason, sku string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE receipt_items
		SET status = $2,
			failure_reason = NULLIF($3, ''),
			resolved_sku = NULLIF($4, ''),
			updated_at = NOW()
		WHERE id = $1
	`, id, status, reason, sku)
	if err != nil {
		return fmt.Errorf("update item %s: %w", id, err)
	}
	return nil
}

// ListResolved returns every item that ended up bound to a SKU, oldest
// first, for price-history replays.
func (r *PostgresRepository) ListResolved(ctx context.Context) ([]ReceiptItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM receipt_items
		WHERE status = 'NORMALIZED' AND resolved_sku IS NOT NULL
		ORDER BY purchase_at
	`, itemColumns)

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list resolved items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *PostgresRepository) ListByReceipt(ctx context.Context, receiptID string) ([]ReceiptItem, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM receipt_items
		WHERE receipt_id = $1
		ORDER BY created_at
	`, itemColumns)

	rows, err := r.pool.Query(ctx, query, receiptID)
	if err != nil {
		return nil, fmt.Errorf("list receipt items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func (r *PostgresRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM receipt_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanItems(rows pgx.Rows) ([]ReceiptItem, error) {
	var items []ReceiptItem
	for rows.Next() {
		var it ReceiptItem
		err := rows.Scan(
			&it.ID, &it.ReceiptID, &it.UserID, &it.Establishment, &it.Description,
			&it.Quantity, &it.Unit, &it.UnitPrice, &it.TotalPrice, &it.CategoryHint,
			&it.PurchasedAt, &it.Status, &it.FailureReason, &it.ResolvedSKU,
			&it.CreatedAt, &it.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan receipt item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
