package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const productColumns = `
	sku, display_name, base_name, COALESCE(brand, ''), category,
	COALESCE(package_type, ''), COALESCE(package_qty, 0), COALESCE(package_unit, ''),
	is_bulk, provisional, status, receipt_count, user_count, embedding,
	created_at, updated_at
`

// --------------------------------------------------
// CREATE (NEVER OVERWRITES AN EXISTING SKU)
// --------------------------------------------------
func (r *PostgresRepository) Create(ctx context.Context, p *MasterProduct) error {
	cmd, err := r.db.Exec(ctx, `
		INSERT INTO master_products (
			sku, display_name, base_name, brand, category,
			package_type, package_qty, package_unit,
			is_bulk, provisional, status, embedding
		)
		VALUES (
			$1, $2, $3, NULLIF($4, ''), $5,
			NULLIF($6, ''), NULLIF($7, 0), NULLIF($8, ''),
			$9, $10, $11, $12
		)
		ON CONFLICT (sku) DO NOTHING
	`,
		p.SKU, p.DisplayName, p.BaseName, p.Brand, p.Category,
		p.PackageType, p.PackageQty, p.PackageUnit,
		p.IsBulk, p.Provisional, StatusActive, p.Embedding,
	)
	if err != nil {
		return fmt.Errorf("create master product: %w", err)
	}

	// SKU derivation is deterministic, so a conflict means the identical
	// product already exists. Not an error.
	if cmd.RowsAffected() == 0 {
		return nil
	}

	p.Status = StatusActive
	return nil
}

func (r *PostgresRepository) GetBySKU(ctx context.Context, sku string) (*MasterProduct, error) {
	row := r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM master_products WHERE sku = $1`, sku)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return p, nil
}

func (r *PostgresRepository) ListActiveByCategory(ctx context.Context, category string) ([]MasterProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM master_products
		WHERE status = 'active' AND category = $1
		ORDER BY created_at
	`, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *PostgresRepository) ListActive(ctx context.Context) ([]MasterProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+productColumns+`
		FROM master_products
		WHERE status = 'active'
		ORDER BY category, created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

// --------------------------------------------------
// COUNTERS (ATOMIC DB-SIDE INCREMENTS)
// --------------------------------------------------
func (r *PostgresRepository) IncrementCounters(ctx context.Context, sku, userID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `
		INSERT INTO product_user_seen (sku, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, sku, userID)
	if err != nil {
		return err
	}

	userDelta := 0
	if cmd.RowsAffected() == 1 {
		userDelta = 1
	}

	_, err = tx.Exec(ctx, `
		UPDATE master_products
		SET receipt_count = receipt_count + 1,
		    user_count = user_count + $2,
		    updated_at = now()
		WHERE sku = $1
	`, sku, userDelta)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) SetEmbedding(ctx context.Context, sku string, embedding []float32) error {
	_, err := r.db.Exec(ctx, `
		UPDATE master_products
		SET embedding = $2, updated_at = now()
		WHERE sku = $1
	`, sku, embedding)
	return err
}

func (r *PostgresRepository) Deactivate(ctx context.Context, sku string) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE master_products
		SET status = 'inactive', updated_at = now()
		WHERE sku = $1
	`, sku)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) AbsorbCounters(ctx context.Context, fromSKU, toSKU string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Move distinct-user rows; overlapping users collapse on conflict.
	_, err = tx.Exec(ctx, `
		INSERT INTO product_user_seen (sku, user_id)
		SELECT $2, user_id FROM product_user_seen WHERE sku = $1
		ON CONFLICT DO NOTHING
	`, fromSKU, toSKU)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM product_user_seen WHERE sku = $1`, fromSKU); err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		UPDATE master_products
		SET receipt_count = receipt_count + (
				SELECT COALESCE(receipt_count, 0) FROM master_products WHERE sku = $1
			),
			user_count = (
				SELECT COUNT(*) FROM product_user_seen WHERE sku = $2
			),
			updated_at = now()
		WHERE sku = $2
	`, fromSKU, toSKU)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// --------------------------------------------------
// SCAN HELPERS
// --------------------------------------------------

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*MasterProduct, error) {
	var p MasterProduct
	err := row.Scan(
		&p.SKU, &p.DisplayName, &p.BaseName, &p.Brand, &p.Category,
		&p.PackageType, &p.PackageQty, &p.PackageUnit,
		&p.IsBulk, &p.Provisional, &p.Status, &p.ReceiptCount, &p.UserCount,
		&p.Embedding, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]MasterProduct, error) {
	var products []MasterProduct
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}
