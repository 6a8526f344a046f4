package db

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ConnectPostgres() *pgxpool.Pool {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		log.Fatal(err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatal(err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal("Postgres connection failed:", err)
	}

	log.Println("✅ Connected to PostgreSQL")

	if err := initSchema(pool); err != nil {
		log.Fatal("Failed to initialize schema:", err)
	}

	return pool
}

// initSchema creates or updates the database schema
func initSchema(pool *pgxpool.Pool) error {
	ctx := context.Background()

	// pg_trgm backs the fuzzy retrieval strategy (similarity()).
	if _, err := pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS pg_trgm`); err != nil {
		log.Println("Note: pg_trgm extension not available, fuzzy search falls back to in-process matching")
	}

	// -------------------------------
	// MASTER PRODUCTS
	// -------------------------------
	masterProductsSQL := `
		CREATE TABLE IF NOT EXISTS master_products (
			sku VARCHAR(120) PRIMARY KEY,
			display_name VARCHAR(255) NOT NULL,
			base_name VARCHAR(255) NOT NULL,
			brand VARCHAR(120),
			category VARCHAR(50) NOT NULL,
			package_type VARCHAR(50),
			package_qty NUMERIC(12,3),
			package_unit VARCHAR(10),
			is_bulk BOOLEAN NOT NULL DEFAULT FALSE,
			provisional BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(20) NOT NULL DEFAULT 'active',
			receipt_count INT NOT NULL DEFAULT 0,
			user_count INT NOT NULL DEFAULT 0,
			embedding REAL[],
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`
	if _, err := pool.Exec(ctx, masterProductsSQL); err != nil {
		return err
	}

	indexSQL := `
		CREATE INDEX IF NOT EXISTS idx_master_products_category
			ON master_products (category, status)
	`
	if _, err := pool.Exec(ctx, indexSQL); err != nil {
		return err
	}

	trgmIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_master_products_base_name_trgm
			ON master_products USING gin (base_name gin_trgm_ops)
	`
	if _, err := pool.Exec(ctx, trgmIndexSQL); err != nil {
		log.Println("Note: trigram index skipped (pg_trgm unavailable)")
	}

	// -------------------------------
	// LEARNED SYNONYMS
	// -------------------------------
	synonymsSQL := `
		CREATE TABLE IF NOT EXISTS product_synonyms (
			id SERIAL PRIMARY KEY,
			raw_text TEXT NOT NULL,
			normalized_text TEXT NOT NULL,
			sku VARCHAR(120) NOT NULL REFERENCES master_products(sku),
			confidence NUMERIC(4,3) NOT NULL,
			method VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			UNIQUE (raw_text, sku)
		);
		CREATE INDEX IF NOT EXISTS idx_product_synonyms_raw_text
			ON product_synonyms (raw_text);
		CREATE INDEX IF NOT EXISTS idx_product_synonyms_normalized
			ON product_synonyms (normalized_text)
	`
	if _, err := pool.Exec(ctx, synonymsSQL); err != nil {
		return err
	}

	// -------------------------------
	// REVIEW PROPOSALS
	// -------------------------------
	proposalsSQL := `
		CREATE TABLE IF NOT EXISTS review_proposals (
			id UUID PRIMARY KEY,
			raw_text TEXT NOT NULL,
			source VARCHAR(50) NOT NULL,
			candidates JSONB NOT NULL,
			best_score NUMERIC(4,3) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			chosen_sku VARCHAR(120),
			new_product JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			resolved_at TIMESTAMPTZ
		);
		CREATE INDEX IF NOT EXISTS idx_review_proposals_status
			ON review_proposals (status);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_review_proposals_open_text
			ON review_proposals (raw_text) WHERE status = 'pending'
	`
	if _, err := pool.Exec(ctx, proposalsSQL); err != nil {
		return err
	}

	// -------------------------------
	// IGNORED DUPLICATE PAIRS
	// -------------------------------
	ignoredSQL := `
		CREATE TABLE IF NOT EXISTS ignored_duplicate_pairs (
			sku_a VARCHAR(120) NOT NULL,
			sku_b VARCHAR(120) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (sku_a, sku_b),
			CHECK (sku_a < sku_b)
		)
	`
	if _, err := pool.Exec(ctx, ignoredSQL); err != nil {
		return err
	}

	// -------------------------------
	// CURRENT PRICES
	// -------------------------------
	pricesSQL := `
		CREATE TABLE IF NOT EXISTS current_prices (
			sku VARCHAR(120) NOT NULL,
			establishment VARCHAR(20) NOT NULL,
			unit_price NUMERIC(12,2) NOT NULL,
			observed_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (sku, establishment)
		)
	`
	if _, err := pool.Exec(ctx, pricesSQL); err != nil {
		return err
	}

	// -------------------------------
	// RECEIPT ITEM QUEUE
	// -------------------------------
	itemsSQL := `
		CREATE TABLE IF NOT EXISTS receipt_items (
			id UUID PRIMARY KEY,
			receipt_id UUID NOT NULL,
			user_id VARCHAR(120) NOT NULL,
			establishment VARCHAR(20) NOT NULL,
			description TEXT NOT NULL,
			quantity NUMERIC(12,3),
			unit VARCHAR(10),
			unit_price NUMERIC(12,2),
			total_price NUMERIC(12,2),
			category_hint VARCHAR(50),
			purchase_at TIMESTAMPTZ NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'PENDING',
			failure_reason TEXT,
			resolved_sku VARCHAR(120),
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_receipt_items_status
			ON receipt_items (status)
	`
	if _, err := pool.Exec(ctx, itemsSQL); err != nil {
		return err
	}

	// -------------------------------
	// DISTINCT USER TRACKING
	// -------------------------------
	seenSQL := `
		CREATE TABLE IF NOT EXISTS product_user_seen (
			sku VARCHAR(120) NOT NULL,
			user_id VARCHAR(120) NOT NULL,
			PRIMARY KEY (sku, user_id)
		)
	`
	if _, err := pool.Exec(ctx, seenSQL); err != nil {
		return err
	}

	log.Println("✅ Schema initialized successfully")
	return nil
}
