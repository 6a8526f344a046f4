package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
	"github.com/afeder69-jpg/picotinho-sub001/internal/config"
	"github.com/afeder69-jpg/picotinho-sub001/internal/db"
	"github.com/afeder69-jpg/picotinho-sub001/internal/embedding"
	"github.com/afeder69-jpg/picotinho-sub001/internal/ingest"
	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
	"github.com/afeder69-jpg/picotinho-sub001/internal/pricing"
	"github.com/afeder69-jpg/picotinho-sub001/internal/review"
)

// Standalone normalization worker. Run this instead of the in-process
// goroutine when the queue needs to scale independently of the API.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: No .env file found, using environment variables")
	}

	log.Println("🧠 Normalization worker starting...")

	if os.Getenv("DATABASE_URL") == "" {
		log.Fatal("DATABASE_URL is not set in .env")
	}

	cfg := config.Load()

	pool := db.ConnectPostgres()
	defer pool.Close()

	log.Println("✅ Connected to PostgreSQL")

	productRepo := catalog.NewPostgresRepository(pool)
	synonymRepo := normalize.NewPostgresRepository(pool)
	itemRepo := ingest.NewPostgresRepository(pool)
	proposalRepo := review.NewPostgresRepository(pool)
	priceRepo := pricing.NewPostgresRepository(pool)

	embedder := embedding.NewHTTPClient()

	cascade := matching.NewCascade(
		synonymRepo,
		productRepo,
		normalize.NewPostgresFuzzySource(pool),
		embedder,
		cfg.Thresholds.SimilarityFloor,
	)

	normalizeService := normalize.NewService(
		synonymRepo,
		productRepo,
		cascade,
		proposalRepo,
		embedder,
		cfg.Thresholds,
		cfg.QuantityTolerance,
	)

	pricingService := pricing.NewService(priceRepo, cfg.RepackMinCount, cfg.RepackMaxCount)

	worker := normalize.NewWorker(itemRepo, normalizeService, pricingService, cfg.BatchSize)

	interval := time.Duration(cfg.WorkerIntervalSecs) * time.Second
	log.Printf("✅ Worker initialized, polling every %s. Press Ctrl+C to stop.", interval)

	worker.Run(context.Background(), interval)
}
