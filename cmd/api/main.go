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
	"github.com/afeder69-jpg/picotinho-sub001/internal/dedup"
	"github.com/afeder69-jpg/picotinho-sub001/internal/embedding"
	"github.com/afeder69-jpg/picotinho-sub001/internal/ingest"
	"github.com/afeder69-jpg/picotinho-sub001/internal/matching"
	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
	"github.com/afeder69-jpg/picotinho-sub001/internal/pricing"
	"github.com/afeder69-jpg/picotinho-sub001/internal/review"
	"github.com/afeder69-jpg/picotinho-sub001/internal/router"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	required := []string{
		"JWT_SECRET",
		"DATABASE_URL",
	}

	for _, k := range required {
		if os.Getenv(k) == "" {
			log.Fatalf("❌ Missing env var: %s", k)
		}
	}

	cfg := config.Load()

	// ───────────────────────── DB ─────────────────────────
	pool := db.ConnectPostgres()
	defer pool.Close()

	// ───────────────────────── REPOS ─────────────────────────
	productRepo := catalog.NewPostgresRepository(pool)
	synonymRepo := normalize.NewPostgresRepository(pool)
	itemRepo := ingest.NewPostgresRepository(pool)
	proposalRepo := review.NewPostgresRepository(pool)
	priceRepo := pricing.NewPostgresRepository(pool)
	pairRepo := dedup.NewPostgresPairRepository(pool)

	// ───────────────────────── SERVICES (ORDER MATTERS) ─────────────────────────
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

	ingestService := ingest.NewService(itemRepo)
	pricingService := pricing.NewService(priceRepo, cfg.RepackMinCount, cfg.RepackMaxCount)
	reviewService := review.NewService(proposalRepo, normalizeService, itemRepo)

	consolidator := dedup.NewConsolidator(
		productRepo,
		pairRepo,
		cfg.DedupThreshold,
		cfg.QuantityTolerance,
		cfg.MaxComparisons,
	)
	dedupService := dedup.NewService(
		consolidator,
		productRepo,
		pairRepo,
		synonymRepo,
		priceRepo,
	)

	// ───────────────────────── HANDLERS ─────────────────────────
	handlers := router.Handlers{
		Ingest:    ingest.NewHandler(ingestService),
		Catalog:   catalog.NewHandler(productRepo),
		Normalize: normalize.NewHandler(normalizeService, synonymRepo),
		Review:    review.NewHandler(reviewService),
		Dedup:     dedup.NewHandler(dedupService),
		Pricing:   pricing.NewHandler(pricingService, itemRepo),
	}

	r := router.NewRouter(handlers)

	// ───────────────────────── NORMALIZATION WORKER ─────────────────────────
	worker := normalize.NewWorker(itemRepo, normalizeService, pricingService, cfg.BatchSize)
	go worker.Run(context.Background(), time.Duration(cfg.WorkerIntervalSecs)*time.Second)

	// ───────────────────────── START ─────────────────────────
	log.Println("🚀 API running at http://localhost:8000")
	r.Run(":8000")
}
