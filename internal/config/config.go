package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Thresholds drives the normalization decision policy.
// Auto and Review can be overridden per category via
// NORMALIZE_THRESHOLDS_<CATEGORY>="auto,review" (e.g. "0.95,0.80").
type Thresholds struct {
	Auto                  float64
	Review                float64
	ProvisionalConfidence float64
	SimilarityFloor       float64

	PerCategory map[string]CategoryThresholds
}

type CategoryThresholds struct {
	Auto   float64
	Review float64
}

// Config collects the engine tunables. Everything has a default so the
// binary runs with only DATABASE_URL set.
type Config struct {
	DatabaseURL  string
	EmbeddingURL string

	Thresholds Thresholds

	BatchSize          int
	DedupThreshold     float64
	QuantityTolerance  float64
	MaxComparisons     int
	RepackMinCount     int
	RepackMaxCount     int
	WorkerIntervalSecs int
}

func Load() Config {
	cfg := Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		EmbeddingURL: os.Getenv("EMBEDDING_URL"),
		Thresholds: Thresholds{
			Auto:                  envFloat("NORMALIZE_AUTO_THRESHOLD", 0.90),
			Review:                envFloat("NORMALIZE_REVIEW_THRESHOLD", 0.75),
			ProvisionalConfidence: envFloat("NORMALIZE_PROVISIONAL_CONFIDENCE", 0.50),
			SimilarityFloor:       envFloat("NORMALIZE_SIMILARITY_FLOOR", 0.30),
			PerCategory:           loadCategoryOverrides(),
		},
		BatchSize:          envInt("NORMALIZE_BATCH_SIZE", 100),
		DedupThreshold:     envFloat("DEDUP_THRESHOLD", 0.85),
		QuantityTolerance:  envFloat("DEDUP_QUANTITY_TOLERANCE", 0.15),
		MaxComparisons:     envInt("DEDUP_MAX_COMPARISONS", 5000),
		RepackMinCount:     envInt("REPACK_MIN_COUNT", 6),
		RepackMaxCount:     envInt("REPACK_MAX_COUNT", 100),
		WorkerIntervalSecs: envInt("WORKER_INTERVAL_SECONDS", 5),
	}

	if cfg.Thresholds.Review >= cfg.Thresholds.Auto {
		log.Fatalf("invalid thresholds: review (%.2f) must be below auto (%.2f)",
			cfg.Thresholds.Review, cfg.Thresholds.Auto)
	}

	return cfg
}

// ForCategory returns the (auto, review) band for a category, falling back
// to the global thresholds.
func (t Thresholds) ForCategory(category string) (float64, float64) {
	if ov, ok := t.PerCategory[strings.ToLower(category)]; ok {
		return ov.Auto, ov.Review
	}
	return t.Auto, t.Review
}

func loadCategoryOverrides() map[string]CategoryThresholds {
	overrides := map[string]CategoryThresholds{}

	for _, entry := range os.Environ() {
		key, value, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, "NORMALIZE_THRESHOLDS_") {
			continue
		}

		category := strings.ToLower(strings.TrimPrefix(key, "NORMALIZE_THRESHOLDS_"))
		autoStr, reviewStr, ok := strings.Cut(value, ",")
		if !ok {
			log.Printf("[CONFIG] ignoring %s: expected \"auto,review\"", key)
			continue
		}

		auto, err1 := strconv.ParseFloat(strings.TrimSpace(autoStr), 64)
		review, err2 := strconv.ParseFloat(strings.TrimSpace(reviewStr), 64)
		if err1 != nil || err2 != nil || review >= auto {
			log.Printf("[CONFIG] ignoring %s: bad values %q", key, value)
			continue
		}

		overrides[category] = CategoryThresholds{Auto: auto, Review: review}
	}

	return overrides
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("[CONFIG] %s=%q is not a number, using %.2f", key, raw, fallback)
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("[CONFIG] %s=%q is not an integer, using %d", key, raw, fallback)
		return fallback
	}
	return v
}
