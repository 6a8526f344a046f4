package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
	"github.com/afeder69-jpg/picotinho-sub001/internal/dedup"
	"github.com/afeder69-jpg/picotinho-sub001/internal/ingest"
	"github.com/afeder69-jpg/picotinho-sub001/internal/middleware"
	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
	"github.com/afeder69-jpg/picotinho-sub001/internal/pricing"
	"github.com/afeder69-jpg/picotinho-sub001/internal/review"
)

// Handlers carries one handler per domain surface.
type Handlers struct {
	Ingest    *ingest.Handler
	Catalog   *catalog.Handler
	Normalize *normalize.Handler
	Review    *review.Handler
	Dedup     *dedup.Handler
	Pricing   *pricing.Handler
}

func NewRouter(h Handlers) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ───────────────────────── INTAKE ─────────────────────────
	receipts := r.Group("/receipts")
	receipts.Use(middleware.AuthMiddleware())
	{
		receipts.POST("", h.Ingest.AcceptReceipt())
		receipts.GET("/:id/items", h.Ingest.ReceiptItems())
	}

	// ───────────────────────── CATALOG ─────────────────────────
	catalogGroup := r.Group("/catalog")
	catalogGroup.Use(middleware.AuthMiddleware())
	{
		catalogGroup.GET("/resolve", h.Normalize.Resolve())
		catalogGroup.GET("/products", h.Catalog.ListProducts())
		catalogGroup.GET("/products/:sku", h.Catalog.GetProduct())
		catalogGroup.GET("/products/:sku/synonyms", h.Normalize.SynonymsFor())
	}

	// ───────────────────────── PRICES ─────────────────────────
	prices := r.Group("/prices")
	prices.Use(middleware.AuthMiddleware())
	{
		prices.GET("/:sku/current", h.Pricing.CurrentPrice())
		prices.GET("/:sku/best", h.Pricing.BestPrice())
		prices.POST("/compare", h.Pricing.CompareBasket())
		prices.POST("/recipe-cost", h.Pricing.RecipeCost())
	}

	// ───────────────────────── ADMIN ─────────────────────────
	admin := r.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(),
		middleware.RequireRole("ADMIN"),
	)
	{
		admin.POST("/normalize", h.Normalize.Normalize())
		admin.GET("/queue/stats", h.Ingest.QueueStats())

		// Review queue
		admin.GET("/review/pending", h.Review.Pending())
		admin.POST("/review/:id/approve", h.Review.Approve())
		admin.POST("/review/:id/reject", h.Review.Reject())
		admin.POST("/review/:id/create-new", h.Review.CreateNew())

		// Duplicate consolidation
		admin.POST("/duplicates/scan", h.Dedup.Scan())
		admin.POST("/duplicates/merge", h.Dedup.Merge())
		admin.POST("/duplicates/ignore", h.Dedup.Ignore())

		// Price history replay
		admin.POST("/prices/backfill", h.Pricing.Backfill())
	}

	return r
}
