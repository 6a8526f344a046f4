package pricing

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	history HistorySource
}

func NewHandler(service *Service, history HistorySource) *Handler {
	return &Handler{service: service, history: history}
}

//
// --------------------------------------------------
// GET /prices/:sku/current?establishment=...
// --------------------------------------------------
//

func (h *Handler) CurrentPrice() gin.HandlerFunc {
	return func(c *gin.Context) {

		establishment := c.Query("establishment")
		if establishment == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "establishment is required"})
			return
		}

		price, err := h.service.CurrentPrice(c.Request.Context(), c.Param("sku"), establishment)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no price recorded"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, price)
	}
}

//
// --------------------------------------------------
// GET /prices/:sku/best?establishments=cnpj1,cnpj2
// --------------------------------------------------
//

func (h *Handler) BestPrice() gin.HandlerFunc {
	return func(c *gin.Context) {

		// The caller narrows the search to the establishments near the
		// user; no filter means all of them.
		var establishments []string
		if raw := c.Query("establishments"); raw != "" {
			for _, e := range strings.Split(raw, ",") {
				if e = strings.TrimSpace(e); e != "" {
					establishments = append(establishments, e)
				}
			}
		}

		price, err := h.service.BestPrice(c.Request.Context(), c.Param("sku"), establishments)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no price recorded"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, price)
	}
}

//
// --------------------------------------------------
// POST /prices/compare        {"skus": [...]}
// --------------------------------------------------
//

func (h *Handler) CompareBasket() gin.HandlerFunc {
	return func(c *gin.Context) {

		var body struct {
			SKUs []string `json:"skus" binding:"required,min=1"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		totals, err := h.service.CompareBasket(c.Request.Context(), body.SKUs)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"establishments": totals})
	}
}

//
// --------------------------------------------------
// POST /prices/recipe-cost    {"items": [{"sku": ..., "quantity": ...}]}
// --------------------------------------------------
//

func (h *Handler) RecipeCost() gin.HandlerFunc {
	return func(c *gin.Context) {

		var body struct {
			Items []RecipeItem `json:"items" binding:"required,min=1,dive"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		totals, err := h.service.RecipeCost(c.Request.Context(), body.Items)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"establishments": totals})
	}
}

//
// --------------------------------------------------
// POST /admin/prices/backfill
// --------------------------------------------------
//

func (h *Handler) Backfill() gin.HandlerFunc {
	return func(c *gin.Context) {

		result, err := h.service.Backfill(c.Request.Context(), h.history)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
