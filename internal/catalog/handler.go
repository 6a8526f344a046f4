package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

//
// --------------------------------------------------
// GET /catalog/products/:sku
// --------------------------------------------------
//

func (h *Handler) GetProduct() gin.HandlerFunc {
	return func(c *gin.Context) {

		product, err := h.repo.GetBySKU(c.Request.Context(), c.Param("sku"))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

//
// --------------------------------------------------
// GET /catalog/products?category=...
// --------------------------------------------------
//

func (h *Handler) ListProducts() gin.HandlerFunc {
	return func(c *gin.Context) {

		var (
			products []MasterProduct
			err      error
		)
		if category := c.Query("category"); category != "" {
			products, err = h.repo.ListActiveByCategory(c.Request.Context(), NormalizeCategory(category))
		} else {
			products, err = h.repo.ListActive(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}
