package dedup

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/afeder69-jpg/picotinho-sub001/internal/catalog"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

//
// --------------------------------------------------
// POST /admin/duplicates/scan
// --------------------------------------------------
//

func (h *Handler) Scan() gin.HandlerFunc {
	return func(c *gin.Context) {

		report, err := h.service.Scan(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, report)
	}
}

//
// --------------------------------------------------
// POST /admin/duplicates/merge   {"primary_sku": ..., "duplicate_sku": ...}
// --------------------------------------------------
//

func (h *Handler) Merge() gin.HandlerFunc {
	return func(c *gin.Context) {

		var body struct {
			PrimarySKU   string `json:"primary_sku" binding:"required"`
			DuplicateSKU string `json:"duplicate_sku" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := h.service.Merge(c.Request.Context(), body.PrimarySKU, body.DuplicateSKU)
		if err != nil {
			switch {
			case errors.Is(err, catalog.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, ErrSameProduct), errors.Is(err, ErrCategoryMismatch):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"merged_into": body.PrimarySKU,
			"deactivated": body.DuplicateSKU,
		})
	}
}

//
// --------------------------------------------------
// POST /admin/duplicates/ignore  {"sku_a": ..., "sku_b": ...}
// --------------------------------------------------
//

func (h *Handler) Ignore() gin.HandlerFunc {
	return func(c *gin.Context) {

		var body struct {
			SKUA string `json:"sku_a" binding:"required"`
			SKUB string `json:"sku_b" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := h.service.Ignore(c.Request.Context(), body.SKUA, body.SKUB)
		if err != nil {
			switch {
			case errors.Is(err, catalog.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, ErrSameProduct):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"ignored": []string{body.SKUA, body.SKUB}})
	}
}
