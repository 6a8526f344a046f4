package normalize

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service  *Service
	synonyms SynonymRepository
}

func NewHandler(service *Service, synonyms SynonymRepository) *Handler {
	return &Handler{service: service, synonyms: synonyms}
}

//
// --------------------------------------------------
// GET /catalog/resolve?text=...&category=...
// --------------------------------------------------
//

func (h *Handler) Resolve() gin.HandlerFunc {
	return func(c *gin.Context) {

		text := c.Query("text")
		if text == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
			return
		}

		decision, err := h.service.Preview(c.Request.Context(), text, c.Query("category"))
		if err != nil {
			if errors.Is(err, ErrEmptyText) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, decision)
	}
}

//
// --------------------------------------------------
// POST /admin/normalize     {"text": ..., "category_hint": ..., "user_id": ...}
// --------------------------------------------------
//

func (h *Handler) Normalize() gin.HandlerFunc {
	return func(c *gin.Context) {

		var body struct {
			Text         string `json:"text" binding:"required"`
			CategoryHint string `json:"category_hint"`
			UserID       string `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		decision, err := h.service.NormalizeText(c.Request.Context(), body.Text, body.CategoryHint, body.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, decision)
	}
}

//
// --------------------------------------------------
// GET /catalog/products/:sku/synonyms
// --------------------------------------------------
//

func (h *Handler) SynonymsFor() gin.HandlerFunc {
	return func(c *gin.Context) {

		synonyms, err := h.synonyms.ListBySKU(c.Request.Context(), c.Param("sku"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"synonyms": synonyms})
	}
}
