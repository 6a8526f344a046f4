package review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/afeder69-jpg/picotinho-sub001/internal/normalize"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "proposal not found"})
	case errors.Is(err, ErrResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "proposal already resolved"})
	case errors.Is(err, ErrUnknownCandidate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

//
// --------------------------------------------------
// GET /admin/review/pending?limit=50
// --------------------------------------------------
//

func (h *Handler) Pending() gin.HandlerFunc {
	return func(c *gin.Context) {

		limit := 50
		if raw := c.Query("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				limit = n
			}
		}

		proposals, err := h.service.Pending(c.Request.Context(), limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"proposals": proposals})
	}
}

//
// --------------------------------------------------
// POST /admin/review/:id/approve    {"sku": ..., "user_id": ...}
// --------------------------------------------------
//

func (h *Handler) Approve() gin.HandlerFunc {
	return func(c *gin.Context) {

		var body struct {
			SKU    string `json:"sku" binding:"required"`
			UserID string `json:"user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		proposal, err := h.service.Approve(c.Request.Context(), c.Param("id"), body.SKU, body.UserID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, proposal)
	}
}

//
// --------------------------------------------------
// POST /admin/review/:id/reject
// --------------------------------------------------
//

func (h *Handler) Reject() gin.HandlerFunc {
	return func(c *gin.Context) {

		proposal, err := h.service.Reject(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, proposal)
	}
}

//
// --------------------------------------------------
// POST /admin/review/:id/create-new
// --------------------------------------------------
//

func (h *Handler) CreateNew() gin.HandlerFunc {
	return func(c *gin.Context) {

		var body struct {
			UserID  string                   `json:"user_id" binding:"required"`
			Product normalize.NewProductSpec `json:"product" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		proposal, err := h.service.CreateNew(c.Request.Context(), c.Param("id"), body.UserID, &body.Product)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, proposal)
	}
}
