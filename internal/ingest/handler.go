package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

//
// --------------------------------------------------
// POST /receipts
// --------------------------------------------------
//

func (h *Handler) AcceptReceipt() gin.HandlerFunc {
	return func(c *gin.Context) {

		var payload ReceiptPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := h.service.Accept(c.Request.Context(), payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusAccepted, result)
	}
}

//
// --------------------------------------------------
// GET /receipts/:id/items
// --------------------------------------------------
//

func (h *Handler) ReceiptItems() gin.HandlerFunc {
	return func(c *gin.Context) {

		items, err := h.service.ReceiptItems(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"items": items})
	}
}

//
// --------------------------------------------------
// GET /admin/queue/stats
// --------------------------------------------------
//

func (h *Handler) QueueStats() gin.HandlerFunc {
	return func(c *gin.Context) {

		counts, err := h.service.QueueStats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"statuses": counts})
	}
}
