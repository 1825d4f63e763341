package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/domain"
	"github.com/mfadel/linkup/internal/store"
)

func (h *Handlers) ListRequests(c *gin.Context) {
	ctx := c.Request.Context()
	id := callerID(c)
	sent, err := h.Store.SentRequests(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("list sent requests failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	received, err := h.Store.ReceivedRequests(ctx, id)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("list received requests failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent, "received": received})
}

func (h *Handlers) CreateRequest(c *gin.Context) {
	var req struct {
		ReceiverID string `json:"receiverId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing receiverId"})
		return
	}
	created, err := h.Store.CreateRequest(c.Request.Context(), callerID(c), domain.UserID(req.ReceiverID))
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("create request failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"request": created})
}

func (h *Handlers) DeleteRequest(c *gin.Context) {
	var req struct {
		RequestID string `json:"requestId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing requestId"})
		return
	}
	err := h.Store.DeleteRequest(c.Request.Context(), domain.RequestID(req.RequestID), callerID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("module", "http").Msg("delete request failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}
