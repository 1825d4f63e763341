package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/domain"
	"github.com/mfadel/linkup/internal/store"
)

func (h *Handlers) ListChats(c *gin.Context) {
	chats, err := h.Store.ListChats(c.Request.Context(), callerID(c))
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("list chats failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, chats)
}

// GetChat returns one conversation with its messages. Opening it resets the
// caller's unread counter, so the badge disappears once the chat is viewed.
func (h *Handlers) GetChat(c *gin.Context) {
	chatID := domain.ChatID(c.Query("id"))
	if chatID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing chat id"})
		return
	}
	view, err := h.Store.GetChat(c.Request.Context(), chatID, callerID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("module", "http").Msg("get chat failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": view})
}

type createChatRequest struct {
	FriendID  string `json:"friendId" binding:"required"`
	RequestID string `json:"requestId" binding:"required"`
}

// CreateChat accepts a friend request: deletes it and opens a chat.
func (h *Handlers) CreateChat(c *gin.Context) {
	var req createChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing friendId or requestId"})
		return
	}
	chat, err := h.Store.CreateChat(c.Request.Context(), callerID(c),
		domain.UserID(req.FriendID), domain.RequestID(req.RequestID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("module", "http").Msg("create chat failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": chat})
}

func (h *Handlers) DeleteChat(c *gin.Context) {
	var req struct {
		ChatID string `json:"chatId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing chatId"})
		return
	}
	err := h.Store.DeleteChat(c.Request.Context(), domain.ChatID(req.ChatID), callerID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("module", "http").Msg("delete chat failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusNoContent)
}
