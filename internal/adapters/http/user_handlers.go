package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/store"
)

func (h *Handlers) GetProfile(c *gin.Context) {
	user, err := h.Store.UserByID(c.Request.Context(), callerID(c))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("module", "http").Msg("get profile failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":           user.Username,
		"image":              user.Profile.Image,
		"bio":                user.Profile.Bio,
		"relationshipStatus": user.Profile.RelationshipStatus,
	})
}

type editProfileRequest struct {
	Username           string `json:"username" binding:"required"`
	Bio                string `json:"bio"`
	RelationshipStatus string `json:"relationshipStatus"`
}

func (h *Handlers) EditProfile(c *gin.Context) {
	var req editProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username"})
		return
	}
	err := h.Store.UpdateProfile(c.Request.Context(), callerID(c), req.Username, req.Bio, req.RelationshipStatus)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("edit profile failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handlers) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad payload"})
		return
	}
	if err := h.Store.UpdateStatus(c.Request.Context(), callerID(c), req.Status); err != nil {
		log.Error().Err(err).Str("module", "http").Msg("update status failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handlers) SearchPeople(c *gin.Context) {
	name := c.Query("name")
	users, err := h.Store.SearchPeople(c.Request.Context(), callerID(c), name)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("search failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
