package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/auth"
	"github.com/mfadel/linkup/internal/domain"
	"github.com/mfadel/linkup/internal/store"
)

type signUpRequest struct {
	Username  string `json:"username" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (h *Handlers) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username or password"})
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	user, err := domain.NewUser(req.Username, hash, req.FirstName, req.LastName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		log.Error().Err(err).Str("module", "http").Msg("sign-up failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username or password"})
		return
	}
	user, err := h.Store.UserByUsername(c.Request.Context(), req.Username)
	if err != nil {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	if !auth.VerifyPassword(req.Password, user.Password) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	token, err := h.Tokens.Issue(user.ID)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("token issue failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token, "userId": user.ID})
}
