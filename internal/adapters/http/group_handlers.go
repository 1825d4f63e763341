package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/mfadel/linkup/internal/domain"
	"github.com/mfadel/linkup/internal/store"
)

func (h *Handlers) ListGroupChats(c *gin.Context) {
	groups, err := h.Store.ListGroupChats(c.Request.Context(), callerID(c))
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("list group chats failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *Handlers) CreateGroupChat(c *gin.Context) {
	group, err := h.Store.CreateGroupChat(c.Request.Context(), callerID(c))
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("create group chat failed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"chat": gin.H{"id": group.ID, "name": group.Name}})
}

func (h *Handlers) GetGroupChat(c *gin.Context) {
	groupID := domain.GroupID(c.Query("id"))
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing group id"})
		return
	}
	view, err := h.Store.GetGroupChat(c.Request.Context(), groupID, callerID(c))
	if err != nil {
		h.groupErr(c, err, "get group chat failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"chat": view})
}

func (h *Handlers) RenameGroup(c *gin.Context) {
	var req struct {
		GroupID string `json:"groupId" binding:"required"`
		Name    string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupId or name"})
		return
	}
	err := h.Store.RenameGroup(c.Request.Context(), domain.GroupID(req.GroupID), callerID(c), req.Name)
	if err != nil {
		h.groupErr(c, err, "rename group failed")
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handlers) DeleteGroup(c *gin.Context) {
	var req struct {
		GroupID string `json:"groupId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupId"})
		return
	}
	err := h.Store.DeleteGroup(c.Request.Context(), domain.GroupID(req.GroupID), callerID(c))
	if err != nil {
		h.groupErr(c, err, "delete group failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) UsersToAdd(c *gin.Context) {
	groupID := domain.GroupID(c.Query("groupId"))
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupId"})
		return
	}
	users, err := h.Store.UsersToAdd(c.Request.Context(), groupID, callerID(c))
	if err != nil {
		h.groupErr(c, err, "users to add failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handlers) GroupMembers(c *gin.Context) {
	groupID := domain.GroupID(c.Query("groupId"))
	if groupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupId"})
		return
	}
	owner, admins, members, err := h.Store.GroupMembers(c.Request.Context(), groupID)
	if err != nil {
		h.groupErr(c, err, "group members failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"owner": owner, "admins": admins, "members": members})
}

func (h *Handlers) AddGroupMembers(c *gin.Context) {
	var req struct {
		GroupID    string   `json:"groupId" binding:"required"`
		UsersToAdd []string `json:"usersToAdd" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupId or usersToAdd"})
		return
	}
	ids := make([]domain.UserID, 0, len(req.UsersToAdd))
	for _, id := range req.UsersToAdd {
		ids = append(ids, domain.UserID(id))
	}
	err := h.Store.AddGroupMembers(c.Request.Context(), domain.GroupID(req.GroupID), callerID(c), ids)
	if err != nil {
		h.groupErr(c, err, "add members failed")
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handlers) RemoveGroupMember(c *gin.Context) {
	var req struct {
		GroupID string `json:"groupId" binding:"required"`
		UserID  string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupId or userId"})
		return
	}
	err := h.Store.RemoveGroupMember(c.Request.Context(), domain.GroupID(req.GroupID), callerID(c), domain.UserID(req.UserID))
	if err != nil {
		h.groupErr(c, err, "remove member failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) MakeAdmin(c *gin.Context) {
	var req struct {
		GroupID string `json:"groupId" binding:"required"`
		UserID  string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupId or userId"})
		return
	}
	err := h.Store.MakeAdmin(c.Request.Context(), domain.GroupID(req.GroupID), callerID(c), domain.UserID(req.UserID))
	if err != nil {
		h.groupErr(c, err, "make admin failed")
		return
	}
	c.Status(http.StatusCreated)
}

func (h *Handlers) SuspendAdmin(c *gin.Context) {
	var req struct {
		GroupID string `json:"groupId" binding:"required"`
		UserID  string `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing groupId or userId"})
		return
	}
	err := h.Store.SuspendAdmin(c.Request.Context(), domain.GroupID(req.GroupID), callerID(c), domain.UserID(req.UserID))
	if err != nil {
		h.groupErr(c, err, "suspend admin failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) groupErr(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatus(http.StatusNotFound)
	case errors.Is(err, store.ErrForbidden):
		c.AbortWithStatus(http.StatusForbidden)
	default:
		log.Error().Err(err).Str("module", "http").Msg(msg)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}
