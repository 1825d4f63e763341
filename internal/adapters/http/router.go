// Package http wires the REST surface: signup/login, profile, friend
// requests, chats and group management. Everything under /user requires a
// valid bearer token.
package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/mfadel/linkup/internal/adapters/signal"
	"github.com/mfadel/linkup/internal/auth"
	"github.com/mfadel/linkup/internal/config"
	"github.com/mfadel/linkup/internal/domain"
	"github.com/mfadel/linkup/internal/store"
)

type Handlers struct {
	Store  *store.Store
	Tokens *auth.TokenManager
}

func SetupRouter(ctx context.Context, cfg *config.Config, s *store.Store, tokens *auth.TokenManager, ws *signal.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	h := &Handlers{Store: s, Tokens: tokens}

	r.GET("/", func(c *gin.Context) {
		c.String(200, "server is working fine")
	})
	r.POST("/sign-up", h.SignUp)
	r.POST("/login", h.Login)

	r.GET("/ws", func(c *gin.Context) {
		ws.Handle(ctx, c)
	})

	user := r.Group("/user")
	user.Use(auth.Middleware(tokens))
	{
		user.GET("/profile", h.GetProfile)
		user.PUT("/profile", h.EditProfile)
		user.PUT("/status", h.UpdateStatus)
		user.GET("/searchPeople", h.SearchPeople)

		user.GET("/request", h.ListRequests)
		user.POST("/request", h.CreateRequest)
		user.DELETE("/request", h.DeleteRequest)

		user.GET("/chats", h.ListChats)
		user.GET("/chat", h.GetChat)
		user.POST("/chat", h.CreateChat)
		user.DELETE("/chat", h.DeleteChat)

		user.GET("/groupChats", h.ListGroupChats)
		user.POST("/groupChats", h.CreateGroupChat)

		group := user.Group("/groupChat")
		{
			group.GET("", h.GetGroupChat)
			group.PUT("", h.RenameGroup)
			group.DELETE("", h.DeleteGroup)
			group.GET("/addUsers", h.UsersToAdd)
			group.GET("/members", h.GroupMembers)
			group.PUT("/members", h.AddGroupMembers)
			group.DELETE("/members", h.RemoveGroupMember)
			group.PUT("/members/admins", h.MakeAdmin)
			group.DELETE("/members/admins", h.SuspendAdmin)
		}
	}

	return r
}

// callerID reads the user id stored by the auth middleware.
func callerID(c *gin.Context) domain.UserID {
	return domain.UserID(c.GetString(auth.UserIDKey))
}
