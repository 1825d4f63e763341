package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// UserIDKey is where the middleware stores the authenticated user id in the
// gin context.
const UserIDKey = "user_id"

// Middleware rejects requests without a valid bearer token in the "auth"
// header and stores the resolved user id for handlers downstream.
func Middleware(tokens *TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("auth")
		if header == "" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		userID, err := tokens.Verify(parts[1])
		if err != nil {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Set(UserIDKey, string(userID))
		c.Next()
	}
}
