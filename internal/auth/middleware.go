package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"voisafe/backend/internal/models"
)

// actorKey is the gin context key holding the authenticated user.
const actorKey = "auth.actor"

// UserLoader is the slice of the storage service the middleware needs.
type UserLoader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Authenticate verifies the Bearer token, loads the user and attaches it to
// the request context. The complaint core trusts this actor record; no
// credential verification happens downstream.
func Authenticate(tm *TokenManager, users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "No token provided. Authorization denied.",
			})
			return
		}

		userID, err := tm.Verify(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "Invalid or expired token.",
			})
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "User not found. Authorization denied.",
			})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "Account is deactivated. Please contact administrator.",
			})
			return
		}

		c.Set(actorKey, user)
		c.Next()
	}
}

// Require aborts with 403 unless the actor's role holds the capability.
func Require(cap Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor(c)
		if actor == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "message": "Authentication required",
			})
			return
		}
		if !Can(actor.Role, cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false, "message": "Access denied. Insufficient role.",
			})
			return
		}
		c.Next()
	}
}

// Actor returns the authenticated user stored by Authenticate, or nil.
func Actor(c *gin.Context) *models.User {
	if v, ok := c.Get(actorKey); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
