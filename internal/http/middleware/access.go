package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/model"
)

type PermissionChecker interface {
	HasPermission(ctx context.Context, user *model.User, key string) (bool, error)
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := GetUser(c.Request.Context())
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "code": "unauthorized"})
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "code": "forbidden"})
	}
}

// RequirePermission lets admins through and checks the grant for everyone else.
func RequirePermission(checker PermissionChecker, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		user := GetUser(ctx)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "code": "unauthorized"})
			return
		}
		if user.IsAdmin() {
			c.Next()
			return
		}

		ok, err := checker.HasPermission(ctx, user, key)
		if err != nil {
			slog.ErrorContext(ctx, "failed to check permission", "error", err, "permission", key)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "code": "forbidden"})
			return
		}
		c.Next()
	}
}
