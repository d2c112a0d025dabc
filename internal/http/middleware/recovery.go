package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				ctx := c.Request.Context()
				attrs := []any{
					"error", rec,
					"method", c.Request.Method,
					"route", c.FullPath(),
					"stack", string(debug.Stack()),
				}
				if user := GetUser(ctx); user != nil {
					attrs = append(attrs, "user_id", user.ID)
				}
				slog.ErrorContext(ctx, "panic recovered", attrs...)

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
					"code":  "internal",
				})
			}
		}()
		c.Next()
	}
}
