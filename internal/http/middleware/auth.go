package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/common/logger"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
)

type contextKey string

const (
	SessionCookieName              = "devtrack_session"
	SessionIDHeader                = "X-Session-ID"
	userContextKey      contextKey = "user"
	sessionIDContextKey contextKey = "session_id"
)

// SessionValidator is the part of the auth service the middleware needs.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID int64) (*model.User, error)
}

// CookieConfig controls how the session cookie is written.
type CookieConfig struct {
	Domain string
	Secure bool
	TTL    time.Duration
}

func RequireAuth(auth SessionValidator, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := SessionIDFromRequest(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated", "code": "unauthorized"})
			return
		}

		user, err := auth.ValidateSession(c.Request.Context(), sessionID)
		if err != nil {
			if errors.Is(err, service.ErrSessionExpired) || errors.Is(err, service.ErrUserNotFound) {
				ClearSessionCookie(c, cookie)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired", "code": "session_expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate session"})
			return
		}

		ctx := context.WithValue(c.Request.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, sessionIDContextKey, sessionID)
		ctx = logger.WithLogFields(ctx, logger.LogFields{UserID: &user.ID})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func GetUser(ctx context.Context) *model.User {
	user, _ := ctx.Value(userContextKey).(*model.User)
	return user
}

func GetSessionID(ctx context.Context) int64 {
	sessionID, _ := ctx.Value(sessionIDContextKey).(int64)
	return sessionID
}

// SessionIDFromRequest reads the session cookie, falling back to the
// X-Session-ID header for non-browser clients.
func SessionIDFromRequest(c *gin.Context) (int64, error) {
	raw, err := c.Cookie(SessionCookieName)
	if err != nil || raw == "" {
		raw = c.GetHeader(SessionIDHeader)
	}
	if raw == "" {
		return 0, http.ErrNoCookie
	}
	return strconv.ParseInt(raw, 10, 64)
}

func SetSessionCookie(c *gin.Context, cfg CookieConfig, sessionID int64) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		strconv.FormatInt(sessionID, 10),
		int(cfg.TTL.Seconds()),
		"/",
		cfg.Domain,
		cfg.Secure,
		true,
	)
}

func ClearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetCookie(
		SessionCookieName,
		"",
		-1,
		"/",
		cfg.Domain,
		cfg.Secure,
		true,
	)
}
