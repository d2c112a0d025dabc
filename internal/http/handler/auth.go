package handler

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/service"
)

const (
	stateCookieName = "devtrack_oauth_state"
	stateMaxAge     = 600
)

type AuthHandler struct {
	authService  service.AuthService
	resetService service.PasswordResetService
	cookie       middleware.CookieConfig
	dashboardURL string
}

func NewAuthHandler(
	authService service.AuthService,
	resetService service.PasswordResetService,
	cookie middleware.CookieConfig,
	dashboardURL string,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		resetService: resetService,
		cookie:       cookie,
		dashboardURL: dashboardURL,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, session, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "log in")
		return
	}

	middleware.SetSessionCookie(c, h.cookie, session.ID)
	c.JSON(http.StatusOK, dto.LoginResponse{
		User:      dto.ToUserResponse(user),
		SessionID: strconv.FormatInt(session.ID, 10),
		ExpiresIn: int(h.cookie.TTL.Seconds()),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.authService.Logout(ctx, middleware.GetSessionID(ctx)); err != nil {
		respondError(c, err, "log out")
		return
	}

	middleware.ClearSessionCookie(c, h.cookie)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ToUserResponse(middleware.GetUser(c.Request.Context())))
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.authService.ChangePassword(ctx, middleware.GetUser(ctx), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err, "change password")
		return
	}
	c.Status(http.StatusNoContent)
}

// SSOLogin redirects the browser to the identity provider.
func (h *AuthHandler) SSOLogin(c *gin.Context) {
	ctx := c.Request.Context()

	if !h.authService.SSOEnabled() {
		respondError(c, service.ErrSSODisabled, "initiate sso")
		return
	}

	state, err := generateState()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate state", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "failed to initiate login", Code: "internal"})
		return
	}

	authURL, err := h.authService.GetAuthorizationURL(state)
	if err != nil {
		respondError(c, err, "initiate login")
		return
	}

	c.SetCookie(stateCookieName, state, stateMaxAge, "/", h.cookie.Domain, h.cookie.Secure, true)
	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (h *AuthHandler) SSOCallback(c *gin.Context) {
	ctx := c.Request.Context()

	if errParam := c.Query("error"); errParam != "" {
		slog.WarnContext(ctx, "sso provider returned error",
			"error", errParam,
			"description", c.Query("error_description"),
		)
		h.redirectWithError(c, "sso_failed")
		return
	}

	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		h.redirectWithError(c, "missing_code")
		return
	}

	expected, err := c.Cookie(stateCookieName)
	if err != nil || expected != state {
		slog.WarnContext(ctx, "sso state mismatch")
		h.redirectWithError(c, "invalid_state")
		return
	}
	c.SetCookie(stateCookieName, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)

	_, session, err := h.authService.HandleCallback(ctx, code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			h.redirectWithError(c, "no_account")
		case errors.Is(err, service.ErrInvalidCredentials):
			h.redirectWithError(c, "account_disabled")
		default:
			slog.ErrorContext(ctx, "sso callback failed", "error", err)
			h.redirectWithError(c, "sso_failed")
		}
		return
	}

	middleware.SetSessionCookie(c, h.cookie, session.ID)
	c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL)
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req dto.RequestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.resetService.RequestOTP(c.Request.Context(), req.Email); err != nil {
		respondError(c, err, "request password reset")
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "if the account exists, a code has been sent"})
}

func (h *AuthHandler) VerifyPasswordReset(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.resetService.VerifyOTP(c.Request.Context(), req.Email, req.Code); err != nil {
		respondError(c, err, "verify code")
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.resetService.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		respondError(c, err, "reset password")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) redirectWithError(c *gin.Context, code string) {
	c.Redirect(http.StatusTemporaryRedirect, h.dashboardURL+"/login?error="+url.QueryEscape(code))
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
