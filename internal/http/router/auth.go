package router

import (
	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/handler"
)

func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler, requireAuth gin.HandlerFunc) {
	rg.POST("/login", h.Login)
	rg.GET("/sso/login", h.SSOLogin)
	rg.GET("/sso/callback", h.SSOCallback)

	rg.POST("/password/forgot", h.RequestPasswordReset)
	rg.POST("/password/verify", h.VerifyPasswordReset)
	rg.POST("/password/reset", h.ResetPassword)

	session := rg.Group("", requireAuth)
	session.POST("/logout", h.Logout)
	session.GET("/me", h.Me)
	session.POST("/password/change", h.ChangePassword)
}
