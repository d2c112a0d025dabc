package router

import (
	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/handler"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
)

func SuggestionRouter(rg *gin.RouterGroup, h *handler.SuggestionHandler, perms middleware.PermissionChecker) {
	rg.GET("", h.List)
	rg.POST("", middleware.RequireRole(model.RoleClient), h.Submit)
	rg.GET("/:id", h.Get)
	rg.POST("/:id/respond", middleware.RequirePermission(perms, model.PermSuggestionsRespond), h.Respond)
}

func ActivityRouter(rg *gin.RouterGroup, h *handler.ActivityHandler) {
	rg.GET("", h.List)
	rg.GET("/summary", h.Summary)
	rg.POST("", middleware.RequireRole(model.RoleDeveloper, model.RoleTeamLeader), h.Log)
	rg.DELETE("/:id", h.Delete)
}

// ReportRouter requires reports.generate. Payment rows are further narrowed
// to the caller's own hours without payments.view.
func ReportRouter(rg *gin.RouterGroup, h *handler.ReportHandler, perms middleware.PermissionChecker) {
	generate := middleware.RequirePermission(perms, model.PermReportsGenerate)
	rg.GET("/activity", generate, h.Activity)
	rg.GET("/payments", generate, h.Payments)
}
