package router

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devtrack.app/api/internal/http/handler"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/service"
)

type RouterConfig struct {
	DashboardURL string
	Cookie       middleware.CookieConfig
	// Ping reports database reachability for /health; nil skips the check.
	Ping func(ctx context.Context) error
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		if cfg.Ping != nil {
			if err := cfg.Ping(c.Request.Context()); err != nil {
				slog.ErrorContext(c.Request.Context(), "health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.RequireAuth(services.Auth(), cfg.Cookie)
	perms := services.Permissions()

	v1 := router.Group("/api/v1")
	{
		authHandler := handler.NewAuthHandler(services.Auth(), services.PasswordReset(), cfg.Cookie, cfg.DashboardURL)
		AuthRouter(v1.Group("/auth"), authHandler, requireAuth)

		protected := v1.Group("", requireAuth)

		userHandler := handler.NewUserHandler(services.Users())
		permissionHandler := handler.NewPermissionHandler(perms)
		UserRouter(protected.Group("/users"), userHandler, permissionHandler, perms)
		PermissionRouter(protected.Group("/permissions"), permissionHandler)

		projectHandler := handler.NewProjectHandler(services.Projects())
		sprintHandler := handler.NewSprintHandler(services.Sprints())
		taskHandler := handler.NewTaskHandler(services.Tasks())
		bugHandler := handler.NewBugHandler(services.Bugs())
		ProjectRouter(protected.Group("/projects"), projectHandler, sprintHandler, taskHandler, bugHandler, perms)
		SprintRouter(protected.Group("/sprints"), sprintHandler)
		TaskRouter(protected.Group("/tasks"), taskHandler)
		BugRouter(protected.Group("/bugs"), bugHandler)

		SuggestionRouter(protected.Group("/suggestions"), handler.NewSuggestionHandler(services.Suggestions()), perms)
		ActivityRouter(protected.Group("/activity"), handler.NewActivityHandler(services.Activity()))

		reportHandler := handler.NewReportHandler(services.Reports(), services.Payments())
		ReportRouter(protected.Group("/reports"), reportHandler, perms)
		protected.GET("/payments", reportHandler.CalculatePayments)

		protected.GET("/dashboard", handler.NewDashboardHandler(services.Dashboard()).Get)
	}
}
