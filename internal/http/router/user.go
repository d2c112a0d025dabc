package router

import (
	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/handler"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
)

func UserRouter(rg *gin.RouterGroup, h *handler.UserHandler, ph *handler.PermissionHandler, perms middleware.PermissionChecker) {
	canView := middleware.RequirePermission(perms, model.PermUsersView)
	adminOnly := middleware.RequireRole(model.RoleAdmin)

	rg.GET("", canView, h.List)
	rg.GET("/:id", canView, h.GetByID)
	rg.POST("", adminOnly, h.Create)
	rg.PATCH("/:id", adminOnly, h.Update)
	rg.DELETE("/:id", adminOnly, h.Delete)

	rg.GET("/:id/permissions", adminOnly, ph.ListForUser)
	rg.POST("/:id/permissions", adminOnly, ph.Grant)
	rg.DELETE("/:id/permissions/:key", adminOnly, ph.Revoke)
}

func PermissionRouter(rg *gin.RouterGroup, h *handler.PermissionHandler) {
	rg.GET("", middleware.RequireRole(model.RoleAdmin), h.Catalog)
}
