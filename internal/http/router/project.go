package router

import (
	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/handler"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
)

// ProjectRouter also mounts the project-scoped collections of sprints,
// tasks and bugs.
func ProjectRouter(
	rg *gin.RouterGroup,
	h *handler.ProjectHandler,
	sh *handler.SprintHandler,
	th *handler.TaskHandler,
	bh *handler.BugHandler,
	perms middleware.PermissionChecker,
) {
	canManage := middleware.RequirePermission(perms, model.PermProjectsManage)

	rg.GET("", h.List)
	rg.POST("", canManage, h.Create)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", canManage, h.Update)
	rg.DELETE("/:id", canManage, h.Delete)

	rg.GET("/:id/members", h.Members)
	rg.POST("/:id/members", canManage, h.AddMember)
	rg.DELETE("/:id/members/:userId", canManage, h.RemoveMember)

	rg.GET("/:id/sprints", sh.List)
	rg.POST("/:id/sprints", sh.Create)

	rg.GET("/:id/tasks", th.List)
	rg.POST("/:id/tasks", th.Create)

	rg.GET("/:id/bugs", bh.List)
	rg.POST("/:id/bugs", bh.Report)
}

func SprintRouter(rg *gin.RouterGroup, h *handler.SprintHandler) {
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/start", h.Start)
	rg.POST("/:id/complete", h.Complete)
}

func TaskRouter(rg *gin.RouterGroup, h *handler.TaskHandler) {
	rg.GET("/mine", h.Mine)
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.DELETE("/:id", h.Delete)
}

func BugRouter(rg *gin.RouterGroup, h *handler.BugHandler) {
	rg.GET("/:id", h.Get)
	rg.PUT("/:id", h.Update)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.DELETE("/:id", h.Delete)
}
