package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/service"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.dashboardService.Get(ctx, middleware.GetUser(ctx))
	if err != nil {
		respondError(c, err, "load dashboard")
		return
	}
	c.JSON(http.StatusOK, dto.ToDashboardResponse(d))
}
