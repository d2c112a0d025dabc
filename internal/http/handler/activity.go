package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/service"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) Log(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LogActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	entry, err := h.activityService.Log(ctx, middleware.GetUser(ctx), service.ActivityInput{
		ProjectID:   req.ProjectID,
		TaskID:      req.TaskID,
		Description: req.Description,
		StartedAt:   req.StartedAt,
		EndedAt:     req.EndedAt,
	})
	if err != nil {
		respondError(c, err, "log activity")
		return
	}
	c.JSON(http.StatusCreated, dto.ToActivityResponse(entry))
}

func (h *ActivityHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	q, ok := bindRange(c)
	if !ok {
		return
	}

	entries, err := h.activityService.List(ctx, middleware.GetUser(ctx), q)
	if err != nil {
		respondError(c, err, "list activity")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(entries, dto.ToActivityResponse)))
}

func (h *ActivityHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	q, ok := bindRange(c)
	if !ok {
		return
	}

	summary, err := h.activityService.Summary(ctx, middleware.GetUser(ctx), q)
	if err != nil {
		respondError(c, err, "summarize activity")
		return
	}
	c.JSON(http.StatusOK, dto.ToActivitySummaryResponse(summary))
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.activityService.Delete(ctx, middleware.GetUser(ctx), id); err != nil {
		respondError(c, err, "delete activity")
		return
	}
	c.Status(http.StatusNoContent)
}

// bindRange reads from/to (inclusive YYYY-MM-DD) plus optional project and
// user narrowing from the query string.
func bindRange(c *gin.Context) (service.RangeQuery, bool) {
	var q dto.RangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return service.RangeQuery{}, false
	}

	from, err := dto.ParseDate(q.From)
	if err != nil {
		badRequest(c, err)
		return service.RangeQuery{}, false
	}
	to, err := dto.ParseDate(q.To)
	if err != nil {
		badRequest(c, err)
		return service.RangeQuery{}, false
	}

	return service.RangeQuery{From: from, To: to, ProjectID: q.ProjectID, UserID: q.UserID}, true
}
