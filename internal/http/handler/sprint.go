package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/service"
)

type SprintHandler struct {
	sprintService service.SprintService
}

func NewSprintHandler(sprintService service.SprintService) *SprintHandler {
	return &SprintHandler{sprintService: sprintService}
}

func (h *SprintHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindSprint(c)
	if !ok {
		return
	}

	sprint, err := h.sprintService.Create(ctx, middleware.GetUser(ctx), projectID, in)
	if err != nil {
		respondError(c, err, "create sprint")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSprintResponse(sprint))
}

func (h *SprintHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	sprints, err := h.sprintService.List(ctx, middleware.GetUser(ctx), projectID)
	if err != nil {
		respondError(c, err, "list sprints")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(sprints, dto.ToSprintResponse)))
}

func (h *SprintHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindSprint(c)
	if !ok {
		return
	}

	sprint, err := h.sprintService.Update(ctx, middleware.GetUser(ctx), id, in)
	if err != nil {
		respondError(c, err, "update sprint")
		return
	}
	c.JSON(http.StatusOK, dto.ToSprintResponse(sprint))
}

func (h *SprintHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sprint, err := h.sprintService.Start(ctx, middleware.GetUser(ctx), id)
	if err != nil {
		respondError(c, err, "start sprint")
		return
	}
	c.JSON(http.StatusOK, dto.ToSprintResponse(sprint))
}

func (h *SprintHandler) Complete(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sprint, moved, err := h.sprintService.Complete(ctx, middleware.GetUser(ctx), id)
	if err != nil {
		respondError(c, err, "complete sprint")
		return
	}
	c.JSON(http.StatusOK, dto.CompleteSprintResponse{
		Sprint:         dto.ToSprintResponse(sprint),
		MovedToBacklog: moved,
	})
}

func (h *SprintHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.sprintService.Delete(ctx, middleware.GetUser(ctx), id); err != nil {
		respondError(c, err, "delete sprint")
		return
	}
	c.Status(http.StatusNoContent)
}

func bindSprint(c *gin.Context) (service.SprintInput, bool) {
	var req dto.SprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return service.SprintInput{}, false
	}

	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		badRequest(c, err)
		return service.SprintInput{}, false
	}
	end, err := dto.ParseDate(req.EndDate)
	if err != nil {
		badRequest(c, err)
		return service.SprintInput{}, false
	}

	return service.SprintInput{Name: req.Name, Goal: req.Goal, StartDate: start, EndDate: end}, true
}
