package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
)

type BugHandler struct {
	bugService service.BugService
}

func NewBugHandler(bugService service.BugService) *BugHandler {
	return &BugHandler{bugService: bugService}
}

func (h *BugHandler) Report(c *gin.Context) {
	ctx := c.Request.Context()
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindBug(c)
	if !ok {
		return
	}

	bug, err := h.bugService.Report(ctx, middleware.GetUser(ctx), projectID, in)
	if err != nil {
		respondError(c, err, "report bug")
		return
	}
	c.JSON(http.StatusCreated, dto.ToBugResponse(bug))
}

func (h *BugHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var q dto.ListBugsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	bugs, err := h.bugService.List(ctx, middleware.GetUser(ctx), projectID, model.BugFilter{
		Status:     q.Status,
		Severity:   q.Severity,
		AssigneeID: q.AssigneeID,
	})
	if err != nil {
		respondError(c, err, "list bugs")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(bugs, dto.ToBugResponse)))
}

func (h *BugHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	bug, err := h.bugService.Get(ctx, middleware.GetUser(ctx), id)
	if err != nil {
		respondError(c, err, "get bug")
		return
	}
	c.JSON(http.StatusOK, dto.ToBugResponse(bug))
}

func (h *BugHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindBug(c)
	if !ok {
		return
	}

	bug, err := h.bugService.Update(ctx, middleware.GetUser(ctx), id, in)
	if err != nil {
		respondError(c, err, "update bug")
		return
	}
	c.JSON(http.StatusOK, dto.ToBugResponse(bug))
}

func (h *BugHandler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.BugStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	bug, err := h.bugService.UpdateStatus(ctx, middleware.GetUser(ctx), id, req.Status)
	if err != nil {
		respondError(c, err, "update bug status")
		return
	}
	c.JSON(http.StatusOK, dto.ToBugResponse(bug))
}

func (h *BugHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.bugService.Delete(ctx, middleware.GetUser(ctx), id); err != nil {
		respondError(c, err, "delete bug")
		return
	}
	c.Status(http.StatusNoContent)
}

func bindBug(c *gin.Context) (service.BugInput, bool) {
	var req dto.BugRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return service.BugInput{}, false
	}
	return service.BugInput{
		TaskID:      req.TaskID,
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		AssigneeID:  req.AssigneeID,
	}, true
}
