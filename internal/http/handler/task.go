package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
)

type TaskHandler struct {
	taskService service.TaskService
}

func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindTask(c)
	if !ok {
		return
	}

	task, err := h.taskService.Create(ctx, middleware.GetUser(ctx), projectID, in)
	if err != nil {
		respondError(c, err, "create task")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTaskResponse(task))
}

func (h *TaskHandler) List(c *gin.Context) {
	ctx := c.Request.Context()
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var q dto.ListTasksQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	tasks, err := h.taskService.List(ctx, middleware.GetUser(ctx), projectID, model.TaskFilter{
		SprintID:   q.SprintID,
		AssigneeID: q.AssigneeID,
		Status:     q.Status,
		Backlog:    q.Backlog,
	})
	if err != nil {
		respondError(c, err, "list tasks")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(tasks, dto.ToTaskResponse)))
}

func (h *TaskHandler) Mine(c *gin.Context) {
	ctx := c.Request.Context()

	status := model.TaskStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		respondError(c, service.ErrInvalidStatus, "list tasks")
		return
	}

	tasks, err := h.taskService.Mine(ctx, middleware.GetUser(ctx), status)
	if err != nil {
		respondError(c, err, "list tasks")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(tasks, dto.ToTaskResponse)))
}

func (h *TaskHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.Get(ctx, middleware.GetUser(ctx), id)
	if err != nil {
		respondError(c, err, "get task")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

func (h *TaskHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindTask(c)
	if !ok {
		return
	}

	task, err := h.taskService.Update(ctx, middleware.GetUser(ctx), id, in)
	if err != nil {
		respondError(c, err, "update task")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

func (h *TaskHandler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.TaskStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	task, err := h.taskService.UpdateStatus(ctx, middleware.GetUser(ctx), id, req.Status)
	if err != nil {
		respondError(c, err, "update task status")
		return
	}
	c.JSON(http.StatusOK, dto.ToTaskResponse(task))
}

func (h *TaskHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(ctx, middleware.GetUser(ctx), id); err != nil {
		respondError(c, err, "delete task")
		return
	}
	c.Status(http.StatusNoContent)
}

func bindTask(c *gin.Context) (service.TaskInput, bool) {
	var req dto.TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return service.TaskInput{}, false
	}

	due, err := dto.ParseOptionalDate(req.DueDate)
	if err != nil {
		badRequest(c, err)
		return service.TaskInput{}, false
	}

	return service.TaskInput{
		SprintID:       req.SprintID,
		Title:          req.Title,
		Description:    req.Description,
		Priority:       req.Priority,
		AssigneeID:     req.AssigneeID,
		EstimatedHours: req.EstimatedHours,
		DueDate:        due,
	}, true
}
