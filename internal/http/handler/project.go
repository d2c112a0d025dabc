package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/service"
)

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) Create(c *gin.Context) {
	in, ok := bindProject(c)
	if !ok {
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err, "create project")
		return
	}
	c.JSON(http.StatusCreated, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	projects, err := h.projectService.List(ctx, middleware.GetUser(ctx))
	if err != nil {
		respondError(c, err, "list projects")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(projects, dto.ToProjectResponse)))
}

func (h *ProjectHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.projectService.Get(ctx, middleware.GetUser(ctx), id)
	if err != nil {
		respondError(c, err, "get project")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectDetailResponse(detail.Project, detail.Progress))
}

func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	in, ok := bindProject(c)
	if !ok {
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, err, "update project")
		return
	}
	c.JSON(http.StatusOK, dto.ToProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete project")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) Members(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	members, err := h.projectService.Members(ctx, middleware.GetUser(ctx), id)
	if err != nil {
		respondError(c, err, "list members")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(members, dto.ToMemberResponse)))
}

func (h *ProjectHandler) AddMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.projectService.AddMember(c.Request.Context(), id, req.UserID); err != nil {
		respondError(c, err, "add member")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), id, userID); err != nil {
		respondError(c, err, "remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

func bindProject(c *gin.Context) (service.ProjectInput, bool) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return service.ProjectInput{}, false
	}

	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		badRequest(c, err)
		return service.ProjectInput{}, false
	}
	end, err := dto.ParseOptionalDate(req.EndDate)
	if err != nil {
		badRequest(c, err)
		return service.ProjectInput{}, false
	}

	return service.ProjectInput{
		Name:         req.Name,
		Description:  req.Description,
		ClientID:     req.ClientID,
		TeamLeaderID: req.TeamLeaderID,
		Status:       req.Status,
		Budget:       req.Budget,
		StartDate:    start,
		EndDate:      end,
	}, true
}
