package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
)

type SuggestionHandler struct {
	suggestionService service.SuggestionService
}

func NewSuggestionHandler(suggestionService service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: suggestionService}
}

func (h *SuggestionHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sg, err := h.suggestionService.Submit(ctx, middleware.GetUser(ctx), service.SuggestionInput{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		respondError(c, err, "submit suggestion")
		return
	}
	c.JSON(http.StatusCreated, dto.ToSuggestionResponse(sg))
}

func (h *SuggestionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	status := model.SuggestionStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		respondError(c, service.ErrInvalidStatus, "list suggestions")
		return
	}

	suggestions, err := h.suggestionService.List(ctx, middleware.GetUser(ctx), status)
	if err != nil {
		respondError(c, err, "list suggestions")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(suggestions, dto.ToSuggestionResponse)))
}

func (h *SuggestionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	sg, err := h.suggestionService.Get(ctx, middleware.GetUser(ctx), id)
	if err != nil {
		respondError(c, err, "get suggestion")
		return
	}
	c.JSON(http.StatusOK, dto.ToSuggestionResponse(sg))
}

func (h *SuggestionHandler) Respond(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.RespondSuggestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sg, err := h.suggestionService.Respond(ctx, middleware.GetUser(ctx), id, req.Status, req.Response)
	if err != nil {
		respondError(c, err, "respond to suggestion")
		return
	}
	c.JSON(http.StatusOK, dto.ToSuggestionResponse(sg))
}
