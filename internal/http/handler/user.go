package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.Create(c.Request.Context(), service.CreateUserInput{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Password:   req.Password,
		HourlyRate: req.HourlyRate,
		Phone:      req.Phone,
	})
	if err != nil {
		respondError(c, err, "create user")
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

func (h *UserHandler) List(c *gin.Context) {
	var q dto.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	users, err := h.userService.List(c.Request.Context(), model.UserFilter{
		Role:   q.Role,
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		respondError(c, err, "list users")
		return
	}

	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(users, dto.ToUserResponse)))
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get user")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.userService.Update(ctx, middleware.GetUser(ctx), id, service.UpdateUserInput{
		Name:       req.Name,
		Role:       req.Role,
		HourlyRate: req.HourlyRate,
		Phone:      req.Phone,
		IsActive:   req.IsActive,
	})
	if err != nil {
		respondError(c, err, "update user")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Delete(ctx, middleware.GetUser(ctx), id); err != nil {
		respondError(c, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
