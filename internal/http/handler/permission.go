package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/service"
)

type PermissionHandler struct {
	permissionService service.PermissionService
}

func NewPermissionHandler(permissionService service.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

func (h *PermissionHandler) Catalog(c *gin.Context) {
	perms, err := h.permissionService.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, err, "list permissions")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(perms, dto.ToPermissionResponse)))
}

func (h *PermissionHandler) ListForUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	grants, err := h.permissionService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "list user permissions")
		return
	}
	c.JSON(http.StatusOK, dto.NewList(dto.MapSlice(grants, dto.ToGrantResponse)))
}

func (h *PermissionHandler) Grant(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.GrantPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	grant, err := h.permissionService.Grant(ctx, middleware.GetUser(ctx), userID, req.Key)
	if err != nil {
		respondError(c, err, "grant permission")
		return
	}
	c.JSON(http.StatusCreated, dto.ToGrantResponse(grant))
}

func (h *PermissionHandler) Revoke(c *gin.Context) {
	ctx := c.Request.Context()
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.permissionService.Revoke(ctx, middleware.GetUser(ctx), userID, c.Param("key")); err != nil {
		respondError(c, err, "revoke permission")
		return
	}
	c.Status(http.StatusNoContent)
}
