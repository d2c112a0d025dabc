package dto

import (
	"time"

	"devtrack.app/api/internal/model"
)

type GrantPermissionRequest struct {
	Key string `json:"key" binding:"required,max=64"`
}

type PermissionResponse struct {
	ID          int64  `json:"id,string"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

func ToPermissionResponse(p *model.Permission) PermissionResponse {
	return PermissionResponse{ID: p.ID, Key: p.Key, Description: p.Description}
}

type GrantResponse struct {
	ID        int64     `json:"id,string"`
	UserID    int64     `json:"user_id,string"`
	Key       string    `json:"key"`
	GrantedBy *int64    `json:"granted_by,string,omitempty"`
	GrantedAt time.Time `json:"granted_at"`
}

func ToGrantResponse(g *model.UserPermission) GrantResponse {
	return GrantResponse{
		ID:        g.ID,
		UserID:    g.UserID,
		Key:       g.Key,
		GrantedBy: g.GrantedBy,
		GrantedAt: g.GrantedAt,
	}
}
