package model

import "time"

const (
	PermReportsGenerate    = "reports.generate"
	PermPaymentsView       = "payments.view"
	PermProjectsManage     = "projects.manage"
	PermUsersView          = "users.view"
	PermBugsManage         = "bugs.manage"
	PermSuggestionsRespond = "suggestions.respond"
)

type Permission struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Description string `json:"description"`
}

// UserPermission is a grant. It is active while RevokedAt is nil.
type UserPermission struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	PermissionID int64      `json:"permission_id"`
	Key          string     `json:"key"`
	GrantedBy    *int64     `json:"granted_by,omitempty"`
	GrantedAt    time.Time  `json:"granted_at"`
	RevokedAt    *time.Time `json:"revoked_at,omitempty"`
}

func (p *UserPermission) IsActive() bool {
	return p.RevokedAt == nil
}
