package dto

import (
	"time"

	"devtrack.app/api/internal/model"
)

type BugRequest struct {
	TaskID      *int64            `json:"task_id,string,omitempty"`
	Title       string            `json:"title" binding:"required,min=1,max=255"`
	Description string            `json:"description" binding:"max=20000"`
	Severity    model.BugSeverity `json:"severity" binding:"omitempty,oneof=low medium high critical"`
	AssigneeID  *int64            `json:"assignee_id,string,omitempty"`
}

type BugStatusRequest struct {
	Status model.BugStatus `json:"status" binding:"required,oneof=open in_progress resolved closed reopened"`
}

type ListBugsQuery struct {
	Status     model.BugStatus   `form:"status" binding:"omitempty,oneof=open in_progress resolved closed reopened"`
	Severity   model.BugSeverity `form:"severity" binding:"omitempty,oneof=low medium high critical"`
	AssigneeID *int64            `form:"assignee_id"`
}

type BugResponse struct {
	ID          int64             `json:"id,string"`
	ProjectID   int64             `json:"project_id,string"`
	TaskID      *int64            `json:"task_id,string,omitempty"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    model.BugSeverity `json:"severity"`
	Status      model.BugStatus   `json:"status"`
	ReportedBy  int64             `json:"reported_by,string"`
	AssigneeID  *int64            `json:"assignee_id,string,omitempty"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func ToBugResponse(b *model.Bug) BugResponse {
	return BugResponse{
		ID:          b.ID,
		ProjectID:   b.ProjectID,
		TaskID:      b.TaskID,
		Title:       b.Title,
		Description: b.Description,
		Severity:    b.Severity,
		Status:      b.Status,
		ReportedBy:  b.ReportedBy,
		AssigneeID:  b.AssigneeID,
		ResolvedAt:  b.ResolvedAt,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
