package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
)

type TaskRequest struct {
	SprintID       *int64             `json:"sprint_id,string,omitempty"`
	Title          string             `json:"title" binding:"required,min=1,max=255"`
	Description    string             `json:"description" binding:"max=20000"`
	Priority       model.TaskPriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
	AssigneeID     *int64             `json:"assignee_id,string,omitempty"`
	EstimatedHours *decimal.Decimal   `json:"estimated_hours,omitempty"`
	DueDate        *string            `json:"due_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

type TaskStatusRequest struct {
	Status model.TaskStatus `json:"status" binding:"required,oneof=todo in_progress review done"`
}

type ListTasksQuery struct {
	SprintID   *int64           `form:"sprint_id"`
	AssigneeID *int64           `form:"assignee_id"`
	Status     model.TaskStatus `form:"status" binding:"omitempty,oneof=todo in_progress review done"`
	Backlog    bool             `form:"backlog"`
}

type TaskResponse struct {
	ID             int64              `json:"id,string"`
	ProjectID      int64              `json:"project_id,string"`
	SprintID       *int64             `json:"sprint_id,string,omitempty"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Status         model.TaskStatus   `json:"status"`
	Priority       model.TaskPriority `json:"priority"`
	AssigneeID     *int64             `json:"assignee_id,string,omitempty"`
	EstimatedHours *decimal.Decimal   `json:"estimated_hours,omitempty"`
	DueDate        *string            `json:"due_date,omitempty"`
	CreatedBy      int64              `json:"created_by,string"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func ToTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:             t.ID,
		ProjectID:      t.ProjectID,
		SprintID:       t.SprintID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         t.Status,
		Priority:       t.Priority,
		AssigneeID:     t.AssigneeID,
		EstimatedHours: t.EstimatedHours,
		DueDate:        FormatOptionalDate(t.DueDate),
		CreatedBy:      t.CreatedBy,
		CompletedAt:    t.CompletedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}
