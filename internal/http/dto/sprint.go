package dto

import (
	"time"

	"devtrack.app/api/internal/model"
)

type SprintRequest struct {
	Name      string `json:"name" binding:"required,min=1,max=255"`
	Goal      string `json:"goal" binding:"max=2000"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" binding:"required,datetime=2006-01-02"`
}

type SprintResponse struct {
	ID        int64              `json:"id,string"`
	ProjectID int64              `json:"project_id,string"`
	Name      string             `json:"name"`
	Goal      string             `json:"goal"`
	StartDate string             `json:"start_date"`
	EndDate   string             `json:"end_date"`
	Status    model.SprintStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func ToSprintResponse(s *model.Sprint) SprintResponse {
	return SprintResponse{
		ID:        s.ID,
		ProjectID: s.ProjectID,
		Name:      s.Name,
		Goal:      s.Goal,
		StartDate: FormatDate(s.StartDate),
		EndDate:   FormatDate(s.EndDate),
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type CompleteSprintResponse struct {
	Sprint         SprintResponse `json:"sprint"`
	MovedToBacklog int64          `json:"moved_to_backlog"`
}
