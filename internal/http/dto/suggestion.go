package dto

import (
	"time"

	"devtrack.app/api/internal/model"
)

type SuggestionRequest struct {
	ProjectID *int64 `json:"project_id,string,omitempty"`
	Title     string `json:"title" binding:"required,min=1,max=255"`
	Body      string `json:"body" binding:"required,max=20000"`
}

type RespondSuggestionRequest struct {
	Status   model.SuggestionStatus `json:"status" binding:"required,oneof=reviewed in_progress implemented rejected"`
	Response *string                `json:"response,omitempty" binding:"omitempty,max=20000"`
}

type SuggestionResponse struct {
	ID            int64                  `json:"id,string"`
	ClientID      int64                  `json:"client_id,string"`
	ProjectID     *int64                 `json:"project_id,string,omitempty"`
	Title         string                 `json:"title"`
	Body          string                 `json:"body"`
	Status        model.SuggestionStatus `json:"status"`
	AdminResponse *string                `json:"admin_response,omitempty"`
	RespondedBy   *int64                 `json:"responded_by,string,omitempty"`
	RespondedAt   *time.Time             `json:"responded_at,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

func ToSuggestionResponse(s *model.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:            s.ID,
		ClientID:      s.ClientID,
		ProjectID:     s.ProjectID,
		Title:         s.Title,
		Body:          s.Body,
		Status:        s.Status,
		AdminResponse: s.AdminResponse,
		RespondedBy:   s.RespondedBy,
		RespondedAt:   s.RespondedAt,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}
