package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
)

type ProjectRequest struct {
	Name         string              `json:"name" binding:"required,min=1,max=255"`
	Description  string              `json:"description" binding:"max=10000"`
	ClientID     *int64              `json:"client_id,string,omitempty"`
	TeamLeaderID *int64              `json:"team_leader_id,string,omitempty"`
	Status       model.ProjectStatus `json:"status" binding:"omitempty,oneof=planning active on_hold completed cancelled"`
	Budget       *decimal.Decimal    `json:"budget,omitempty"`
	StartDate    string              `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate      *string             `json:"end_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
}

type AddMemberRequest struct {
	UserID int64 `json:"user_id,string" binding:"required"`
}

type ProjectResponse struct {
	ID           int64               `json:"id,string"`
	Name         string              `json:"name"`
	Slug         string              `json:"slug"`
	Description  string              `json:"description"`
	ClientID     *int64              `json:"client_id,string,omitempty"`
	TeamLeaderID *int64              `json:"team_leader_id,string,omitempty"`
	Status       model.ProjectStatus `json:"status"`
	Budget       *decimal.Decimal    `json:"budget,omitempty"`
	StartDate    string              `json:"start_date"`
	EndDate      *string             `json:"end_date,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

func ToProjectResponse(p *model.Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Description:  p.Description,
		ClientID:     p.ClientID,
		TeamLeaderID: p.TeamLeaderID,
		Status:       p.Status,
		Budget:       p.Budget,
		StartDate:    FormatDate(p.StartDate),
		EndDate:      FormatOptionalDate(p.EndDate),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}

type ProgressResponse struct {
	TasksByStatus map[model.TaskStatus]int `json:"tasks_by_status"`
	TotalTasks    int                      `json:"total_tasks"`
	PercentDone   int                      `json:"percent_done"`
	OpenBugs      int                      `json:"open_bugs"`
	LoggedHours   decimal.Decimal          `json:"logged_hours"`
}

type ProjectDetailResponse struct {
	ProjectResponse
	Progress *ProgressResponse `json:"progress,omitempty"`
}

func ToProjectDetailResponse(p *model.Project, progress *model.ProjectProgress) ProjectDetailResponse {
	out := ProjectDetailResponse{ProjectResponse: ToProjectResponse(p)}
	if progress != nil {
		out.Progress = &ProgressResponse{
			TasksByStatus: progress.TasksByStatus,
			TotalTasks:    progress.TotalTasks,
			PercentDone:   progress.PercentDone(),
			OpenBugs:      progress.OpenBugs,
			LoggedHours:   progress.LoggedHours,
		}
	}
	return out
}

type MemberResponse struct {
	UserID  int64      `json:"user_id,string"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Role    model.Role `json:"role"`
	AddedAt time.Time  `json:"added_at"`
}

func ToMemberResponse(m *model.ProjectMember) MemberResponse {
	return MemberResponse{UserID: m.UserID, Name: m.Name, Email: m.Email, Role: m.Role, AddedAt: m.AddedAt}
}
