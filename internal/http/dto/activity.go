package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
)

type LogActivityRequest struct {
	ProjectID   int64     `json:"project_id,string" binding:"required"`
	TaskID      *int64    `json:"task_id,string,omitempty"`
	Description string    `json:"description" binding:"required,max=2000"`
	StartedAt   time.Time `json:"started_at" binding:"required"`
	EndedAt     time.Time `json:"ended_at" binding:"required"`
}

// RangeQuery is shared by activity, payment and report endpoints. Dates are
// inclusive.
type RangeQuery struct {
	From      string `form:"from" binding:"required,datetime=2006-01-02"`
	To        string `form:"to" binding:"required,datetime=2006-01-02"`
	ProjectID *int64 `form:"project_id"`
	UserID    *int64 `form:"user_id"`
	Format    string `form:"format"`
}

type ActivityResponse struct {
	ID          int64           `json:"id,string"`
	UserID      int64           `json:"user_id,string"`
	ProjectID   int64           `json:"project_id,string"`
	TaskID      *int64          `json:"task_id,string,omitempty"`
	Description string          `json:"description"`
	StartedAt   time.Time       `json:"started_at"`
	EndedAt     time.Time       `json:"ended_at"`
	Hours       decimal.Decimal `json:"hours"`
	CreatedAt   time.Time       `json:"created_at"`
}

func ToActivityResponse(a *model.ActivityLog) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		UserID:      a.UserID,
		ProjectID:   a.ProjectID,
		TaskID:      a.TaskID,
		Description: a.Description,
		StartedAt:   a.StartedAt,
		EndedAt:     a.EndedAt,
		Hours:       a.Hours,
		CreatedAt:   a.CreatedAt,
	}
}

type ActivityTotalResponse struct {
	UserID      int64           `json:"user_id,string"`
	UserName    string          `json:"user_name"`
	ProjectID   int64           `json:"project_id,string"`
	ProjectName string          `json:"project_name"`
	Hours       decimal.Decimal `json:"hours"`
	Entries     int             `json:"entries"`
}

type DailyTotalResponse struct {
	Day   string          `json:"day"`
	Hours decimal.Decimal `json:"hours"`
}

type ActivitySummaryResponse struct {
	From       string                  `json:"from"`
	To         string                  `json:"to"`
	Rows       []ActivityTotalResponse `json:"rows"`
	Daily      []DailyTotalResponse    `json:"daily"`
	TotalHours decimal.Decimal         `json:"total_hours"`
}

func ToActivitySummaryResponse(s *model.ActivitySummary) ActivitySummaryResponse {
	return ActivitySummaryResponse{
		From: FormatDate(s.From),
		To:   FormatDate(s.To),
		Rows: MapSlice(s.Rows, func(r *model.ActivityTotal) ActivityTotalResponse {
			return ActivityTotalResponse{
				UserID:      r.UserID,
				UserName:    r.UserName,
				ProjectID:   r.ProjectID,
				ProjectName: r.ProjectName,
				Hours:       r.Hours,
				Entries:     r.Entries,
			}
		}),
		Daily: MapSlice(s.Daily, func(d *model.DailyTotal) DailyTotalResponse {
			return DailyTotalResponse{Day: FormatDate(d.Day), Hours: d.Hours}
		}),
		TotalHours: s.TotalHours,
	}
}
