package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPlanning, ProjectStatusActive, ProjectStatusOnHold,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

type Project struct {
	ID           int64
	Name         string
	Slug         string
	Description  string
	ClientID     *int64
	TeamLeaderID *int64
	Status       ProjectStatus
	Budget       *decimal.Decimal
	StartDate    time.Time
	EndDate      *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ProjectMember struct {
	ProjectID int64
	UserID    int64
	Name      string
	Email     string
	Role      Role
	AddedAt   time.Time
}

// ProjectProgress is the rollup shown on the project page.
type ProjectProgress struct {
	TasksByStatus map[TaskStatus]int
	TotalTasks    int
	OpenBugs      int
	LoggedHours   decimal.Decimal
}

// PercentDone is done tasks over all tasks, 0 when there are none.
func (p ProjectProgress) PercentDone() int {
	if p.TotalTasks == 0 {
		return 0
	}
	return p.TasksByStatus[TaskStatusDone] * 100 / p.TotalTasks
}
