package dto

import (
	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
)

type ClientProjectResponse struct {
	ProjectID int64               `json:"project_id,string"`
	Name      string              `json:"name"`
	Status    model.ProjectStatus `json:"status"`
	OpenBugs  int                 `json:"open_bugs"`
}

// DashboardResponse only carries the sections relevant to the caller's role.
type DashboardResponse struct {
	Role               model.Role                  `json:"role"`
	ProjectsByStatus   map[model.ProjectStatus]int `json:"projects_by_status,omitempty"`
	OpenBugs           *int                        `json:"open_bugs,omitempty"`
	PendingSuggestions *int                        `json:"pending_suggestions,omitempty"`
	ActiveSprints      *int                        `json:"active_sprints,omitempty"`
	OpenAssignedTasks  *int                        `json:"open_assigned_tasks,omitempty"`
	HoursLast7Days     *decimal.Decimal            `json:"hours_last_7_days,omitempty"`
	Projects           []ClientProjectResponse     `json:"projects,omitempty"`
}

func ToDashboardResponse(d *model.Dashboard) DashboardResponse {
	out := DashboardResponse{
		Role:               d.Role,
		ProjectsByStatus:   d.ProjectsByStatus,
		OpenBugs:           d.OpenBugs,
		PendingSuggestions: d.PendingSuggestions,
		ActiveSprints:      d.ActiveSprints,
		OpenAssignedTasks:  d.OpenAssignedTasks,
		HoursLast7Days:     d.HoursLast7Days,
	}
	if d.ClientProjects != nil {
		out.Projects = MapSlice(d.ClientProjects, func(p *model.ClientProjectSummary) ClientProjectResponse {
			return ClientProjectResponse{ProjectID: p.ProjectID, Name: p.Name, Status: p.Status, OpenBugs: p.OpenBugs}
		})
	}
	return out
}
