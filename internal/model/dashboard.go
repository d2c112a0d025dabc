package model

import "github.com/shopspring/decimal"

// Dashboard carries the counters for one role. Fields irrelevant to the
// role stay nil.
type Dashboard struct {
	Role               Role
	ProjectsByStatus   map[ProjectStatus]int
	OpenBugs           *int
	PendingSuggestions *int
	ActiveSprints      *int
	OpenAssignedTasks  *int
	HoursLast7Days     *decimal.Decimal
	ClientProjects     []ClientProjectSummary
}

type ClientProjectSummary struct {
	ProjectID int64
	Name      string
	Status    ProjectStatus
	OpenBugs  int
}
