package model

import "time"

type BugSeverity string

const (
	BugSeverityLow      BugSeverity = "low"
	BugSeverityMedium   BugSeverity = "medium"
	BugSeverityHigh     BugSeverity = "high"
	BugSeverityCritical BugSeverity = "critical"
)

func (s BugSeverity) Valid() bool {
	switch s {
	case BugSeverityLow, BugSeverityMedium, BugSeverityHigh, BugSeverityCritical:
		return true
	}
	return false
}

type BugStatus string

const (
	BugStatusOpen       BugStatus = "open"
	BugStatusInProgress BugStatus = "in_progress"
	BugStatusResolved   BugStatus = "resolved"
	BugStatusClosed     BugStatus = "closed"
	BugStatusReopened   BugStatus = "reopened"
)

var bugTransitions = map[BugStatus][]BugStatus{
	BugStatusOpen:       {BugStatusInProgress, BugStatusResolved, BugStatusClosed},
	BugStatusInProgress: {BugStatusResolved, BugStatusOpen},
	BugStatusResolved:   {BugStatusClosed, BugStatusReopened},
	BugStatusClosed:     {BugStatusReopened},
	BugStatusReopened:   {BugStatusInProgress, BugStatusResolved},
}

func (s BugStatus) Valid() bool {
	_, ok := bugTransitions[s]
	return ok
}

// CanTransitionTo reports whether a bug may move from s to next.
func (s BugStatus) CanTransitionTo(next BugStatus) bool {
	for _, allowed := range bugTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsOpen is true for every status that still needs work.
func (s BugStatus) IsOpen() bool {
	return s != BugStatusResolved && s != BugStatusClosed
}

type Bug struct {
	ID          int64
	ProjectID   int64
	TaskID      *int64
	Title       string
	Description string
	Severity    BugSeverity
	Status      BugStatus
	ReportedBy  int64
	AssigneeID  *int64
	ResolvedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type BugFilter struct {
	ProjectID  *int64
	Status     BugStatus
	Severity   BugSeverity
	AssigneeID *int64
}
