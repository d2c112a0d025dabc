package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxActivityDuration caps a single log entry.
const MaxActivityDuration = 24 * time.Hour

type ActivityLog struct {
	ID          int64
	UserID      int64
	ProjectID   int64
	TaskID      *int64
	Description string
	StartedAt   time.Time
	EndedAt     time.Time
	Hours       decimal.Decimal
	CreatedAt   time.Time
}

// HoursBetween converts a duration to hours rounded half-up to 2 places.
func HoursBetween(start, end time.Time) decimal.Decimal {
	seconds := decimal.NewFromInt(int64(end.Sub(start) / time.Second))
	return seconds.Div(decimal.NewFromInt(3600)).Round(2)
}

// ActivityFilter selects entries whose StartedAt is in [From, To).
type ActivityFilter struct {
	From      time.Time
	To        time.Time
	ProjectID *int64
	UserID    *int64
}

// ActivityTotal is one developer+project aggregate row.
type ActivityTotal struct {
	UserID      int64
	UserName    string
	ProjectID   int64
	ProjectName string
	Hours       decimal.Decimal
	Entries     int
	HourlyRate  *decimal.Decimal
}

type DailyTotal struct {
	Day   time.Time
	Hours decimal.Decimal
}

type ActivitySummary struct {
	From       time.Time
	To         time.Time
	Rows       []ActivityTotal
	Daily      []DailyTotal
	TotalHours decimal.Decimal
}
