package model

import "time"

type SuggestionStatus string

const (
	SuggestionStatusPending     SuggestionStatus = "pending"
	SuggestionStatusReviewed    SuggestionStatus = "reviewed"
	SuggestionStatusInProgress  SuggestionStatus = "in_progress"
	SuggestionStatusImplemented SuggestionStatus = "implemented"
	SuggestionStatusRejected    SuggestionStatus = "rejected"
)

func (s SuggestionStatus) Valid() bool {
	switch s {
	case SuggestionStatusPending, SuggestionStatusReviewed, SuggestionStatusInProgress,
		SuggestionStatusImplemented, SuggestionStatusRejected:
		return true
	}
	return false
}

type Suggestion struct {
	ID            int64
	ClientID      int64
	ProjectID     *int64
	Title         string
	Body          string
	Status        SuggestionStatus
	AdminResponse *string
	RespondedBy   *int64
	RespondedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type SuggestionFilter struct {
	ClientID *int64
	Status   SuggestionStatus
}
