package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a write violates a unique constraint
var ErrConflict = errors.New("conflict")

// UserStore defines the contract for user data access.
// Soft-deleted users are invisible to every read.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
	LinkWorkOS(ctx context.Context, id int64, workosID string) error
	Delete(ctx context.Context, id int64) error
}

// SessionStore defines the contract for session data access
type SessionStore interface {
	GetValid(ctx context.Context, id int64) (*model.Session, error)
	Create(ctx context.Context, session *model.Session) error
	Delete(ctx context.Context, id int64) error
	DeleteByUser(ctx context.Context, userID int64) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// OTPStore defines the contract for password reset codes
type OTPStore interface {
	Create(ctx context.Context, otp *model.PasswordResetOTP) error
	GetLatestUnused(ctx context.Context, email string) (*model.PasswordResetOTP, error)
	// ClaimAttempt counts one verification against the code, failing with
	// ErrNotFound once limit attempts are used.
	ClaimAttempt(ctx context.Context, id int64, limit int) error
	ReleaseAttempt(ctx context.Context, id int64) error
	MarkUsed(ctx context.Context, id int64) error
	InvalidateForEmail(ctx context.Context, email string) error
}

// PermissionStore covers both the catalog and per-user grants
type PermissionStore interface {
	List(ctx context.Context) ([]model.Permission, error)
	GetByKey(ctx context.Context, key string) (*model.Permission, error)
	GetActiveGrant(ctx context.Context, userID, permissionID int64) (*model.UserPermission, error)
	CreateGrant(ctx context.Context, grant *model.UserPermission) error
	RevokeGrant(ctx context.Context, id int64) error
	ListActiveForUser(ctx context.Context, userID int64) ([]model.UserPermission, error)
	HasActive(ctx context.Context, userID int64, key string) (bool, error)
}

// ProjectStore defines the contract for projects and their members
type ProjectStore interface {
	GetByID(ctx context.Context, id int64) (*model.Project, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	ListAll(ctx context.Context) ([]model.Project, error)
	ListForClient(ctx context.Context, clientID int64) ([]model.Project, error)
	ListForStaff(ctx context.Context, userID int64) ([]model.Project, error)
	Create(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (map[model.ProjectStatus]int, error)

	AddMember(ctx context.Context, projectID, userID int64) error
	RemoveMember(ctx context.Context, projectID, userID int64) error
	ListMembers(ctx context.Context, projectID int64) ([]model.ProjectMember, error)
	IsMember(ctx context.Context, projectID, userID int64) (bool, error)

	Progress(ctx context.Context, projectID int64) (*model.ProjectProgress, error)
}

// SprintStore defines the contract for sprint data access
type SprintStore interface {
	GetByID(ctx context.Context, id int64) (*model.Sprint, error)
	GetActive(ctx context.Context, projectID int64) (*model.Sprint, error)
	ListByProject(ctx context.Context, projectID int64) ([]model.Sprint, error)
	Create(ctx context.Context, sprint *model.Sprint) error
	Update(ctx context.Context, sprint *model.Sprint) error
	SetStatus(ctx context.Context, id int64, status model.SprintStatus) error
	Delete(ctx context.Context, id int64) error
	CountActive(ctx context.Context) (int, error)
}

// TaskStore defines the contract for task data access
type TaskStore interface {
	GetByID(ctx context.Context, id int64) (*model.Task, error)
	List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	UpdateStatus(ctx context.Context, id int64, status model.TaskStatus, completedAt *time.Time) error
	Delete(ctx context.Context, id int64) error
	MoveUnfinishedToBacklog(ctx context.Context, sprintID int64) (int64, error)
	CountOpenAssigned(ctx context.Context, userID int64) (int, error)
}

// BugStore defines the contract for bug data access
type BugStore interface {
	GetByID(ctx context.Context, id int64) (*model.Bug, error)
	List(ctx context.Context, filter model.BugFilter) ([]model.Bug, error)
	Create(ctx context.Context, bug *model.Bug) error
	Update(ctx context.Context, bug *model.Bug) error
	UpdateStatus(ctx context.Context, id int64, status model.BugStatus, resolvedAt *time.Time) error
	Delete(ctx context.Context, id int64) error
	CountOpen(ctx context.Context, projectID *int64) (int, error)
}

// SuggestionStore defines the contract for client suggestions
type SuggestionStore interface {
	GetByID(ctx context.Context, id int64) (*model.Suggestion, error)
	List(ctx context.Context, filter model.SuggestionFilter) ([]model.Suggestion, error)
	Create(ctx context.Context, s *model.Suggestion) error
	Respond(ctx context.Context, s *model.Suggestion) error
	CountByStatus(ctx context.Context, status model.SuggestionStatus) (int, error)
}

// ActivityStore defines the contract for work logs and their aggregates
type ActivityStore interface {
	GetByID(ctx context.Context, id int64) (*model.ActivityLog, error)
	List(ctx context.Context, filter model.ActivityFilter) ([]model.ActivityLog, error)
	Create(ctx context.Context, log *model.ActivityLog) error
	Delete(ctx context.Context, id int64) error
	Totals(ctx context.Context, filter model.ActivityFilter) ([]model.ActivityTotal, error)
	Daily(ctx context.Context, filter model.ActivityFilter) ([]model.DailyTotal, error)
	SumHours(ctx context.Context, filter model.ActivityFilter) (decimal.Decimal, error)
}
