package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/common/id"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

// RangeQuery is an inclusive calendar-date range with optional narrowing.
type RangeQuery struct {
	From      time.Time
	To        time.Time
	ProjectID *int64
	UserID    *int64
}

func (q RangeQuery) filter() (model.ActivityFilter, error) {
	from, to := startOfDay(q.From), startOfDay(q.To)
	if to.Before(from) {
		return model.ActivityFilter{}, ErrInvalidDateRange
	}
	return model.ActivityFilter{
		From:      from,
		To:        to.AddDate(0, 0, 1),
		ProjectID: q.ProjectID,
		UserID:    q.UserID,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type ActivityInput struct {
	ProjectID   int64
	TaskID      *int64
	Description string
	StartedAt   time.Time
	EndedAt     time.Time
}

type ActivityService interface {
	Log(ctx context.Context, actor *model.User, in ActivityInput) (*model.ActivityLog, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
	List(ctx context.Context, actor *model.User, q RangeQuery) ([]model.ActivityLog, error)
	Summary(ctx context.Context, actor *model.User, q RangeQuery) (*model.ActivitySummary, error)
}

type activityService struct {
	activityStore store.ActivityStore
	taskStore     store.TaskStore
	access        projectAccess
}

func NewActivityService(
	activityStore store.ActivityStore,
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	permStore store.PermissionStore,
) ActivityService {
	return &activityService{
		activityStore: activityStore,
		taskStore:     taskStore,
		access:        projectAccess{projects: projectStore, permissions: permStore},
	}
}

func (s *activityService) Log(ctx context.Context, actor *model.User, in ActivityInput) (*model.ActivityLog, error) {
	if !actor.Role.IsStaff() {
		return nil, ErrForbidden
	}
	duration := in.EndedAt.Sub(in.StartedAt)
	if duration <= 0 || duration > model.MaxActivityDuration {
		return nil, ErrInvalidDuration
	}

	project, err := s.access.load(ctx, in.ProjectID)
	if err != nil {
		return nil, err
	}
	ok, err := s.access.projects.IsMember(ctx, project.ID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("checking membership: %w", err)
	}
	if !ok {
		return nil, ErrNotMember
	}

	if in.TaskID != nil {
		task, err := s.taskStore.GetByID(ctx, *in.TaskID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrTaskMismatch
			}
			return nil, fmt.Errorf("getting task: %w", err)
		}
		if task.ProjectID != project.ID {
			return nil, ErrTaskMismatch
		}
	}

	entry := &model.ActivityLog{
		ID:          id.New(),
		UserID:      actor.ID,
		ProjectID:   project.ID,
		TaskID:      in.TaskID,
		Description: strings.TrimSpace(in.Description),
		StartedAt:   in.StartedAt,
		EndedAt:     in.EndedAt,
		Hours:       model.HoursBetween(in.StartedAt, in.EndedAt),
	}
	if err := s.activityStore.Create(ctx, entry); err != nil {
		slog.ErrorContext(ctx, "failed to log activity", "error", err, "project_id", project.ID)
		return nil, fmt.Errorf("creating activity log: %w", err)
	}

	slog.InfoContext(ctx, "activity logged",
		"activity_id", entry.ID,
		"project_id", project.ID,
		"hours", entry.Hours.String(),
	)
	return entry, nil
}

func (s *activityService) Delete(ctx context.Context, actor *model.User, id int64) error {
	entry, err := s.activityStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("getting activity log: %w", err)
	}
	if entry.UserID != actor.ID && !actor.IsAdmin() {
		return ErrForbidden
	}
	if err := s.activityStore.Delete(ctx, entry.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrActivityNotFound
		}
		return fmt.Errorf("deleting activity log: %w", err)
	}
	return nil
}

func (s *activityService) List(ctx context.Context, actor *model.User, q RangeQuery) ([]model.ActivityLog, error) {
	filter, err := s.scopedFilter(ctx, actor, q)
	if err != nil {
		return nil, err
	}
	entries, err := s.activityStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing activity: %w", err)
	}
	return entries, nil
}

func (s *activityService) Summary(ctx context.Context, actor *model.User, q RangeQuery) (*model.ActivitySummary, error) {
	filter, err := s.scopedFilter(ctx, actor, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.activityStore.Totals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("aggregating activity: %w", err)
	}
	daily, err := s.activityStore.Daily(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("aggregating daily activity: %w", err)
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Hours)
	}

	return &model.ActivitySummary{
		From:       filter.From,
		To:         filter.To.AddDate(0, 0, -1),
		Rows:       rows,
		Daily:      daily,
		TotalHours: total,
	}, nil
}

// scopedFilter validates the range and pins non-privileged staff to their
// own entries. Clients never see activity.
func (s *activityService) scopedFilter(ctx context.Context, actor *model.User, q RangeQuery) (model.ActivityFilter, error) {
	filter, err := q.filter()
	if err != nil {
		return filter, err
	}
	return filter, restrictToSelf(ctx, s.access, actor, &filter, model.PermReportsGenerate)
}

func restrictToSelf(ctx context.Context, access projectAccess, actor *model.User, filter *model.ActivityFilter, perm string) error {
	ok, err := access.has(ctx, actor, perm)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if !actor.Role.IsStaff() {
		return ErrForbidden
	}
	filter.UserID = &actor.ID
	return nil
}
