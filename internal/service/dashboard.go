package service

import (
	"context"
	"fmt"
	"time"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

const dashboardHoursWindow = 7 * 24 * time.Hour

type DashboardService interface {
	Get(ctx context.Context, actor *model.User) (*model.Dashboard, error)
}

type dashboardService struct {
	projectStore    store.ProjectStore
	sprintStore     store.SprintStore
	taskStore       store.TaskStore
	bugStore        store.BugStore
	suggestionStore store.SuggestionStore
	activityStore   store.ActivityStore
	now             func() time.Time
}

func NewDashboardService(
	projectStore store.ProjectStore,
	sprintStore store.SprintStore,
	taskStore store.TaskStore,
	bugStore store.BugStore,
	suggestionStore store.SuggestionStore,
	activityStore store.ActivityStore,
) DashboardService {
	return &dashboardService{
		projectStore:    projectStore,
		sprintStore:     sprintStore,
		taskStore:       taskStore,
		bugStore:        bugStore,
		suggestionStore: suggestionStore,
		activityStore:   activityStore,
		now:             time.Now,
	}
}

func (s *dashboardService) Get(ctx context.Context, actor *model.User) (*model.Dashboard, error) {
	d := &model.Dashboard{Role: actor.Role}

	var err error
	switch {
	case actor.IsAdmin():
		err = s.admin(ctx, d)
	case actor.Role == model.RoleClient:
		err = s.client(ctx, actor, d)
	default:
		err = s.staff(ctx, actor, d)
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *dashboardService) admin(ctx context.Context, d *model.Dashboard) error {
	byStatus, err := s.projectStore.CountByStatus(ctx)
	if err != nil {
		return fmt.Errorf("counting projects: %w", err)
	}
	openBugs, err := s.bugStore.CountOpen(ctx, nil)
	if err != nil {
		return fmt.Errorf("counting open bugs: %w", err)
	}
	pending, err := s.suggestionStore.CountByStatus(ctx, model.SuggestionStatusPending)
	if err != nil {
		return fmt.Errorf("counting suggestions: %w", err)
	}
	active, err := s.sprintStore.CountActive(ctx)
	if err != nil {
		return fmt.Errorf("counting active sprints: %w", err)
	}

	d.ProjectsByStatus = byStatus
	d.OpenBugs = &openBugs
	d.PendingSuggestions = &pending
	d.ActiveSprints = &active
	return nil
}

func (s *dashboardService) staff(ctx context.Context, actor *model.User, d *model.Dashboard) error {
	open, err := s.taskStore.CountOpenAssigned(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("counting assigned tasks: %w", err)
	}

	now := s.now()
	hours, err := s.activityStore.SumHours(ctx, model.ActivityFilter{
		From:   now.Add(-dashboardHoursWindow),
		To:     now,
		UserID: &actor.ID,
	})
	if err != nil {
		return fmt.Errorf("summing hours: %w", err)
	}

	d.OpenAssignedTasks = &open
	d.HoursLast7Days = &hours
	return nil
}

func (s *dashboardService) client(ctx context.Context, actor *model.User, d *model.Dashboard) error {
	projects, err := s.projectStore.ListForClient(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("listing projects: %w", err)
	}

	d.ClientProjects = make([]model.ClientProjectSummary, 0, len(projects))
	for _, p := range projects {
		open, err := s.bugStore.CountOpen(ctx, &p.ID)
		if err != nil {
			return fmt.Errorf("counting open bugs for project %d: %w", p.ID, err)
		}
		d.ClientProjects = append(d.ClientProjects, model.ClientProjectSummary{
			ProjectID: p.ID,
			Name:      p.Name,
			Status:    p.Status,
			OpenBugs:  open,
		})
	}
	return nil
}
