package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"devtrack.app/api/common/id"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

type SprintInput struct {
	Name      string
	Goal      string
	StartDate time.Time
	EndDate   time.Time
}

type SprintService interface {
	Create(ctx context.Context, actor *model.User, projectID int64, in SprintInput) (*model.Sprint, error)
	Update(ctx context.Context, actor *model.User, id int64, in SprintInput) (*model.Sprint, error)
	List(ctx context.Context, actor *model.User, projectID int64) ([]model.Sprint, error)
	Start(ctx context.Context, actor *model.User, id int64) (*model.Sprint, error)
	// Complete returns the number of unfinished tasks moved to the backlog.
	Complete(ctx context.Context, actor *model.User, id int64) (*model.Sprint, int64, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
}

type sprintService struct {
	sprintStore store.SprintStore
	txRunner    TxRunner
	access      projectAccess
}

func NewSprintService(
	sprintStore store.SprintStore,
	projectStore store.ProjectStore,
	permStore store.PermissionStore,
	txRunner TxRunner,
) SprintService {
	return &sprintService{
		sprintStore: sprintStore,
		txRunner:    txRunner,
		access:      projectAccess{projects: projectStore, permissions: permStore},
	}
}

func (s *sprintService) Create(ctx context.Context, actor *model.User, projectID int64, in SprintInput) (*model.Sprint, error) {
	if in.EndDate.Before(in.StartDate) {
		return nil, ErrInvalidDateRange
	}
	if _, err := s.access.manageable(ctx, actor, projectID, ""); err != nil {
		return nil, err
	}

	sprint := &model.Sprint{
		ID:        id.New(),
		ProjectID: projectID,
		Name:      strings.TrimSpace(in.Name),
		Goal:      in.Goal,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    model.SprintStatusPlanned,
	}
	if err := s.sprintStore.Create(ctx, sprint); err != nil {
		return nil, fmt.Errorf("creating sprint: %w", err)
	}

	slog.InfoContext(ctx, "sprint created", "sprint_id", sprint.ID, "project_id", projectID)
	return sprint, nil
}

func (s *sprintService) Update(ctx context.Context, actor *model.User, id int64, in SprintInput) (*model.Sprint, error) {
	if in.EndDate.Before(in.StartDate) {
		return nil, ErrInvalidDateRange
	}
	sprint, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sprint.Status == model.SprintStatusCompleted {
		return nil, ErrInvalidSprintState
	}

	sprint.Name = strings.TrimSpace(in.Name)
	sprint.Goal = in.Goal
	sprint.StartDate = in.StartDate
	sprint.EndDate = in.EndDate
	if err := s.sprintStore.Update(ctx, sprint); err != nil {
		return nil, fmt.Errorf("updating sprint: %w", err)
	}
	return sprint, nil
}

func (s *sprintService) List(ctx context.Context, actor *model.User, projectID int64) ([]model.Sprint, error) {
	if _, err := s.access.viewable(ctx, actor, projectID); err != nil {
		return nil, err
	}
	sprints, err := s.sprintStore.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing sprints: %w", err)
	}
	return sprints, nil
}

func (s *sprintService) Start(ctx context.Context, actor *model.User, id int64) (*model.Sprint, error) {
	sprint, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if sprint.Status != model.SprintStatusPlanned {
		return nil, ErrInvalidSprintState
	}

	_, err = s.sprintStore.GetActive(ctx, sprint.ProjectID)
	switch {
	case err == nil:
		return nil, ErrSprintAlreadyActive
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("checking active sprint: %w", err)
	}

	if err := s.sprintStore.SetStatus(ctx, sprint.ID, model.SprintStatusActive); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrSprintAlreadyActive
		}
		return nil, fmt.Errorf("starting sprint: %w", err)
	}
	sprint.Status = model.SprintStatusActive

	slog.InfoContext(ctx, "sprint started", "sprint_id", sprint.ID, "project_id", sprint.ProjectID)
	return sprint, nil
}

func (s *sprintService) Complete(ctx context.Context, actor *model.User, id int64) (*model.Sprint, int64, error) {
	sprint, err := s.manageable(ctx, actor, id)
	if err != nil {
		return nil, 0, err
	}
	if sprint.Status != model.SprintStatusActive {
		return nil, 0, ErrInvalidSprintState
	}

	var moved int64
	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		var err error
		if moved, err = stores.Tasks().MoveUnfinishedToBacklog(ctx, sprint.ID); err != nil {
			return fmt.Errorf("moving unfinished tasks: %w", err)
		}
		if err := stores.Sprints().SetStatus(ctx, sprint.ID, model.SprintStatusCompleted); err != nil {
			return fmt.Errorf("completing sprint: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sprint.Status = model.SprintStatusCompleted

	slog.InfoContext(ctx, "sprint completed",
		"sprint_id", sprint.ID,
		"project_id", sprint.ProjectID,
		"moved_to_backlog", moved,
	)
	return sprint, moved, nil
}

func (s *sprintService) Delete(ctx context.Context, actor *model.User, id int64) error {
	sprint, err := s.manageable(ctx, actor, id)
	if err != nil {
		return err
	}
	if sprint.Status != model.SprintStatusPlanned {
		return ErrInvalidSprintState
	}
	if err := s.sprintStore.Delete(ctx, sprint.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrSprintNotFound
		}
		return fmt.Errorf("deleting sprint: %w", err)
	}
	return nil
}

func (s *sprintService) manageable(ctx context.Context, actor *model.User, id int64) (*model.Sprint, error) {
	sprint, err := s.sprintStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSprintNotFound
		}
		return nil, fmt.Errorf("getting sprint: %w", err)
	}
	if _, err := s.access.manageable(ctx, actor, sprint.ProjectID, ""); err != nil {
		return nil, err
	}
	return sprint, nil
}
