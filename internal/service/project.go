package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/common"
	"devtrack.app/api/common/id"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

const maxSlugAttempts = 50

type ProjectInput struct {
	Name         string
	Description  string
	ClientID     *int64
	TeamLeaderID *int64
	Status       model.ProjectStatus
	Budget       *decimal.Decimal
	StartDate    time.Time
	EndDate      *time.Time
}

type ProjectDetail struct {
	Project  *model.Project
	Progress *model.ProjectProgress
}

type ProjectService interface {
	Create(ctx context.Context, in ProjectInput) (*model.Project, error)
	Update(ctx context.Context, id int64, in ProjectInput) (*model.Project, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, actor *model.User) ([]model.Project, error)
	Get(ctx context.Context, actor *model.User, id int64) (*ProjectDetail, error)

	AddMember(ctx context.Context, projectID, userID int64) error
	RemoveMember(ctx context.Context, projectID, userID int64) error
	Members(ctx context.Context, actor *model.User, projectID int64) ([]model.ProjectMember, error)
}

type projectService struct {
	projectStore store.ProjectStore
	userStore    store.UserStore
	access       projectAccess
}

func NewProjectService(projectStore store.ProjectStore, userStore store.UserStore, permStore store.PermissionStore) ProjectService {
	return &projectService{
		projectStore: projectStore,
		userStore:    userStore,
		access:       projectAccess{projects: projectStore, permissions: permStore},
	}
}

func (s *projectService) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	if in.Status == "" {
		in.Status = model.ProjectStatusPlanning
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	slug, err := s.uniqueSlug(ctx, in.Name)
	if err != nil {
		return nil, err
	}

	project := &model.Project{
		ID:   id.New(),
		Slug: slug,
	}
	apply(project, in)

	if err := s.projectStore.Create(ctx, project); err != nil {
		slog.ErrorContext(ctx, "failed to create project", "error", err, "slug", slug)
		return nil, fmt.Errorf("creating project: %w", err)
	}

	slog.InfoContext(ctx, "project created", "project_id", project.ID, "slug", project.Slug)
	return project, nil
}

func (s *projectService) Update(ctx context.Context, id int64, in ProjectInput) (*model.Project, error) {
	project, err := s.access.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status == "" {
		in.Status = project.Status
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	apply(project, in)
	if err := s.projectStore.Update(ctx, project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("updating project: %w", err)
	}

	slog.InfoContext(ctx, "project updated", "project_id", project.ID)
	return project, nil
}

func (s *projectService) Delete(ctx context.Context, id int64) error {
	if err := s.projectStore.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("deleting project: %w", err)
	}
	slog.InfoContext(ctx, "project deleted", "project_id", id)
	return nil
}

func (s *projectService) List(ctx context.Context, actor *model.User) ([]model.Project, error) {
	var (
		projects []model.Project
		err      error
	)
	switch {
	case actor.IsAdmin():
		projects, err = s.projectStore.ListAll(ctx)
	case actor.Role == model.RoleClient:
		projects, err = s.projectStore.ListForClient(ctx, actor.ID)
	default:
		projects, err = s.projectStore.ListForStaff(ctx, actor.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

func (s *projectService) Get(ctx context.Context, actor *model.User, id int64) (*ProjectDetail, error) {
	project, err := s.access.viewable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	progress, err := s.projectStore.Progress(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("loading progress: %w", err)
	}
	return &ProjectDetail{Project: project, Progress: progress}, nil
}

func (s *projectService) AddMember(ctx context.Context, projectID, userID int64) error {
	if _, err := s.access.load(ctx, projectID); err != nil {
		return err
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("getting user: %w", err)
	}
	if !user.Role.IsStaff() || !user.IsActive {
		return ErrInvalidMember
	}

	if err := s.projectStore.AddMember(ctx, projectID, userID); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("adding member: %w", err)
	}

	slog.InfoContext(ctx, "project member added", "project_id", projectID, "user_id", userID)
	return nil
}

func (s *projectService) RemoveMember(ctx context.Context, projectID, userID int64) error {
	if err := s.projectStore.RemoveMember(ctx, projectID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotMember
		}
		return fmt.Errorf("removing member: %w", err)
	}
	slog.InfoContext(ctx, "project member removed", "project_id", projectID, "user_id", userID)
	return nil
}

func (s *projectService) Members(ctx context.Context, actor *model.User, projectID int64) ([]model.ProjectMember, error) {
	if _, err := s.access.viewable(ctx, actor, projectID); err != nil {
		return nil, err
	}
	members, err := s.projectStore.ListMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return members, nil
}

func (s *projectService) validate(ctx context.Context, in ProjectInput) error {
	if !in.Status.Valid() {
		return ErrInvalidStatus
	}
	if in.EndDate != nil && in.EndDate.Before(in.StartDate) {
		return ErrInvalidDateRange
	}
	if in.ClientID != nil {
		if err := s.requireRole(ctx, *in.ClientID, model.RoleClient, ErrInvalidClient); err != nil {
			return err
		}
	}
	if in.TeamLeaderID != nil {
		if err := s.requireRole(ctx, *in.TeamLeaderID, model.RoleTeamLeader, ErrInvalidTeamLeader); err != nil {
			return err
		}
	}
	return nil
}

func (s *projectService) requireRole(ctx context.Context, userID int64, role model.Role, invalid error) error {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return invalid
		}
		return fmt.Errorf("getting user: %w", err)
	}
	if user.Role != role || !user.IsActive {
		return invalid
	}
	return nil
}

func (s *projectService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base, err := common.Slugify(name, "project")
	if err != nil {
		return "", err
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := common.WithSuffix(base, n)
		exists, err := s.projectStore.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("checking slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free slug for %q after %d attempts", base, maxSlugAttempts)
}

func apply(p *model.Project, in ProjectInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.ClientID = in.ClientID
	p.TeamLeaderID = in.TeamLeaderID
	p.Status = in.Status
	p.Budget = in.Budget
	p.StartDate = in.StartDate
	p.EndDate = in.EndDate
}
