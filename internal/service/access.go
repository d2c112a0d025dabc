package service

import (
	"context"
	"errors"
	"fmt"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

// projectAccess answers the per-project authorization questions shared by
// sprints, tasks, bugs and activity.
type projectAccess struct {
	projects    store.ProjectStore
	permissions store.PermissionStore
}

func (a projectAccess) load(ctx context.Context, projectID int64) (*model.Project, error) {
	project, err := a.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("getting project: %w", err)
	}
	return project, nil
}

// canView: admins see everything, clients their own projects, staff the
// projects they lead or belong to.
func (a projectAccess) canView(ctx context.Context, actor *model.User, project *model.Project) (bool, error) {
	switch {
	case actor.IsAdmin():
		return true, nil
	case actor.Role == model.RoleClient:
		return project.ClientID != nil && *project.ClientID == actor.ID, nil
	default:
		ok, err := a.projects.IsMember(ctx, project.ID, actor.ID)
		if err != nil {
			return false, fmt.Errorf("checking membership: %w", err)
		}
		return ok, nil
	}
}

// canManage is true for admins, the project's team leader, and holders of
// perm when one is given.
func (a projectAccess) canManage(ctx context.Context, actor *model.User, project *model.Project, perm string) (bool, error) {
	if actor.IsAdmin() || isLeader(actor, project) {
		return true, nil
	}
	if perm == "" {
		return false, nil
	}
	return a.has(ctx, actor, perm)
}

func (a projectAccess) has(ctx context.Context, actor *model.User, perm string) (bool, error) {
	if actor.IsAdmin() {
		return true, nil
	}
	ok, err := a.permissions.HasActive(ctx, actor.ID, perm)
	if err != nil {
		return false, fmt.Errorf("checking permission %s: %w", perm, err)
	}
	return ok, nil
}

// viewable loads the project and fails with ErrForbidden when actor cannot see it.
func (a projectAccess) viewable(ctx context.Context, actor *model.User, projectID int64) (*model.Project, error) {
	project, err := a.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ok, err := a.canView(ctx, actor, project)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return project, nil
}

func (a projectAccess) manageable(ctx context.Context, actor *model.User, projectID int64, perm string) (*model.Project, error) {
	project, err := a.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	ok, err := a.canManage(ctx, actor, project, perm)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return project, nil
}

func isLeader(actor *model.User, project *model.Project) bool {
	return project.TeamLeaderID != nil && *project.TeamLeaderID == actor.ID
}
