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

type BugInput struct {
	TaskID      *int64
	Title       string
	Description string
	Severity    model.BugSeverity
	AssigneeID  *int64
}

type BugService interface {
	Report(ctx context.Context, actor *model.User, projectID int64, in BugInput) (*model.Bug, error)
	Get(ctx context.Context, actor *model.User, id int64) (*model.Bug, error)
	List(ctx context.Context, actor *model.User, projectID int64, filter model.BugFilter) ([]model.Bug, error)
	Update(ctx context.Context, actor *model.User, id int64, in BugInput) (*model.Bug, error)
	UpdateStatus(ctx context.Context, actor *model.User, id int64, status model.BugStatus) (*model.Bug, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
}

type bugService struct {
	bugStore     store.BugStore
	taskStore    store.TaskStore
	userStore    store.UserStore
	access       projectAccess
	notifier     Notifier
	dashboardURL string
	now          func() time.Time
}

func NewBugService(
	bugStore store.BugStore,
	taskStore store.TaskStore,
	projectStore store.ProjectStore,
	userStore store.UserStore,
	permStore store.PermissionStore,
	notifier Notifier,
	dashboardURL string,
) BugService {
	return &bugService{
		bugStore:     bugStore,
		taskStore:    taskStore,
		userStore:    userStore,
		access:       projectAccess{projects: projectStore, permissions: permStore},
		notifier:     notifier,
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		now:          time.Now,
	}
}

// Report is open to anyone who can see the project, clients included.
// Only managers may assign on creation; otherwise AssigneeID is ignored.
func (s *bugService) Report(ctx context.Context, actor *model.User, projectID int64, in BugInput) (*model.Bug, error) {
	project, err := s.access.viewable(ctx, actor, projectID)
	if err != nil {
		return nil, err
	}
	if in.Severity == "" {
		in.Severity = model.BugSeverityMedium
	}

	manager, err := s.access.canManage(ctx, actor, project, model.PermBugsManage)
	if err != nil {
		return nil, err
	}
	if !manager {
		in.AssigneeID = nil
	}
	if err := s.validate(ctx, project, in); err != nil {
		return nil, err
	}

	bug := &model.Bug{
		ID:          id.New(),
		ProjectID:   project.ID,
		TaskID:      in.TaskID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Severity:    in.Severity,
		Status:      model.BugStatusOpen,
		ReportedBy:  actor.ID,
		AssigneeID:  in.AssigneeID,
	}
	if err := s.bugStore.Create(ctx, bug); err != nil {
		slog.ErrorContext(ctx, "failed to create bug", "error", err, "project_id", project.ID)
		return nil, fmt.Errorf("creating bug: %w", err)
	}

	if bug.AssigneeID != nil {
		s.notifyAssignee(ctx, project, bug)
	}

	slog.InfoContext(ctx, "bug reported", "bug_id", bug.ID, "project_id", project.ID, "severity", bug.Severity)
	return bug, nil
}

func (s *bugService) Get(ctx context.Context, actor *model.User, id int64) (*model.Bug, error) {
	bug, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.viewable(ctx, actor, bug.ProjectID); err != nil {
		return nil, err
	}
	return bug, nil
}

func (s *bugService) List(ctx context.Context, actor *model.User, projectID int64, filter model.BugFilter) ([]model.Bug, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if filter.Severity != "" && !filter.Severity.Valid() {
		return nil, ErrInvalidSeverity
	}
	if _, err := s.access.viewable(ctx, actor, projectID); err != nil {
		return nil, err
	}
	filter.ProjectID = &projectID
	bugs, err := s.bugStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing bugs: %w", err)
	}
	return bugs, nil
}

func (s *bugService) Update(ctx context.Context, actor *model.User, id int64, in BugInput) (*model.Bug, error) {
	bug, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.access.manageable(ctx, actor, bug.ProjectID, model.PermBugsManage)
	if err != nil {
		return nil, err
	}
	if in.Severity == "" {
		in.Severity = bug.Severity
	}
	if err := s.validate(ctx, project, in); err != nil {
		return nil, err
	}

	reassigned := in.AssigneeID != nil && (bug.AssigneeID == nil || *bug.AssigneeID != *in.AssigneeID)

	bug.TaskID = in.TaskID
	bug.Title = strings.TrimSpace(in.Title)
	bug.Description = in.Description
	bug.Severity = in.Severity
	bug.AssigneeID = in.AssigneeID

	if err := s.bugStore.Update(ctx, bug); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBugNotFound
		}
		return nil, fmt.Errorf("updating bug: %w", err)
	}

	if reassigned {
		s.notifyAssignee(ctx, project, bug)
	}
	return bug, nil
}

func (s *bugService) UpdateStatus(ctx context.Context, actor *model.User, id int64, status model.BugStatus) (*model.Bug, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	bug, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	assignee := bug.AssigneeID != nil && *bug.AssigneeID == actor.ID
	if !assignee {
		if _, err := s.access.manageable(ctx, actor, bug.ProjectID, model.PermBugsManage); err != nil {
			return nil, err
		}
	}
	if !bug.Status.CanTransitionTo(status) {
		return nil, ErrInvalidTransition
	}

	resolvedAt := bug.ResolvedAt
	switch status {
	case model.BugStatusResolved:
		now := s.now()
		resolvedAt = &now
	case model.BugStatusReopened:
		resolvedAt = nil
	}

	if err := s.bugStore.UpdateStatus(ctx, bug.ID, status, resolvedAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBugNotFound
		}
		return nil, fmt.Errorf("updating bug status: %w", err)
	}

	slog.InfoContext(ctx, "bug status changed",
		"bug_id", bug.ID,
		"from", bug.Status,
		"to", status,
		"by", actor.ID,
	)
	bug.Status = status
	bug.ResolvedAt = resolvedAt
	return bug, nil
}

func (s *bugService) Delete(ctx context.Context, actor *model.User, id int64) error {
	bug, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.access.manageable(ctx, actor, bug.ProjectID, model.PermBugsManage); err != nil {
		return err
	}
	if err := s.bugStore.Delete(ctx, bug.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrBugNotFound
		}
		return fmt.Errorf("deleting bug: %w", err)
	}
	return nil
}

func (s *bugService) get(ctx context.Context, id int64) (*model.Bug, error) {
	bug, err := s.bugStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBugNotFound
		}
		return nil, fmt.Errorf("getting bug: %w", err)
	}
	return bug, nil
}

func (s *bugService) validate(ctx context.Context, project *model.Project, in BugInput) error {
	if !in.Severity.Valid() {
		return ErrInvalidSeverity
	}
	if in.TaskID != nil {
		task, err := s.taskStore.GetByID(ctx, *in.TaskID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTaskMismatch
			}
			return fmt.Errorf("getting task: %w", err)
		}
		if task.ProjectID != project.ID {
			return ErrTaskMismatch
		}
	}
	if in.AssigneeID != nil {
		ok, err := s.access.projects.IsMember(ctx, project.ID, *in.AssigneeID)
		if err != nil {
			return fmt.Errorf("checking membership: %w", err)
		}
		if !ok {
			return ErrAssigneeNotMember
		}
	}
	return nil
}

func (s *bugService) notifyAssignee(ctx context.Context, project *model.Project, bug *model.Bug) {
	assignee, err := s.userStore.GetByID(ctx, *bug.AssigneeID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load assignee for notification", "error", err, "bug_id", bug.ID)
		return
	}
	s.notifier.Notify(ctx, model.Notification{
		Type: model.NotificationBugAssigned,
		To:   assignee.Email,
		Name: assignee.Name,
		Data: map[string]string{
			"title":    bug.Title,
			"project":  project.Name,
			"severity": string(bug.Severity),
			"url":      fmt.Sprintf("%s/projects/%d/bugs/%d", s.dashboardURL, project.ID, bug.ID),
		},
	})
}
