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

type TaskInput struct {
	SprintID       *int64
	Title          string
	Description    string
	Priority       model.TaskPriority
	AssigneeID     *int64
	EstimatedHours *decimal.Decimal
	DueDate        *time.Time
}

type TaskService interface {
	Create(ctx context.Context, actor *model.User, projectID int64, in TaskInput) (*model.Task, error)
	Get(ctx context.Context, actor *model.User, id int64) (*model.Task, error)
	Update(ctx context.Context, actor *model.User, id int64, in TaskInput) (*model.Task, error)
	UpdateStatus(ctx context.Context, actor *model.User, id int64, status model.TaskStatus) (*model.Task, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
	List(ctx context.Context, actor *model.User, projectID int64, filter model.TaskFilter) ([]model.Task, error)
	Mine(ctx context.Context, actor *model.User, status model.TaskStatus) ([]model.Task, error)
}

type taskService struct {
	taskStore    store.TaskStore
	sprintStore  store.SprintStore
	userStore    store.UserStore
	access       projectAccess
	notifier     Notifier
	dashboardURL string
	now          func() time.Time
}

func NewTaskService(
	taskStore store.TaskStore,
	sprintStore store.SprintStore,
	projectStore store.ProjectStore,
	userStore store.UserStore,
	permStore store.PermissionStore,
	notifier Notifier,
	dashboardURL string,
) TaskService {
	return &taskService{
		taskStore:    taskStore,
		sprintStore:  sprintStore,
		userStore:    userStore,
		access:       projectAccess{projects: projectStore, permissions: permStore},
		notifier:     notifier,
		dashboardURL: strings.TrimRight(dashboardURL, "/"),
		now:          time.Now,
	}
}

func (s *taskService) Create(ctx context.Context, actor *model.User, projectID int64, in TaskInput) (*model.Task, error) {
	project, err := s.access.manageable(ctx, actor, projectID, "")
	if err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = model.TaskPriorityMedium
	}
	if err := s.validate(ctx, project, in); err != nil {
		return nil, err
	}

	task := &model.Task{
		ID:             id.New(),
		ProjectID:      project.ID,
		SprintID:       in.SprintID,
		Title:          strings.TrimSpace(in.Title),
		Description:    in.Description,
		Status:         model.TaskStatusTodo,
		Priority:       in.Priority,
		AssigneeID:     in.AssigneeID,
		EstimatedHours: in.EstimatedHours,
		DueDate:        in.DueDate,
		CreatedBy:      actor.ID,
	}
	if err := s.taskStore.Create(ctx, task); err != nil {
		slog.ErrorContext(ctx, "failed to create task", "error", err, "project_id", project.ID)
		return nil, fmt.Errorf("creating task: %w", err)
	}

	if task.AssigneeID != nil {
		s.notifyAssignee(ctx, project, task)
	}

	slog.InfoContext(ctx, "task created", "task_id", task.ID, "project_id", project.ID)
	return task, nil
}

func (s *taskService) Get(ctx context.Context, actor *model.User, id int64) (*model.Task, error) {
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.access.viewable(ctx, actor, task.ProjectID); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Update(ctx context.Context, actor *model.User, id int64, in TaskInput) (*model.Task, error) {
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	project, err := s.access.manageable(ctx, actor, task.ProjectID, "")
	if err != nil {
		return nil, err
	}
	if in.Priority == "" {
		in.Priority = task.Priority
	}
	if err := s.validate(ctx, project, in); err != nil {
		return nil, err
	}

	reassigned := in.AssigneeID != nil && (task.AssigneeID == nil || *task.AssigneeID != *in.AssigneeID)

	task.SprintID = in.SprintID
	task.Title = strings.TrimSpace(in.Title)
	task.Description = in.Description
	task.Priority = in.Priority
	task.AssigneeID = in.AssigneeID
	task.EstimatedHours = in.EstimatedHours
	task.DueDate = in.DueDate

	if err := s.taskStore.Update(ctx, task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("updating task: %w", err)
	}

	if reassigned {
		s.notifyAssignee(ctx, project, task)
	}
	return task, nil
}

// UpdateStatus is open to the assignee as well as project managers. Moving
// to done stamps completed_at; leaving done clears it.
func (s *taskService) UpdateStatus(ctx context.Context, actor *model.User, id int64, status model.TaskStatus) (*model.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	assignee := task.AssigneeID != nil && *task.AssigneeID == actor.ID
	if !assignee {
		if _, err := s.access.manageable(ctx, actor, task.ProjectID, ""); err != nil {
			return nil, err
		}
	}

	var completedAt *time.Time
	switch {
	case status == model.TaskStatusDone && task.Status == model.TaskStatusDone:
		completedAt = task.CompletedAt
	case status == model.TaskStatusDone:
		now := s.now()
		completedAt = &now
	}

	if err := s.taskStore.UpdateStatus(ctx, task.ID, status, completedAt); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("updating task status: %w", err)
	}
	task.Status = status
	task.CompletedAt = completedAt

	slog.InfoContext(ctx, "task status changed", "task_id", task.ID, "status", status, "by", actor.ID)
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, actor *model.User, id int64) error {
	task, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.access.manageable(ctx, actor, task.ProjectID, ""); err != nil {
		return err
	}
	if err := s.taskStore.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("deleting task: %w", err)
	}
	return nil
}

func (s *taskService) List(ctx context.Context, actor *model.User, projectID int64, filter model.TaskFilter) ([]model.Task, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if _, err := s.access.viewable(ctx, actor, projectID); err != nil {
		return nil, err
	}
	filter.ProjectID = &projectID
	tasks, err := s.taskStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) Mine(ctx context.Context, actor *model.User, status model.TaskStatus) ([]model.Task, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	tasks, err := s.taskStore.List(ctx, model.TaskFilter{AssigneeID: &actor.ID, Status: status})
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

func (s *taskService) get(ctx context.Context, id int64) (*model.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("getting task: %w", err)
	}
	return task, nil
}

func (s *taskService) validate(ctx context.Context, project *model.Project, in TaskInput) error {
	if !in.Priority.Valid() {
		return ErrInvalidPriority
	}
	if in.SprintID != nil {
		sprint, err := s.sprintStore.GetByID(ctx, *in.SprintID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSprintMismatch
			}
			return fmt.Errorf("getting sprint: %w", err)
		}
		if sprint.ProjectID != project.ID {
			return ErrSprintMismatch
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

func (s *taskService) notifyAssignee(ctx context.Context, project *model.Project, task *model.Task) {
	assignee, err := s.userStore.GetByID(ctx, *task.AssigneeID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load assignee for notification", "error", err, "task_id", task.ID)
		return
	}
	s.notifier.Notify(ctx, model.Notification{
		Type: model.NotificationTaskAssigned,
		To:   assignee.Email,
		Name: assignee.Name,
		Data: map[string]string{
			"title":    task.Title,
			"project":  project.Name,
			"priority": string(task.Priority),
			"url":      fmt.Sprintf("%s/projects/%d/tasks/%d", s.dashboardURL, project.ID, task.ID),
		},
	})
}
