package store

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

const taskColumns = `id, project_id, sprint_id, title, description, status, priority, assignee_id,
	estimated_hours, due_date, created_by, completed_at, created_at, updated_at`

type taskStore struct {
	q db.Querier
}

func newTaskStore(q db.Querier) TaskStore {
	return &taskStore{q: q}
}

func (s *taskStore) GetByID(ctx context.Context, id int64) (*model.Task, error) {
	t, err := scanTask(s.q.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &t, nil
}

func (s *taskStore) List(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	var status *string
	if filter.Status != "" {
		st := string(filter.Status)
		status = &st
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+taskColumns+` FROM tasks
		WHERE ($1::bigint IS NULL OR project_id = $1)
		  AND ($2::bigint IS NULL OR sprint_id = $2)
		  AND ($3::text IS NULL OR status = $3)
		  AND ($4::bigint IS NULL OR assignee_id = $4)
		  AND (NOT $5 OR sprint_id IS NULL)
		ORDER BY
			CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
			due_date NULLS LAST, id`,
		filter.ProjectID, filter.SprintID, status, filter.AssigneeID, filter.Backlog,
	)
	return collect(rows, err, scanTask)
}

func (s *taskStore) Create(ctx context.Context, task *model.Task) error {
	created, err := scanTask(s.q.QueryRow(ctx, `
		INSERT INTO tasks (id, project_id, sprint_id, title, description, status, priority, assignee_id,
		                   estimated_hours, due_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+taskColumns,
		task.ID, task.ProjectID, task.SprintID, task.Title, task.Description, task.Status, task.Priority,
		task.AssigneeID, nullDecimal(task.EstimatedHours), task.DueDate, task.CreatedBy,
	))
	if err != nil {
		return mapErr(err)
	}
	*task = created
	return nil
}

func (s *taskStore) Update(ctx context.Context, task *model.Task) error {
	updated, err := scanTask(s.q.QueryRow(ctx, `
		UPDATE tasks
		SET sprint_id = $2, title = $3, description = $4, priority = $5, assignee_id = $6,
		    estimated_hours = $7, due_date = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		task.ID, task.SprintID, task.Title, task.Description, task.Priority, task.AssigneeID,
		nullDecimal(task.EstimatedHours), task.DueDate,
	))
	if err != nil {
		return mapErr(err)
	}
	*task = updated
	return nil
}

func (s *taskStore) UpdateStatus(ctx context.Context, id int64, status model.TaskStatus, completedAt *time.Time) error {
	return affected(s.q.Exec(ctx,
		`UPDATE tasks SET status = $2, completed_at = $3, updated_at = now() WHERE id = $1`,
		id, status, completedAt,
	))
}

func (s *taskStore) Delete(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id))
}

func (s *taskStore) MoveUnfinishedToBacklog(ctx context.Context, sprintID int64) (int64, error) {
	tag, err := s.q.Exec(ctx,
		`UPDATE tasks SET sprint_id = NULL, updated_at = now() WHERE sprint_id = $1 AND status <> 'done'`, sprintID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *taskStore) CountOpenAssigned(ctx context.Context, userID int64) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `
		SELECT count(*) FROM tasks t JOIN projects p ON p.id = t.project_id
		WHERE t.assignee_id = $1 AND t.status <> 'done' AND p.deleted_at IS NULL`,
		userID,
	).Scan(&n)
	return n, err
}

func scanTask(row scanner) (model.Task, error) {
	var (
		t   model.Task
		est decimal.NullDecimal
	)
	err := row.Scan(
		&t.ID, &t.ProjectID, &t.SprintID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.AssigneeID,
		&est, &t.DueDate, &t.CreatedBy, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}
	t.EstimatedHours = decimalPtr(est)
	return t, nil
}
