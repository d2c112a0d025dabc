package store

import (
	"context"
	"time"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

const bugColumns = `id, project_id, task_id, title, description, severity, status, reported_by, assignee_id,
	resolved_at, created_at, updated_at`

type bugStore struct {
	q db.Querier
}

func newBugStore(q db.Querier) BugStore {
	return &bugStore{q: q}
}

func (s *bugStore) GetByID(ctx context.Context, id int64) (*model.Bug, error) {
	b, err := scanBug(s.q.QueryRow(ctx, `SELECT `+bugColumns+` FROM bugs WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &b, nil
}

func (s *bugStore) List(ctx context.Context, filter model.BugFilter) ([]model.Bug, error) {
	var status, severity *string
	if filter.Status != "" {
		v := string(filter.Status)
		status = &v
	}
	if filter.Severity != "" {
		v := string(filter.Severity)
		severity = &v
	}
	rows, err := s.q.Query(ctx, `
		SELECT `+bugColumns+` FROM bugs
		WHERE ($1::bigint IS NULL OR project_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::text IS NULL OR severity = $3)
		  AND ($4::bigint IS NULL OR assignee_id = $4)
		ORDER BY
			CASE severity WHEN 'critical' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END,
			created_at DESC`,
		filter.ProjectID, status, severity, filter.AssigneeID,
	)
	return collect(rows, err, scanBug)
}

func (s *bugStore) Create(ctx context.Context, bug *model.Bug) error {
	created, err := scanBug(s.q.QueryRow(ctx, `
		INSERT INTO bugs (id, project_id, task_id, title, description, severity, status, reported_by, assignee_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+bugColumns,
		bug.ID, bug.ProjectID, bug.TaskID, bug.Title, bug.Description, bug.Severity, bug.Status,
		bug.ReportedBy, bug.AssigneeID,
	))
	if err != nil {
		return mapErr(err)
	}
	*bug = created
	return nil
}

func (s *bugStore) Update(ctx context.Context, bug *model.Bug) error {
	updated, err := scanBug(s.q.QueryRow(ctx, `
		UPDATE bugs SET task_id = $2, title = $3, description = $4, severity = $5, assignee_id = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+bugColumns,
		bug.ID, bug.TaskID, bug.Title, bug.Description, bug.Severity, bug.AssigneeID,
	))
	if err != nil {
		return mapErr(err)
	}
	*bug = updated
	return nil
}

func (s *bugStore) UpdateStatus(ctx context.Context, id int64, status model.BugStatus, resolvedAt *time.Time) error {
	return affected(s.q.Exec(ctx,
		`UPDATE bugs SET status = $2, resolved_at = $3, updated_at = now() WHERE id = $1`,
		id, status, resolvedAt,
	))
}

func (s *bugStore) Delete(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx, `DELETE FROM bugs WHERE id = $1`, id))
}

func (s *bugStore) CountOpen(ctx context.Context, projectID *int64) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `
		SELECT count(*) FROM bugs b JOIN projects p ON p.id = b.project_id
		WHERE b.status NOT IN ('resolved', 'closed') AND p.deleted_at IS NULL
		  AND ($1::bigint IS NULL OR b.project_id = $1)`,
		projectID,
	).Scan(&n)
	return n, err
}

func scanBug(row scanner) (model.Bug, error) {
	var b model.Bug
	err := row.Scan(&b.ID, &b.ProjectID, &b.TaskID, &b.Title, &b.Description, &b.Severity, &b.Status,
		&b.ReportedBy, &b.AssigneeID, &b.ResolvedAt, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}
