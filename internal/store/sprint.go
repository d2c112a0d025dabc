package store

import (
	"context"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

const sprintColumns = `id, project_id, name, goal, start_date, end_date, status, created_at, updated_at`

type sprintStore struct {
	q db.Querier
}

func newSprintStore(q db.Querier) SprintStore {
	return &sprintStore{q: q}
}

func (s *sprintStore) GetByID(ctx context.Context, id int64) (*model.Sprint, error) {
	sp, err := scanSprint(s.q.QueryRow(ctx, `SELECT `+sprintColumns+` FROM sprints WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &sp, nil
}

func (s *sprintStore) GetActive(ctx context.Context, projectID int64) (*model.Sprint, error) {
	sp, err := scanSprint(s.q.QueryRow(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE project_id = $1 AND status = 'active'`, projectID))
	if err != nil {
		return nil, mapErr(err)
	}
	return &sp, nil
}

func (s *sprintStore) ListByProject(ctx context.Context, projectID int64) ([]model.Sprint, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+sprintColumns+` FROM sprints WHERE project_id = $1 ORDER BY start_date DESC, id DESC`, projectID)
	return collect(rows, err, scanSprint)
}

func (s *sprintStore) Create(ctx context.Context, sprint *model.Sprint) error {
	created, err := scanSprint(s.q.QueryRow(ctx, `
		INSERT INTO sprints (id, project_id, name, goal, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+sprintColumns,
		sprint.ID, sprint.ProjectID, sprint.Name, sprint.Goal, sprint.StartDate, sprint.EndDate, sprint.Status,
	))
	if err != nil {
		return mapErr(err)
	}
	*sprint = created
	return nil
}

func (s *sprintStore) Update(ctx context.Context, sprint *model.Sprint) error {
	updated, err := scanSprint(s.q.QueryRow(ctx, `
		UPDATE sprints SET name = $2, goal = $3, start_date = $4, end_date = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+sprintColumns,
		sprint.ID, sprint.Name, sprint.Goal, sprint.StartDate, sprint.EndDate,
	))
	if err != nil {
		return mapErr(err)
	}
	*sprint = updated
	return nil
}

// SetStatus returns ErrConflict if activating would leave two active sprints.
func (s *sprintStore) SetStatus(ctx context.Context, id int64, status model.SprintStatus) error {
	return affected(s.q.Exec(ctx, `UPDATE sprints SET status = $2, updated_at = now() WHERE id = $1`, id, status))
}

func (s *sprintStore) Delete(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx, `DELETE FROM sprints WHERE id = $1`, id))
}

func (s *sprintStore) CountActive(ctx context.Context) (int, error) {
	var n int
	err := s.q.QueryRow(ctx, `
		SELECT count(*) FROM sprints sp JOIN projects p ON p.id = sp.project_id
		WHERE sp.status = 'active' AND p.deleted_at IS NULL`).Scan(&n)
	return n, err
}

func scanSprint(row scanner) (model.Sprint, error) {
	var sp model.Sprint
	err := row.Scan(&sp.ID, &sp.ProjectID, &sp.Name, &sp.Goal, &sp.StartDate, &sp.EndDate,
		&sp.Status, &sp.CreatedAt, &sp.UpdatedAt)
	return sp, err
}
