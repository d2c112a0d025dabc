package store

import (
	"context"

	"github.com/shopspring/decimal"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

const projectColumns = `p.id, p.name, p.slug, p.description, p.client_id, p.team_leader_id, p.status,
	p.budget, p.start_date, p.end_date, p.created_at, p.updated_at`

type projectStore struct {
	q db.Querier
}

func newProjectStore(q db.Querier) ProjectStore {
	return &projectStore{q: q}
}

func (s *projectStore) GetByID(ctx context.Context, id int64) (*model.Project, error) {
	row := s.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = $1 AND p.deleted_at IS NULL`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *projectStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM projects WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (s *projectStore) ListAll(ctx context.Context) ([]model.Project, error) {
	rows, err := s.q.Query(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.deleted_at IS NULL ORDER BY p.created_at DESC`)
	return collect(rows, err, scanProject)
}

func (s *projectStore) ListForClient(ctx context.Context, clientID int64) ([]model.Project, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+projectColumns+` FROM projects p
		WHERE p.client_id = $1 AND p.deleted_at IS NULL
		ORDER BY p.created_at DESC`,
		clientID,
	)
	return collect(rows, err, scanProject)
}

// ListForStaff returns projects the user leads or is a member of.
func (s *projectStore) ListForStaff(ctx context.Context, userID int64) ([]model.Project, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+projectColumns+` FROM projects p
		WHERE p.deleted_at IS NULL
		  AND (p.team_leader_id = $1
		       OR EXISTS (SELECT 1 FROM project_members m WHERE m.project_id = p.id AND m.user_id = $1))
		ORDER BY p.created_at DESC`,
		userID,
	)
	return collect(rows, err, scanProject)
}

func (s *projectStore) Create(ctx context.Context, project *model.Project) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO projects AS p (id, name, slug, description, client_id, team_leader_id, status, budget, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+projectColumns,
		project.ID, project.Name, project.Slug, project.Description, project.ClientID, project.TeamLeaderID,
		project.Status, nullDecimal(project.Budget), project.StartDate, project.EndDate,
	)
	created, err := scanProject(row)
	if err != nil {
		return mapErr(err)
	}
	*project = created
	return nil
}

func (s *projectStore) Update(ctx context.Context, project *model.Project) error {
	row := s.q.QueryRow(ctx, `
		UPDATE projects AS p
		SET name = $2, description = $3, client_id = $4, team_leader_id = $5, status = $6,
		    budget = $7, start_date = $8, end_date = $9, updated_at = now()
		WHERE p.id = $1 AND p.deleted_at IS NULL
		RETURNING `+projectColumns,
		project.ID, project.Name, project.Description, project.ClientID, project.TeamLeaderID,
		project.Status, nullDecimal(project.Budget), project.StartDate, project.EndDate,
	)
	updated, err := scanProject(row)
	if err != nil {
		return mapErr(err)
	}
	*project = updated
	return nil
}

func (s *projectStore) Delete(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx,
		`UPDATE projects SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id))
}

func (s *projectStore) CountByStatus(ctx context.Context) (map[model.ProjectStatus]int, error) {
	rows, err := s.q.Query(ctx,
		`SELECT status, count(*) FROM projects WHERE deleted_at IS NULL GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.ProjectStatus]int)
	for rows.Next() {
		var (
			status model.ProjectStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (s *projectStore) AddMember(ctx context.Context, projectID, userID int64) error {
	_, err := s.q.Exec(ctx, `INSERT INTO project_members (project_id, user_id) VALUES ($1, $2)`, projectID, userID)
	return mapErr(err)
}

func (s *projectStore) RemoveMember(ctx context.Context, projectID, userID int64) error {
	return affected(s.q.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID))
}

func (s *projectStore) ListMembers(ctx context.Context, projectID int64) ([]model.ProjectMember, error) {
	rows, err := s.q.Query(ctx, `
		SELECT m.project_id, m.user_id, u.name, u.email, u.role, m.added_at
		FROM project_members m JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1 AND u.deleted_at IS NULL
		ORDER BY u.name`,
		projectID,
	)
	return collect(rows, err, func(row scanner) (model.ProjectMember, error) {
		var m model.ProjectMember
		err := row.Scan(&m.ProjectID, &m.UserID, &m.Name, &m.Email, &m.Role, &m.AddedAt)
		return m, err
	})
}

// IsMember also counts the project's team leader.
func (s *projectStore) IsMember(ctx context.Context, projectID, userID int64) (bool, error) {
	var ok bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)
		    OR EXISTS (SELECT 1 FROM projects WHERE id = $1 AND team_leader_id = $2)`,
		projectID, userID,
	).Scan(&ok)
	return ok, err
}

func (s *projectStore) Progress(ctx context.Context, projectID int64) (*model.ProjectProgress, error) {
	progress := &model.ProjectProgress{TasksByStatus: make(map[model.TaskStatus]int)}

	rows, err := s.q.Query(ctx, `SELECT status, count(*) FROM tasks WHERE project_id = $1 GROUP BY status`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			status model.TaskStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		progress.TasksByStatus[status] = n
		progress.TotalTasks += n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var hours decimal.Decimal
	err = s.q.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM bugs WHERE project_id = $1 AND status NOT IN ('resolved', 'closed')),
			(SELECT coalesce(sum(hours), 0) FROM activity_logs WHERE project_id = $1)`,
		projectID,
	).Scan(&progress.OpenBugs, &hours)
	if err != nil {
		return nil, err
	}
	progress.LoggedHours = hours
	return progress, nil
}

func scanProject(row scanner) (model.Project, error) {
	var (
		p      model.Project
		budget decimal.NullDecimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.ClientID, &p.TeamLeaderID, &p.Status,
		&budget, &p.StartDate, &p.EndDate, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return model.Project{}, err
	}
	p.Budget = decimalPtr(budget)
	return p, nil
}
