package store

import (
	"context"

	"github.com/shopspring/decimal"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

const activityColumns = `id, user_id, project_id, task_id, description, started_at, ended_at, hours, created_at`

// activityWhere binds $1..$4 to ActivityFilter fields in activityArgs order.
const activityWhere = `
	a.started_at >= $1 AND a.started_at < $2
	AND ($3::bigint IS NULL OR a.project_id = $3)
	AND ($4::bigint IS NULL OR a.user_id = $4)`

type activityStore struct {
	q db.Querier
}

func newActivityStore(q db.Querier) ActivityStore {
	return &activityStore{q: q}
}

func activityArgs(f model.ActivityFilter) []any {
	return []any{f.From, f.To, f.ProjectID, f.UserID}
}

func (s *activityStore) GetByID(ctx context.Context, id int64) (*model.ActivityLog, error) {
	a, err := scanActivity(s.q.QueryRow(ctx, `SELECT `+activityColumns+` FROM activity_logs WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (s *activityStore) List(ctx context.Context, filter model.ActivityFilter) ([]model.ActivityLog, error) {
	rows, err := s.q.Query(ctx,
		`SELECT `+activityColumns+` FROM activity_logs a WHERE `+activityWhere+` ORDER BY a.started_at DESC`,
		activityArgs(filter)...,
	)
	return collect(rows, err, scanActivity)
}

func (s *activityStore) Create(ctx context.Context, log *model.ActivityLog) error {
	created, err := scanActivity(s.q.QueryRow(ctx, `
		INSERT INTO activity_logs (id, user_id, project_id, task_id, description, started_at, ended_at, hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+activityColumns,
		log.ID, log.UserID, log.ProjectID, log.TaskID, log.Description, log.StartedAt, log.EndedAt, log.Hours,
	))
	if err != nil {
		return mapErr(err)
	}
	*log = created
	return nil
}

func (s *activityStore) Delete(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx, `DELETE FROM activity_logs WHERE id = $1`, id))
}

// Totals groups by developer and project, ordered by developer name.
func (s *activityStore) Totals(ctx context.Context, filter model.ActivityFilter) ([]model.ActivityTotal, error) {
	rows, err := s.q.Query(ctx, `
		SELECT a.user_id, u.name, a.project_id, p.name, sum(a.hours), count(*), u.hourly_rate
		FROM activity_logs a
		JOIN users u ON u.id = a.user_id
		JOIN projects p ON p.id = a.project_id
		WHERE `+activityWhere+`
		GROUP BY a.user_id, u.name, a.project_id, p.name, u.hourly_rate
		ORDER BY u.name, a.user_id, p.name`,
		activityArgs(filter)...,
	)
	return collect(rows, err, func(row scanner) (model.ActivityTotal, error) {
		var (
			t    model.ActivityTotal
			rate decimal.NullDecimal
		)
		if err := row.Scan(&t.UserID, &t.UserName, &t.ProjectID, &t.ProjectName, &t.Hours, &t.Entries, &rate); err != nil {
			return model.ActivityTotal{}, err
		}
		t.HourlyRate = decimalPtr(rate)
		return t, nil
	})
}

func (s *activityStore) Daily(ctx context.Context, filter model.ActivityFilter) ([]model.DailyTotal, error) {
	rows, err := s.q.Query(ctx, `
		SELECT date_trunc('day', a.started_at AT TIME ZONE 'UTC')::date AS day, sum(a.hours)
		FROM activity_logs a
		WHERE `+activityWhere+`
		GROUP BY day
		ORDER BY day`,
		activityArgs(filter)...,
	)
	return collect(rows, err, func(row scanner) (model.DailyTotal, error) {
		var d model.DailyTotal
		err := row.Scan(&d.Day, &d.Hours)
		return d, err
	})
}

func (s *activityStore) SumHours(ctx context.Context, filter model.ActivityFilter) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.q.QueryRow(ctx,
		`SELECT coalesce(sum(a.hours), 0) FROM activity_logs a WHERE `+activityWhere,
		activityArgs(filter)...,
	).Scan(&total)
	return total, err
}

func scanActivity(row scanner) (model.ActivityLog, error) {
	var a model.ActivityLog
	err := row.Scan(&a.ID, &a.UserID, &a.ProjectID, &a.TaskID, &a.Description, &a.StartedAt, &a.EndedAt,
		&a.Hours, &a.CreatedAt)
	return a, err
}
