package store

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

const userColumns = `id, name, email, password_hash, role, hourly_rate, phone, is_active, workos_id, created_at, updated_at`

type userStore struct {
	q db.Querier
}

func newUserStore(q db.Querier) UserStore {
	return &userStore{q: q}
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) AND deleted_at IS NULL`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *userStore) GetByWorkOSID(ctx context.Context, workosID string) (*model.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE workos_id = $1 AND deleted_at IS NULL`, workosID)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *userStore) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var search *string
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		search = &pattern
	}
	var role *string
	if filter.Role != "" {
		r := string(filter.Role)
		role = &r
	}

	rows, err := s.q.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE deleted_at IS NULL
		  AND ($1::text IS NULL OR role = $1)
		  AND ($2::text IS NULL OR lower(name) LIKE $2 OR lower(email) LIKE $2)
		ORDER BY name, id
		LIMIT $3 OFFSET $4`,
		role, search, limit, filter.Offset,
	)
	return collect(rows, err, scanUser)
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, hourly_rate, phone, is_active, workos_id)
		VALUES ($1, $2, lower($3), $4, $5, $6, $7, $8, $9)
		RETURNING `+userColumns,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role,
		nullDecimal(user.HourlyRate), user.Phone, user.IsActive, user.WorkOSID,
	)
	created, err := scanUser(row)
	if err != nil {
		return mapErr(err)
	}
	*user = created
	return nil
}

func (s *userStore) Update(ctx context.Context, user *model.User) error {
	row := s.q.QueryRow(ctx, `
		UPDATE users
		SET name = $2, role = $3, hourly_rate = $4, phone = $5, is_active = $6, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING `+userColumns,
		user.ID, user.Name, user.Role, nullDecimal(user.HourlyRate), user.Phone, user.IsActive,
	)
	updated, err := scanUser(row)
	if err != nil {
		return mapErr(err)
	}
	*user = updated
	return nil
}

func (s *userStore) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return affected(s.q.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id, hash,
	))
}

func (s *userStore) LinkWorkOS(ctx context.Context, id int64, workosID string) error {
	return affected(s.q.Exec(ctx,
		`UPDATE users SET workos_id = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id, workosID,
	))
}

func (s *userStore) Delete(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx,
		`UPDATE users SET deleted_at = now(), is_active = FALSE WHERE id = $1 AND deleted_at IS NULL`,
		id,
	))
}

func scanUser(row scanner) (model.User, error) {
	var (
		u    model.User
		rate decimal.NullDecimal
	)
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &rate,
		&u.Phone, &u.IsActive, &u.WorkOSID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return model.User{}, err
	}
	u.HourlyRate = decimalPtr(rate)
	return u, nil
}

