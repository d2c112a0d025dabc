package store

import (
	"context"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

const grantColumns = `g.id, g.user_id, g.permission_id, p.key, g.granted_by, g.granted_at, g.revoked_at`

type permissionStore struct {
	q db.Querier
}

func newPermissionStore(q db.Querier) PermissionStore {
	return &permissionStore{q: q}
}

func (s *permissionStore) List(ctx context.Context) ([]model.Permission, error) {
	rows, err := s.q.Query(ctx, `SELECT id, key, description FROM permissions ORDER BY key`)
	return collect(rows, err, scanPermission)
}

func (s *permissionStore) GetByKey(ctx context.Context, key string) (*model.Permission, error) {
	p, err := scanPermission(s.q.QueryRow(ctx, `SELECT id, key, description FROM permissions WHERE key = $1`, key))
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (s *permissionStore) GetActiveGrant(ctx context.Context, userID, permissionID int64) (*model.UserPermission, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+grantColumns+`
		FROM user_permissions g JOIN permissions p ON p.id = g.permission_id
		WHERE g.user_id = $1 AND g.permission_id = $2 AND g.revoked_at IS NULL`,
		userID, permissionID,
	)
	g, err := scanGrant(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

// CreateGrant returns ErrConflict when an active grant already exists.
func (s *permissionStore) CreateGrant(ctx context.Context, grant *model.UserPermission) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO user_permissions (id, user_id, permission_id, granted_by)
		VALUES ($1, $2, $3, $4)
		RETURNING granted_at`,
		grant.ID, grant.UserID, grant.PermissionID, grant.GrantedBy,
	).Scan(&grant.GrantedAt)
	return mapErr(err)
}

func (s *permissionStore) RevokeGrant(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx,
		`UPDATE user_permissions SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL`, id))
}

func (s *permissionStore) ListActiveForUser(ctx context.Context, userID int64) ([]model.UserPermission, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+grantColumns+`
		FROM user_permissions g JOIN permissions p ON p.id = g.permission_id
		WHERE g.user_id = $1 AND g.revoked_at IS NULL
		ORDER BY p.key`,
		userID,
	)
	return collect(rows, err, scanGrant)
}

func (s *permissionStore) HasActive(ctx context.Context, userID int64, key string) (bool, error) {
	var ok bool
	err := s.q.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_permissions g JOIN permissions p ON p.id = g.permission_id
			WHERE g.user_id = $1 AND p.key = $2 AND g.revoked_at IS NULL
		)`,
		userID, key,
	).Scan(&ok)
	return ok, err
}

func scanPermission(row scanner) (model.Permission, error) {
	var p model.Permission
	err := row.Scan(&p.ID, &p.Key, &p.Description)
	return p, err
}

func scanGrant(row scanner) (model.UserPermission, error) {
	var g model.UserPermission
	err := row.Scan(&g.ID, &g.UserID, &g.PermissionID, &g.Key, &g.GrantedBy, &g.GrantedAt, &g.RevokedAt)
	return g, err
}
