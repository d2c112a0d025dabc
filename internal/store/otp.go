package store

import (
	"context"

	"devtrack.app/api/core/db"
	"devtrack.app/api/internal/model"
)

type otpStore struct {
	q db.Querier
}

func newOTPStore(q db.Querier) OTPStore {
	return &otpStore{q: q}
}

func (s *otpStore) Create(ctx context.Context, otp *model.PasswordResetOTP) error {
	err := s.q.QueryRow(ctx, `
		INSERT INTO password_reset_otps (id, email, code_hash, expires_at)
		VALUES ($1, lower($2), $3, $4)
		RETURNING created_at`,
		otp.ID, otp.Email, otp.CodeHash, otp.ExpiresAt,
	).Scan(&otp.CreatedAt)
	return mapErr(err)
}

// GetLatestUnused returns the newest code for email that has not been used,
// whether or not it has expired.
func (s *otpStore) GetLatestUnused(ctx context.Context, email string) (*model.PasswordResetOTP, error) {
	var o model.PasswordResetOTP
	err := s.q.QueryRow(ctx, `
		SELECT id, email, code_hash, attempts, expires_at, used_at, created_at
		FROM password_reset_otps
		WHERE lower(email) = lower($1) AND used_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT 1`,
		email,
	).Scan(&o.ID, &o.Email, &o.CodeHash, &o.Attempts, &o.ExpiresAt, &o.UsedAt, &o.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

func (s *otpStore) ClaimAttempt(ctx context.Context, id int64, limit int) error {
	return affected(s.q.Exec(ctx, `
		UPDATE password_reset_otps SET attempts = attempts + 1
		WHERE id = $1 AND attempts < $2 AND used_at IS NULL`,
		id, limit,
	))
}

// ReleaseAttempt gives back a claim taken by a matching code.
func (s *otpStore) ReleaseAttempt(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx,
		`UPDATE password_reset_otps SET attempts = attempts - 1 WHERE id = $1 AND attempts > 0`, id))
}

func (s *otpStore) MarkUsed(ctx context.Context, id int64) error {
	return affected(s.q.Exec(ctx,
		`UPDATE password_reset_otps SET used_at = now() WHERE id = $1 AND used_at IS NULL`, id))
}

func (s *otpStore) InvalidateForEmail(ctx context.Context, email string) error {
	_, err := s.q.Exec(ctx,
		`UPDATE password_reset_otps SET used_at = now() WHERE lower(email) = lower($1) AND used_at IS NULL`, email)
	return err
}
