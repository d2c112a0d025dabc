package model

import "time"

// PasswordResetOTP stores a bcrypt hash of a one-time code, never the code.
type PasswordResetOTP struct {
	ID        int64
	Email     string
	CodeHash  string
	Attempts  int
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

func (o *PasswordResetOTP) IsExpired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

func (o *PasswordResetOTP) IsUsed() bool {
	return o.UsedAt != nil
}
