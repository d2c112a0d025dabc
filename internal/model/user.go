package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleClient     Role = "client"
	RoleDeveloper  Role = "developer"
	RoleTeamLeader Role = "team_leader"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleDeveloper, RoleTeamLeader:
		return true
	}
	return false
}

// Staff roles can be project members and log activity.
func (r Role) IsStaff() bool {
	return r == RoleDeveloper || r == RoleTeamLeader
}

type User struct {
	ID           int64            `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	PasswordHash *string          `json:"-"`
	Role         Role             `json:"role"`
	HourlyRate   *decimal.Decimal `json:"hourly_rate,omitempty"`
	Phone        *string          `json:"phone,omitempty"`
	IsActive     bool             `json:"is_active"`
	WorkOSID     *string          `json:"workos_id,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserFilter narrows ListUsers. Zero values mean "no filter".
type UserFilter struct {
	Role   Role
	Search string
	Limit  int32
	Offset int32
}
