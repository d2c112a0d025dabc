package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
)

type CreateUserRequest struct {
	Name       string           `json:"name" binding:"required,min=1,max=255"`
	Email      string           `json:"email" binding:"required,email,max=255"`
	Role       model.Role       `json:"role" binding:"required,oneof=admin client developer team_leader"`
	Password   string           `json:"password" binding:"required,min=8,max=128"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
	Phone      *string          `json:"phone,omitempty" binding:"omitempty,max=32"`
}

type UpdateUserRequest struct {
	Name       *string          `json:"name,omitempty" binding:"omitempty,min=1,max=255"`
	Role       *model.Role      `json:"role,omitempty" binding:"omitempty,oneof=admin client developer team_leader"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
	Phone      *string          `json:"phone,omitempty" binding:"omitempty,max=32"`
	IsActive   *bool            `json:"is_active,omitempty"`
}

type ListUsersQuery struct {
	Role   model.Role `form:"role" binding:"omitempty,oneof=admin client developer team_leader"`
	Search string     `form:"q" binding:"max=255"`
	Limit  int32      `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int32      `form:"offset" binding:"omitempty,min=0"`
}

type UserResponse struct {
	ID         int64            `json:"id,string"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Role       model.Role       `json:"role"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
	Phone      *string          `json:"phone,omitempty"`
	IsActive   bool             `json:"is_active"`
	SSOLinked  bool             `json:"sso_linked"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		HourlyRate: u.HourlyRate,
		Phone:      u.Phone,
		IsActive:   u.IsActive,
		SSOLinked:  u.WorkOSID != nil,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
