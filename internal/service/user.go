package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"devtrack.app/api/common/id"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

type CreateUserInput struct {
	Name       string
	Email      string
	Role       model.Role
	Password   string
	HourlyRate *decimal.Decimal
	Phone      *string
}

// UpdateUserInput applies only the non-nil fields.
type UpdateUserInput struct {
	Name       *string
	Role       *model.Role
	HourlyRate *decimal.Decimal
	Phone      *string
	IsActive   *bool
}

type UserService interface {
	Create(ctx context.Context, in CreateUserInput) (*model.User, error)
	List(ctx context.Context, filter model.UserFilter) ([]model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Update(ctx context.Context, actor *model.User, id int64, in UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, actor *model.User, id int64) error
}

type userService struct {
	userStore    store.UserStore
	sessionStore store.SessionStore
	notifier     Notifier
	dashboardURL string
}

func NewUserService(
	userStore store.UserStore,
	sessionStore store.SessionStore,
	notifier Notifier,
	dashboardURL string,
) UserService {
	return &userService{
		userStore:    userStore,
		sessionStore: sessionStore,
		notifier:     notifier,
		dashboardURL: dashboardURL,
	}
}

func (s *userService) Create(ctx context.Context, in CreateUserInput) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           id.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: &hash,
		Role:         in.Role,
		HourlyRate:   in.HourlyRate,
		Phone:        in.Phone,
		IsActive:     true,
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		slog.ErrorContext(ctx, "failed to create user", "error", err, "role", in.Role)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	s.notifier.Notify(ctx, model.Notification{
		Type: model.NotificationWelcome,
		To:   user.Email,
		Name: user.Name,
		Data: map[string]string{
			"role":      strings.ReplaceAll(string(user.Role), "_", " "),
			"login_url": strings.TrimRight(s.dashboardURL, "/") + "/login",
		},
	})

	slog.InfoContext(ctx, "user created", "user_id", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) List(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, ErrInvalidRole
	}
	users, err := s.userStore.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

func (s *userService) Update(ctx context.Context, actor *model.User, id int64, in UpdateUserInput) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Role != nil && !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if actor.ID == user.ID {
		if in.Role != nil && *in.Role != model.RoleAdmin {
			return nil, ErrCannotModifySelf
		}
		if in.IsActive != nil && !*in.IsActive {
			return nil, ErrCannotModifySelf
		}
	}

	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.HourlyRate != nil {
		user.HourlyRate = in.HourlyRate
	}
	if in.Phone != nil {
		user.Phone = in.Phone
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}

	if err := s.userStore.Update(ctx, user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}

	if !user.IsActive {
		if err := s.sessionStore.DeleteByUser(ctx, user.ID); err != nil {
			slog.ErrorContext(ctx, "failed to drop sessions of deactivated user", "error", err, "user_id", user.ID)
		}
	}

	slog.InfoContext(ctx, "user updated", "user_id", user.ID, "by", actor.ID)
	return user, nil
}

func (s *userService) Delete(ctx context.Context, actor *model.User, id int64) error {
	if actor.ID == id {
		return ErrCannotModifySelf
	}
	if err := s.userStore.Delete(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("deleting user: %w", err)
	}
	if err := s.sessionStore.DeleteByUser(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to drop sessions of deleted user", "error", err, "user_id", id)
	}

	slog.InfoContext(ctx, "user deleted", "user_id", id, "by", actor.ID)
	return nil
}
