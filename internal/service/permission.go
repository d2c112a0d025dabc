package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devtrack.app/api/common/id"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

type PermissionService interface {
	Catalog(ctx context.Context) ([]model.Permission, error)
	Grant(ctx context.Context, actor *model.User, userID int64, key string) (*model.UserPermission, error)
	Revoke(ctx context.Context, actor *model.User, userID int64, key string) error
	ListForUser(ctx context.Context, userID int64) ([]model.UserPermission, error)
	HasPermission(ctx context.Context, user *model.User, key string) (bool, error)
}

type permissionService struct {
	permStore store.PermissionStore
	userStore store.UserStore
	notifier  Notifier
	now       func() time.Time
}

func NewPermissionService(permStore store.PermissionStore, userStore store.UserStore, notifier Notifier) PermissionService {
	return &permissionService{
		permStore: permStore,
		userStore: userStore,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *permissionService) Catalog(ctx context.Context) ([]model.Permission, error) {
	perms, err := s.permStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing permissions: %w", err)
	}
	return perms, nil
}

func (s *permissionService) Grant(ctx context.Context, actor *model.User, userID int64, key string) (*model.UserPermission, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() {
		return nil, ErrAdminImplicit
	}

	perm, err := s.permission(ctx, key)
	if err != nil {
		return nil, err
	}

	_, err = s.permStore.GetActiveGrant(ctx, user.ID, perm.ID)
	switch {
	case err == nil:
		return nil, ErrAlreadyGranted
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("checking grant: %w", err)
	}

	grant := &model.UserPermission{
		ID:           id.New(),
		UserID:       user.ID,
		PermissionID: perm.ID,
		Key:          perm.Key,
		GrantedBy:    &actor.ID,
		GrantedAt:    s.now(),
	}
	if err := s.permStore.CreateGrant(ctx, grant); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAlreadyGranted
		}
		slog.ErrorContext(ctx, "failed to create grant", "error", err, "user_id", user.ID, "permission", key)
		return nil, fmt.Errorf("creating grant: %w", err)
	}

	s.notifier.Notify(ctx, model.Notification{
		Type: model.NotificationPermissionGranted,
		To:   user.Email,
		Name: user.Name,
		Data: map[string]string{
			"permission":  perm.Key,
			"description": perm.Description,
		},
	})

	slog.InfoContext(ctx, "permission granted",
		"user_id", user.ID,
		"permission", perm.Key,
		"by", actor.ID,
	)
	return grant, nil
}

func (s *permissionService) Revoke(ctx context.Context, actor *model.User, userID int64, key string) error {
	perm, err := s.permission(ctx, key)
	if err != nil {
		return err
	}

	grant, err := s.permStore.GetActiveGrant(ctx, userID, perm.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotGranted
		}
		return fmt.Errorf("getting grant: %w", err)
	}

	if err := s.permStore.RevokeGrant(ctx, grant.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotGranted
		}
		return fmt.Errorf("revoking grant: %w", err)
	}

	slog.InfoContext(ctx, "permission revoked",
		"user_id", userID,
		"permission", perm.Key,
		"by", actor.ID,
	)
	return nil
}

func (s *permissionService) ListForUser(ctx context.Context, userID int64) ([]model.UserPermission, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}
	grants, err := s.permStore.ListActiveForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing grants: %w", err)
	}
	return grants, nil
}

func (s *permissionService) HasPermission(ctx context.Context, user *model.User, key string) (bool, error) {
	if user.IsAdmin() {
		return true, nil
	}
	ok, err := s.permStore.HasActive(ctx, user.ID, key)
	if err != nil {
		return false, fmt.Errorf("checking permission: %w", err)
	}
	return ok, nil
}

func (s *permissionService) user(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

func (s *permissionService) permission(ctx context.Context, key string) (*model.Permission, error) {
	perm, err := s.permStore.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, fmt.Errorf("getting permission: %w", err)
	}
	return perm, nil
}
