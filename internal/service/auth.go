package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/workos/workos-go/v6/pkg/usermanagement"

	"devtrack.app/api/common/id"
	"devtrack.app/api/common/logger"
	"devtrack.app/api/core/config"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	Logout(ctx context.Context, sessionID int64) error
	ValidateSession(ctx context.Context, sessionID int64) (*model.User, error)
	ChangePassword(ctx context.Context, user *model.User, current, next string) error

	SSOEnabled() bool
	GetAuthorizationURL(state string) (string, error)
	HandleCallback(ctx context.Context, code string) (*model.User, *model.Session, error)
}

// SSOIdentity is the subset of the identity provider's user we rely on.
type SSOIdentity struct {
	ID    string
	Email string
}

// SSOProvider is the WorkOS AuthKit surface used by AuthService.
type SSOProvider interface {
	AuthorizationURL(state string) (string, error)
	Authenticate(ctx context.Context, code string) (*SSOIdentity, error)
}

type workosProvider struct {
	cfg config.WorkOSConfig
}

// NewWorkOSProvider returns nil when WorkOS is not configured.
func NewWorkOSProvider(cfg config.WorkOSConfig) SSOProvider {
	if !cfg.Enabled() {
		return nil
	}
	usermanagement.SetAPIKey(cfg.APIKey)
	return &workosProvider{cfg: cfg}
}

func (p *workosProvider) AuthorizationURL(state string) (string, error) {
	url, err := usermanagement.GetAuthorizationURL(usermanagement.GetAuthorizationURLOpts{
		ClientID:    p.cfg.ClientID,
		RedirectURI: p.cfg.RedirectURI,
		State:       state,
		Provider:    "authkit",
	})
	if err != nil {
		return "", fmt.Errorf("generating authorization URL: %w", err)
	}
	return url.String(), nil
}

func (p *workosProvider) Authenticate(ctx context.Context, code string) (*SSOIdentity, error) {
	resp, err := usermanagement.AuthenticateWithCode(ctx, usermanagement.AuthenticateWithCodeOpts{
		ClientID: p.cfg.ClientID,
		Code:     code,
	})
	if err != nil {
		return nil, err
	}
	return &SSOIdentity{ID: resp.User.ID, Email: resp.User.Email}, nil
}

type authService struct {
	userStore    store.UserStore
	sessionStore store.SessionStore
	sso          SSOProvider
	sessionTTL   time.Duration
	now          func() time.Time
}

func NewAuthService(
	userStore store.UserStore,
	sessionStore store.SessionStore,
	sso SSOProvider,
	sessionTTL time.Duration,
) AuthService {
	return &authService{
		userStore:    userStore,
		sessionStore: sessionStore,
		sso:          sso,
		sessionTTL:   sessionTTL,
		now:          time.Now,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	email = normalizeEmail(email)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "login rejected, unknown email", "email", logger.MaskEmail(email))
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("getting user: %w", err)
	}

	if !user.IsActive || !checkPassword(user.PasswordHash, password) {
		slog.InfoContext(ctx, "login rejected", "user_id", user.ID, "active", user.IsActive)
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *authService) Logout(ctx context.Context, sessionID int64) error {
	if err := s.sessionStore.Delete(ctx, sessionID); err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *authService) ValidateSession(ctx context.Context, sessionID int64) (*model.User, error) {
	session, err := s.sessionStore.GetValid(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	user, err := s.userStore.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrSessionExpired
	}

	return user, nil
}

func (s *authService) ChangePassword(ctx context.Context, user *model.User, current, next string) error {
	if !checkPassword(user.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	if err := s.userStore.UpdatePassword(ctx, user.ID, hash); err != nil {
		slog.ErrorContext(ctx, "failed to update password", "error", err, "user_id", user.ID)
		return fmt.Errorf("updating password: %w", err)
	}

	slog.InfoContext(ctx, "password changed", "user_id", user.ID)
	return nil
}

func (s *authService) SSOEnabled() bool {
	return s.sso != nil
}

func (s *authService) GetAuthorizationURL(state string) (string, error) {
	if s.sso == nil {
		return "", ErrSSODisabled
	}
	return s.sso.AuthorizationURL(state)
}

// HandleCallback only signs in users an admin already created; the WorkOS
// identity is linked on first use.
func (s *authService) HandleCallback(ctx context.Context, code string) (*model.User, *model.Session, error) {
	if s.sso == nil {
		return nil, nil, ErrSSODisabled
	}

	identity, err := s.sso.Authenticate(ctx, code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to authenticate with code", "error", err)
		return nil, nil, ErrInvalidCode
	}

	user, err := s.userStore.GetByWorkOSID(ctx, identity.ID)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.userStore.GetByEmail(ctx, normalizeEmail(identity.Email))
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "sso login for unknown email", "email", logger.MaskEmail(identity.Email))
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("getting user: %w", err)
	}
	if !user.IsActive {
		return nil, nil, ErrInvalidCredentials
	}

	if user.WorkOSID == nil {
		if err := s.userStore.LinkWorkOS(ctx, user.ID, identity.ID); err != nil {
			slog.ErrorContext(ctx, "failed to link workos identity",
				"error", err,
				"user_id", user.ID,
				"workos_id", identity.ID,
			)
			return nil, nil, fmt.Errorf("linking workos identity: %w", err)
		}
		user.WorkOSID = &identity.ID
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, session, nil
}

func (s *authService) startSession(ctx context.Context, user *model.User) (*model.Session, error) {
	now := s.now()
	session := &model.Session{
		ID:        id.New(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}

	if err := s.sessionStore.Create(ctx, session); err != nil {
		slog.ErrorContext(ctx, "failed to create session",
			"error", err,
			"user_id", user.ID,
		)
		return nil, fmt.Errorf("creating session: %w", err)
	}

	slog.InfoContext(ctx, "user authenticated",
		"user_id", user.ID,
		"session_id", session.ID,
	)
	return session, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
