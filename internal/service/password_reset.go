package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"

	"devtrack.app/api/common/id"
	"devtrack.app/api/common/logger"
	"devtrack.app/api/internal/metrics"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

type PasswordResetService interface {
	RequestOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type OTPConfig struct {
	TTL         time.Duration
	MaxAttempts int
}

type passwordResetService struct {
	userStore store.UserStore
	otpStore  store.OTPStore
	txRunner  TxRunner
	notifier  Notifier
	cfg       OTPConfig
	now       func() time.Time
	generate  func() (string, error)
}

func NewPasswordResetService(
	userStore store.UserStore,
	otpStore store.OTPStore,
	txRunner TxRunner,
	notifier Notifier,
	cfg OTPConfig,
) PasswordResetService {
	return &passwordResetService{
		userStore: userStore,
		otpStore:  otpStore,
		txRunner:  txRunner,
		notifier:  notifier,
		cfg:       cfg,
		now:       time.Now,
		generate:  generateCode,
	}
}

// RequestOTP returns nil for unknown and inactive emails so the response
// does not reveal which addresses have accounts.
func (s *passwordResetService) RequestOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	metrics.ObserveOTPRequest()

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.InfoContext(ctx, "otp requested for unknown email", "email", logger.MaskEmail(email))
			return nil
		}
		return fmt.Errorf("getting user: %w", err)
	}
	if !user.IsActive {
		slog.InfoContext(ctx, "otp requested for inactive user", "user_id", user.ID)
		return nil
	}

	if err := s.otpStore.InvalidateForEmail(ctx, email); err != nil {
		return fmt.Errorf("invalidating previous codes: %w", err)
	}

	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing code: %w", err)
	}

	now := s.now()
	otp := &model.PasswordResetOTP{
		ID:        id.New(),
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: now.Add(s.cfg.TTL),
		CreatedAt: now,
	}
	if err := s.otpStore.Create(ctx, otp); err != nil {
		slog.ErrorContext(ctx, "failed to store otp", "error", err, "user_id", user.ID)
		return fmt.Errorf("storing code: %w", err)
	}

	s.notifier.Notify(ctx, model.Notification{
		Type: model.NotificationOTP,
		To:   user.Email,
		Name: user.Name,
		Data: map[string]string{
			"code":        code,
			"ttl_minutes": strconv.Itoa(int(s.cfg.TTL / time.Minute)),
		},
	})

	slog.InfoContext(ctx, "otp issued", "user_id", user.ID, "otp_id", otp.ID)
	return nil
}

func (s *passwordResetService) VerifyOTP(ctx context.Context, email, code string) error {
	_, err := s.verify(ctx, normalizeEmail(email), code)
	return err
}

func (s *passwordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}

	otp, err := s.verify(ctx, email, code)
	if err != nil {
		return err
	}

	var userID int64
	err = s.txRunner.WithTx(ctx, func(stores StoreProvider) error {
		if err := stores.OTPs().MarkUsed(ctx, otp.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrOTPInvalid
			}
			return fmt.Errorf("marking code used: %w", err)
		}

		user, err := stores.Users().GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("getting user: %w", err)
		}
		userID = user.ID

		if err := stores.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
			return fmt.Errorf("updating password: %w", err)
		}
		if err := stores.Sessions().DeleteByUser(ctx, user.ID); err != nil {
			return fmt.Errorf("deleting sessions: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "password reset", "user_id", userID)
	return nil
}

// verify checks code against the latest unused OTP for email. A wrong code
// counts against the attempt limit; a matching one does not.
func (s *passwordResetService) verify(ctx context.Context, email, code string) (*model.PasswordResetOTP, error) {
	otp, err := s.otpStore.GetLatestUnused(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.ObserveOTPFailure("missing")
			return nil, ErrOTPInvalid
		}
		return nil, fmt.Errorf("getting code: %w", err)
	}

	if otp.IsExpired(s.now()) {
		metrics.ObserveOTPFailure("expired")
		return nil, ErrOTPExpired
	}
	if otp.Attempts >= s.cfg.MaxAttempts {
		metrics.ObserveOTPFailure("attempts")
		return nil, ErrOTPAttemptsExceeded
	}

	if err := s.otpStore.ClaimAttempt(ctx, otp.ID, s.cfg.MaxAttempts); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.ObserveOTPFailure("attempts")
			return nil, ErrOTPAttemptsExceeded
		}
		return nil, fmt.Errorf("counting attempt: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(otp.CodeHash), []byte(code)) != nil {
		metrics.ObserveOTPFailure("mismatch")
		return nil, ErrOTPInvalid
	}

	if err := s.otpStore.ReleaseAttempt(ctx, otp.ID); err != nil {
		slog.ErrorContext(ctx, "failed to release otp attempt", "error", err, "otp_id", otp.ID)
	}
	return otp, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
