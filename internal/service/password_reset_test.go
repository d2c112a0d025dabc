package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
	"devtrack.app/api/internal/store"
)

var _ = Describe("PasswordResetService", func() {
	var (
		ctx      context.Context
		users    *mockUserStore
		otps     *mockOTPStore
		sessions *mockSessionStore
		tx       *mockTxRunner
		notifier *recordingNotifier
		svc      service.PasswordResetService
		ana      *model.User
	)

	issue := func(code string, expiresIn time.Duration, attempts int) {
		h, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
		Expect(err).NotTo(HaveOccurred())
		otps.latest = &model.PasswordResetOTP{
			ID:        99,
			Email:     ana.Email,
			CodeHash:  string(h),
			Attempts:  attempts,
			ExpiresAt: time.Now().Add(expiresIn),
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		ana = &model.User{ID: 42, Name: "Ana", Email: "ana@example.com", Role: model.RoleClient, IsActive: true}
		users = &mockUserStore{
			getByEmailFn: func(_ context.Context, email string) (*model.User, error) {
				if email == ana.Email {
					return ana, nil
				}
				return nil, store.ErrNotFound
			},
		}
		otps = &mockOTPStore{}
		sessions = &mockSessionStore{}
		tx = &mockTxRunner{stores: &txStores{users: users, sessions: sessions, otps: otps}}
		notifier = &recordingNotifier{}
		svc = service.NewPasswordResetService(users, otps, tx, notifier, service.OTPConfig{
			TTL:         10 * time.Minute,
			MaxAttempts: 5,
		})
	})

	Describe("RequestOTP", func() {
		It("stores a hashed six digit code and enqueues it", func() {
			Expect(svc.RequestOTP(ctx, "ANA@example.com")).To(Succeed())

			Expect(otps.invalidated).To(ConsistOf("ana@example.com"))
			Expect(otps.created).To(HaveLen(1))
			Expect(otps.created[0].ExpiresAt).To(BeTemporally("~", time.Now().Add(10*time.Minute), time.Minute))

			Expect(notifier.sent).To(HaveLen(1))
			n := notifier.sent[0]
			Expect(n.Type).To(Equal(model.NotificationOTP))
			Expect(n.To).To(Equal(ana.Email))
			Expect(n.Data["code"]).To(MatchRegexp(`^\d{6}$`))
			Expect(n.Data["ttl_minutes"]).To(Equal("10"))
			Expect(bcrypt.CompareHashAndPassword([]byte(otps.created[0].CodeHash), []byte(n.Data["code"]))).To(Succeed())
		})

		It("answers the same for unknown emails without sending anything", func() {
			Expect(svc.RequestOTP(ctx, "nobody@example.com")).To(Succeed())
			Expect(otps.created).To(BeEmpty())
			Expect(notifier.sent).To(BeEmpty())
		})
	})

	Describe("VerifyOTP", func() {
		It("accepts the current code without consuming it", func() {
			issue("123456", 5*time.Minute, 0)
			Expect(svc.VerifyOTP(ctx, ana.Email, "123456")).To(Succeed())
			Expect(otps.latest.IsUsed()).To(BeFalse())
		})

		It("rejects an expired code", func() {
			issue("123456", -time.Minute, 0)
			Expect(svc.VerifyOTP(ctx, ana.Email, "123456")).To(MatchError(service.ErrOTPExpired))
		})

		It("counts a wrong code as an attempt", func() {
			issue("123456", 5*time.Minute, 0)
			Expect(svc.VerifyOTP(ctx, ana.Email, "000000")).To(MatchError(service.ErrOTPInvalid))
			Expect(otps.incremented).To(Equal(1))
		})

		It("locks out after the maximum attempts", func() {
			issue("123456", 5*time.Minute, 5)
			Expect(svc.VerifyOTP(ctx, ana.Email, "123456")).To(MatchError(service.ErrOTPAttemptsExceeded))
		})

		It("does not charge an attempt for the right code", func() {
			issue("123456", 5*time.Minute, 4)
			Expect(svc.VerifyOTP(ctx, ana.Email, "123456")).To(Succeed())
			Expect(otps.latest.Attempts).To(Equal(4))
			Expect(otps.incremented).To(BeZero())
		})

		It("enforces the limit recorded in the store over a stale read", func() {
			issue("123456", 5*time.Minute, 4)
			exhausted := 5
			otps.storedAttempts = &exhausted

			Expect(svc.VerifyOTP(ctx, ana.Email, "123456")).To(MatchError(service.ErrOTPAttemptsExceeded))
			Expect(svc.VerifyOTP(ctx, ana.Email, "000000")).To(MatchError(service.ErrOTPAttemptsExceeded))
			Expect(exhausted).To(Equal(5))
		})

		It("rejects when no code was issued", func() {
			Expect(svc.VerifyOTP(ctx, ana.Email, "123456")).To(MatchError(service.ErrOTPInvalid))
		})
	})

	Describe("ResetPassword", func() {
		It("consumes the code, sets the password and drops sessions", func() {
			issue("123456", 5*time.Minute, 0)
			var newHash string
			users.updatePasswordFn = func(_ context.Context, _ int64, hash string) error {
				newHash = hash
				return nil
			}

			Expect(svc.ResetPassword(ctx, ana.Email, "123456", "new-password")).To(Succeed())

			Expect(tx.calls).To(Equal(1))
			Expect(otps.used).To(ConsistOf(int64(99)))
			Expect(bcrypt.CompareHashAndPassword([]byte(newHash), []byte("new-password"))).To(Succeed())
			Expect(sessions.deletedForUser).To(ConsistOf(ana.ID))
		})

		It("cannot reuse a consumed code", func() {
			issue("123456", 5*time.Minute, 0)
			Expect(svc.ResetPassword(ctx, ana.Email, "123456", "new-password")).To(Succeed())
			Expect(svc.ResetPassword(ctx, ana.Email, "123456", "another-password")).To(MatchError(service.ErrOTPInvalid))
		})

		It("rejects an expired code", func() {
			issue("123456", -time.Second, 0)
			Expect(svc.ResetPassword(ctx, ana.Email, "123456", "new-password")).To(MatchError(service.ErrOTPExpired))
			Expect(tx.calls).To(BeZero())
		})

		It("validates the new password before touching the code", func() {
			issue("123456", 5*time.Minute, 0)
			Expect(svc.ResetPassword(ctx, ana.Email, "123456", "short")).To(MatchError(service.ErrWeakPassword))
			Expect(otps.latest.IsUsed()).To(BeFalse())
		})
	})
})
