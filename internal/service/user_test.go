package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
	"devtrack.app/api/internal/store"
)

var _ = Describe("UserService", func() {
	var (
		ctx      context.Context
		users    *mockUserStore
		sessions *mockSessionStore
		notifier *recordingNotifier
		svc      service.UserService
		admin    *model.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		admin = &model.User{ID: 1, Name: "Root", Email: "root@example.com", Role: model.RoleAdmin, IsActive: true}
		users = &mockUserStore{
			getByIDFn: func(_ context.Context, id int64) (*model.User, error) {
				if id == admin.ID {
					cp := *admin
					return &cp, nil
				}
				return nil, store.ErrNotFound
			},
		}
		sessions = &mockSessionStore{}
		notifier = &recordingNotifier{}
		svc = service.NewUserService(users, sessions, notifier, "https://app.example.com")
	})

	Describe("Create", func() {
		It("creates the user with a generated ID and sends a welcome email", func() {
			var captured *model.User
			users.createFn = func(_ context.Context, u *model.User) error {
				captured = u
				return nil
			}

			user, err := svc.Create(ctx, service.CreateUserInput{
				Name:     "Dev One",
				Email:    "Dev@Example.com",
				Role:     model.RoleTeamLeader,
				Password: "long-enough",
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(user.ID).NotTo(BeZero())
			Expect(user.Email).To(Equal("dev@example.com"))
			Expect(user.IsActive).To(BeTrue())
			Expect(captured).To(Equal(user))

			Expect(notifier.sent).To(HaveLen(1))
			Expect(notifier.sent[0].Type).To(Equal(model.NotificationWelcome))
			Expect(notifier.sent[0].Data).To(HaveKeyWithValue("role", "team leader"))
			Expect(notifier.sent[0].Data).To(HaveKeyWithValue("login_url", "https://app.example.com/login"))
		})

		It("maps a duplicate email to ErrEmailTaken", func() {
			users.createFn = func(context.Context, *model.User) error {
				return errors.Join(store.ErrConflict, errors.New("users_email_key"))
			}
			_, err := svc.Create(ctx, service.CreateUserInput{Name: "x", Email: "x@example.com", Role: model.RoleClient, Password: "long-enough"})
			Expect(err).To(MatchError(service.ErrEmailTaken))
			Expect(notifier.sent).To(BeEmpty())
		})

		It("validates role and password", func() {
			_, err := svc.Create(ctx, service.CreateUserInput{Role: "owner", Password: "long-enough"})
			Expect(err).To(MatchError(service.ErrInvalidRole))
			_, err = svc.Create(ctx, service.CreateUserInput{Role: model.RoleClient, Password: "short"})
			Expect(err).To(MatchError(service.ErrWeakPassword))
		})
	})

	Describe("self protection", func() {
		It("prevents an admin from deleting themselves", func() {
			Expect(svc.Delete(ctx, admin, admin.ID)).To(MatchError(service.ErrCannotModifySelf))
		})

		It("prevents an admin from demoting themselves", func() {
			role := model.RoleDeveloper
			_, err := svc.Update(ctx, admin, admin.ID, service.UpdateUserInput{Role: &role})
			Expect(err).To(MatchError(service.ErrCannotModifySelf))
		})

		It("prevents an admin from deactivating themselves", func() {
			_, err := svc.Update(ctx, admin, admin.ID, service.UpdateUserInput{IsActive: ptr(false)})
			Expect(err).To(MatchError(service.ErrCannotModifySelf))
		})

		It("allows other self edits", func() {
			user, err := svc.Update(ctx, admin, admin.ID, service.UpdateUserInput{Name: ptr(" New Name ")})
			Expect(err).NotTo(HaveOccurred())
			Expect(user.Name).To(Equal("New Name"))
		})
	})

	It("drops sessions of deleted users", func() {
		Expect(svc.Delete(ctx, admin, 77)).To(Succeed())
		Expect(sessions.deletedForUser).To(ConsistOf(int64(77)))
	})
})
