package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
	"devtrack.app/api/internal/store"
)

var _ = Describe("ProjectService", func() {
	var (
		ctx      context.Context
		projects *mockProjectStore
		svc      service.ProjectService
		byID     map[int64]*model.User
		start    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		byID = map[int64]*model.User{
			5: {ID: 5, Role: model.RoleTeamLeader, IsActive: true},
			6: {ID: 6, Role: model.RoleDeveloper, IsActive: true},
			8: {ID: 8, Role: model.RoleClient, IsActive: true},
		}
		projects = newMockProjectStore()
		users := &mockUserStore{
			getByIDFn: func(_ context.Context, id int64) (*model.User, error) {
				if u, ok := byID[id]; ok {
					return u, nil
				}
				return nil, store.ErrNotFound
			},
		}
		svc = service.NewProjectService(projects, users, newFakePermissionStore())
	})

	Describe("Create", func() {
		It("slugs the name and defaults to planning", func() {
			p, err := svc.Create(ctx, service.ProjectInput{Name: "Acme Mobile App", StartDate: start})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Slug).To(Equal("acme-mobile-app"))
			Expect(p.Status).To(Equal(model.ProjectStatusPlanning))
		})

		It("adds a numeric suffix on collision", func() {
			projects.slugsTaken["acme"] = true
			projects.slugsTaken["acme-2"] = true
			p, err := svc.Create(ctx, service.ProjectInput{Name: "Acme", StartDate: start})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Slug).To(Equal("acme-3"))
		})

		It("rejects an end date before the start date", func() {
			end := start.AddDate(0, 0, -1)
			_, err := svc.Create(ctx, service.ProjectInput{Name: "Acme", StartDate: start, EndDate: &end})
			Expect(err).To(MatchError(service.ErrInvalidDateRange))
		})

		It("requires the client to have the client role", func() {
			_, err := svc.Create(ctx, service.ProjectInput{Name: "Acme", StartDate: start, ClientID: ptr(int64(6))})
			Expect(err).To(MatchError(service.ErrInvalidClient))
		})

		It("requires the team leader to have the team leader role", func() {
			_, err := svc.Create(ctx, service.ProjectInput{Name: "Acme", StartDate: start, TeamLeaderID: ptr(int64(8))})
			Expect(err).To(MatchError(service.ErrInvalidTeamLeader))
		})
	})

	Describe("AddMember", func() {
		BeforeEach(func() {
			projects.projects[10] = &model.Project{ID: 10}
		})

		It("accepts staff once", func() {
			Expect(svc.AddMember(ctx, 10, 6)).To(Succeed())
			Expect(svc.AddMember(ctx, 10, 6)).To(MatchError(service.ErrAlreadyMember))
		})

		It("rejects clients", func() {
			Expect(svc.AddMember(ctx, 10, 8)).To(MatchError(service.ErrInvalidMember))
		})

		It("reports unknown projects", func() {
			Expect(svc.AddMember(ctx, 404, 6)).To(MatchError(service.ErrProjectNotFound))
		})
	})

	Describe("Get", func() {
		It("hides other clients' projects", func() {
			owner := int64(8)
			projects.projects[10] = &model.Project{ID: 10, ClientID: &owner}
			_, err := svc.Get(ctx, &model.User{ID: 9, Role: model.RoleClient}, 10)
			Expect(err).To(MatchError(service.ErrForbidden))
		})
	})
})
