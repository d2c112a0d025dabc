package service_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
)

var _ = Describe("ActivityService", func() {
	var (
		ctx        context.Context
		activities *mockActivityStore
		perms      *fakePermissionStore
		svc        service.ActivityService
		admin      *model.User
		dev        *model.User
		client     *model.User
		march      service.RangeQuery
	)

	const projectID = int64(10)

	BeforeEach(func() {
		ctx = context.Background()
		admin = &model.User{ID: 1, Role: model.RoleAdmin}
		dev = &model.User{ID: 6, Role: model.RoleDeveloper}
		client = &model.User{ID: 8, Role: model.RoleClient}

		projects := newMockProjectStore()
		projects.projects[projectID] = &model.Project{ID: projectID}
		projects.members[projectID] = []int64{dev.ID}
		activities = &mockActivityStore{
			totals: []model.ActivityTotal{
				{UserID: 6, ProjectID: projectID, Hours: decimal.RequireFromString("3.5"), Entries: 2},
				{UserID: 7, ProjectID: projectID, Hours: decimal.RequireFromString("1.25"), Entries: 1},
			},
		}
		perms = newFakePermissionStore()
		svc = service.NewActivityService(activities, newMockTaskStore(), projects, perms)

		march = service.RangeQuery{
			From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		}
	})

	Describe("Log", func() {
		It("derives hours rounded to two places", func() {
			start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
			entry, err := svc.Log(ctx, dev, service.ActivityInput{
				ProjectID: projectID,
				StartedAt: start,
				EndedAt:   start.Add(100 * time.Minute),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(entry.Hours.String()).To(Equal("1.67"))
			Expect(entry.UserID).To(Equal(dev.ID))
		})

		DescribeTable("rejects bad durations",
			func(d time.Duration) {
				start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
				_, err := svc.Log(ctx, dev, service.ActivityInput{ProjectID: projectID, StartedAt: start, EndedAt: start.Add(d)})
				Expect(err).To(MatchError(service.ErrInvalidDuration))
			},
			Entry("zero", time.Duration(0)),
			Entry("negative", -time.Hour),
			Entry("over a day", 25*time.Hour),
		)

		It("requires project membership", func() {
			start := time.Now()
			_, err := svc.Log(ctx, &model.User{ID: 99, Role: model.RoleDeveloper}, service.ActivityInput{
				ProjectID: projectID, StartedAt: start, EndedAt: start.Add(time.Hour),
			})
			Expect(err).To(MatchError(service.ErrNotMember))
		})
	})

	Describe("Summary", func() {
		It("rejects an end date before the start date", func() {
			_, err := svc.Summary(ctx, admin, service.RangeQuery{From: march.To, To: march.From})
			Expect(err).To(MatchError(service.ErrInvalidDateRange))
			Expect(activities.totalCalls).To(BeZero())
		})

		It("treats the end date as inclusive", func() {
			summary, err := svc.Summary(ctx, admin, march)
			Expect(err).NotTo(HaveOccurred())
			Expect(activities.lastFilter.From).To(Equal(march.From))
			Expect(activities.lastFilter.To).To(Equal(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)))
			Expect(summary.To).To(Equal(march.To))
			Expect(summary.TotalHours.String()).To(Equal("4.75"))
		})

		It("accepts a single day", func() {
			_, err := svc.Summary(ctx, admin, service.RangeQuery{From: march.From, To: march.From})
			Expect(err).NotTo(HaveOccurred())
		})

		It("pins developers to their own entries", func() {
			_, err := svc.Summary(ctx, dev, service.RangeQuery{From: march.From, To: march.To, UserID: ptr(int64(7))})
			Expect(err).NotTo(HaveOccurred())
			Expect(*activities.lastFilter.UserID).To(Equal(dev.ID))
		})

		It("lets report holders see everyone", func() {
			perms.grants = append(perms.grants, &model.UserPermission{ID: 1, UserID: dev.ID, PermissionID: 1, Key: model.PermReportsGenerate})
			_, err := svc.Summary(ctx, dev, march)
			Expect(err).NotTo(HaveOccurred())
			Expect(activities.lastFilter.UserID).To(BeNil())
		})

		It("forbids clients", func() {
			_, err := svc.Summary(ctx, client, march)
			Expect(err).To(MatchError(service.ErrForbidden))
		})
	})
})
