package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
	"devtrack.app/api/internal/store"
)

type dashboardProjects struct {
	store.ProjectStore
	byStatus  map[model.ProjectStatus]int
	owned     []model.Project
	clientArg int64
}

func (d *dashboardProjects) CountByStatus(context.Context) (map[model.ProjectStatus]int, error) {
	return d.byStatus, nil
}

func (d *dashboardProjects) ListForClient(_ context.Context, clientID int64) ([]model.Project, error) {
	d.clientArg = clientID
	return d.owned, nil
}

type dashboardSprints struct {
	store.SprintStore
	active int
}

func (d *dashboardSprints) CountActive(context.Context) (int, error) {
	return d.active, nil
}

type dashboardTasks struct {
	store.TaskStore
	open    int
	userArg int64
}

func (d *dashboardTasks) CountOpenAssigned(_ context.Context, userID int64) (int, error) {
	d.userArg = userID
	return d.open, nil
}

type dashboardBugs struct {
	store.BugStore
	total     int
	byProject map[int64]int
	err       error
}

func (d *dashboardBugs) CountOpen(_ context.Context, projectID *int64) (int, error) {
	if d.err != nil {
		return 0, d.err
	}
	if projectID == nil {
		return d.total, nil
	}
	return d.byProject[*projectID], nil
}

type dashboardSuggestions struct {
	store.SuggestionStore
	pending   int
	statusArg model.SuggestionStatus
}

func (d *dashboardSuggestions) CountByStatus(_ context.Context, status model.SuggestionStatus) (int, error) {
	d.statusArg = status
	return d.pending, nil
}

var _ = Describe("DashboardService", func() {
	var (
		ctx         context.Context
		projects    *dashboardProjects
		sprints     *dashboardSprints
		tasks       *dashboardTasks
		bugs        *dashboardBugs
		suggestions *dashboardSuggestions
		activity    *mockActivityStore
		svc         service.DashboardService
	)

	BeforeEach(func() {
		ctx = context.Background()
		projects = &dashboardProjects{}
		sprints = &dashboardSprints{}
		tasks = &dashboardTasks{}
		bugs = &dashboardBugs{byProject: map[int64]int{}}
		suggestions = &dashboardSuggestions{}
		activity = &mockActivityStore{}
		svc = service.NewDashboardService(projects, sprints, tasks, bugs, suggestions, activity)
	})

	It("gives admins the global counters", func() {
		projects.byStatus = map[model.ProjectStatus]int{
			model.ProjectStatusActive:   3,
			model.ProjectStatusPlanning: 1,
		}
		bugs.total = 7
		suggestions.pending = 2
		sprints.active = 4

		d, err := svc.Get(ctx, &model.User{ID: 1, Role: model.RoleAdmin})
		Expect(err).NotTo(HaveOccurred())

		Expect(d.Role).To(Equal(model.RoleAdmin))
		Expect(d.ProjectsByStatus).To(HaveKeyWithValue(model.ProjectStatusActive, 3))
		Expect(*d.OpenBugs).To(Equal(7))
		Expect(*d.PendingSuggestions).To(Equal(2))
		Expect(*d.ActiveSprints).To(Equal(4))
		Expect(suggestions.statusArg).To(Equal(model.SuggestionStatusPending))
		Expect(d.OpenAssignedTasks).To(BeNil())
		Expect(d.ClientProjects).To(BeNil())
	})

	It("gives developers their open tasks and last week's hours", func() {
		tasks.open = 5

		d, err := svc.Get(ctx, &model.User{ID: 9, Role: model.RoleDeveloper})
		Expect(err).NotTo(HaveOccurred())

		Expect(*d.OpenAssignedTasks).To(Equal(5))
		Expect(d.HoursLast7Days.String()).To(Equal("12.5"))
		Expect(tasks.userArg).To(Equal(int64(9)))

		Expect(activity.lastFilter).NotTo(BeNil())
		Expect(*activity.lastFilter.UserID).To(Equal(int64(9)))
		Expect(activity.lastFilter.To.Sub(activity.lastFilter.From)).To(Equal(7 * 24 * time.Hour))
		Expect(d.OpenBugs).To(BeNil())
	})

	It("gives clients their projects with open bug counts", func() {
		projects.owned = []model.Project{
			{ID: 10, Name: "Portal", Status: model.ProjectStatusActive},
			{ID: 11, Name: "Shop", Status: model.ProjectStatusOnHold},
		}
		bugs.byProject[10] = 3

		d, err := svc.Get(ctx, &model.User{ID: 4, Role: model.RoleClient})
		Expect(err).NotTo(HaveOccurred())

		Expect(projects.clientArg).To(Equal(int64(4)))
		Expect(d.ClientProjects).To(Equal([]model.ClientProjectSummary{
			{ProjectID: 10, Name: "Portal", Status: model.ProjectStatusActive, OpenBugs: 3},
			{ProjectID: 11, Name: "Shop", Status: model.ProjectStatusOnHold, OpenBugs: 0},
		}))
	})

	It("wraps store failures", func() {
		bugs.err = errors.New("connection reset")

		_, err := svc.Get(ctx, &model.User{ID: 1, Role: model.RoleAdmin})
		Expect(err).To(MatchError(ContainSubstring("counting open bugs")))
	})
})
