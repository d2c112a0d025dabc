package service_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
	"devtrack.app/api/internal/store"
)

var _ = Describe("TaskService", func() {
	var (
		ctx      context.Context
		projects *mockProjectStore
		sprints  *mockSprintStore
		tasks    *mockTaskStore
		notifier *recordingNotifier
		svc      service.TaskService
		leader   *model.User
		dev      *model.User
		outsider *model.User
	)

	const projectID = int64(10)

	BeforeEach(func() {
		ctx = context.Background()
		leader = &model.User{ID: 5, Name: "Lea", Email: "lea@example.com", Role: model.RoleTeamLeader, IsActive: true}
		dev = &model.User{ID: 6, Name: "Dev", Email: "dev@example.com", Role: model.RoleDeveloper, IsActive: true}
		outsider = &model.User{ID: 7, Name: "Out", Email: "out@example.com", Role: model.RoleDeveloper, IsActive: true}
		byID := map[int64]*model.User{leader.ID: leader, dev.ID: dev, outsider.ID: outsider}

		projects = newMockProjectStore()
		projects.projects[projectID] = &model.Project{ID: projectID, Name: "Portal", TeamLeaderID: &leader.ID}
		projects.members[projectID] = []int64{dev.ID}
		projects.projects[11] = &model.Project{ID: 11, Name: "Other"}

		sprints = newMockSprintStore()
		sprints.sprints[100] = &model.Sprint{ID: 100, ProjectID: 11, Status: model.SprintStatusPlanned}

		tasks = newMockTaskStore()
		notifier = &recordingNotifier{}
		users := &mockUserStore{
			getByIDFn: func(_ context.Context, id int64) (*model.User, error) {
				if u, ok := byID[id]; ok {
					return u, nil
				}
				return nil, store.ErrNotFound
			},
		}
		svc = service.NewTaskService(tasks, sprints, projects, users, newFakePermissionStore(), notifier, "https://app.example.com/")
	})

	Describe("Create", func() {
		It("notifies the assignee", func() {
			task, err := svc.Create(ctx, leader, projectID, service.TaskInput{Title: "Login page", AssigneeID: &dev.ID})
			Expect(err).NotTo(HaveOccurred())
			Expect(task.Status).To(Equal(model.TaskStatusTodo))
			Expect(task.Priority).To(Equal(model.TaskPriorityMedium))
			Expect(task.CreatedBy).To(Equal(leader.ID))

			Expect(notifier.sent).To(HaveLen(1))
			n := notifier.sent[0]
			Expect(n.Type).To(Equal(model.NotificationTaskAssigned))
			Expect(n.To).To(Equal(dev.Email))
			Expect(n.Data).To(HaveKeyWithValue("project", "Portal"))
			Expect(n.Data["url"]).To(HavePrefix("https://app.example.com/projects/10/tasks/"))
		})

		It("requires the assignee to be a project member", func() {
			_, err := svc.Create(ctx, leader, projectID, service.TaskInput{Title: "x", AssigneeID: &outsider.ID})
			Expect(err).To(MatchError(service.ErrAssigneeNotMember))
		})

		It("requires the sprint to belong to the project", func() {
			_, err := svc.Create(ctx, leader, projectID, service.TaskInput{Title: "x", SprintID: ptr(int64(100))})
			Expect(err).To(MatchError(service.ErrSprintMismatch))
		})

		It("forbids plain members", func() {
			_, err := svc.Create(ctx, dev, projectID, service.TaskInput{Title: "x"})
			Expect(err).To(MatchError(service.ErrForbidden))
		})

		It("rejects unknown priorities", func() {
			_, err := svc.Create(ctx, leader, projectID, service.TaskInput{Title: "x", Priority: "whenever"})
			Expect(err).To(MatchError(service.ErrInvalidPriority))
		})
	})

	Describe("UpdateStatus", func() {
		BeforeEach(func() {
			tasks.tasks[1] = &model.Task{ID: 1, ProjectID: projectID, AssigneeID: &dev.ID, Status: model.TaskStatusInProgress}
		})

		It("stamps completed_at on done and clears it when reopened", func() {
			task, err := svc.UpdateStatus(ctx, dev, 1, model.TaskStatusDone)
			Expect(err).NotTo(HaveOccurred())
			Expect(task.CompletedAt).NotTo(BeNil())

			task, err = svc.UpdateStatus(ctx, dev, 1, model.TaskStatusReview)
			Expect(err).NotTo(HaveOccurred())
			Expect(task.CompletedAt).To(BeNil())
			Expect(tasks.tasks[1].CompletedAt).To(BeNil())
		})

		It("keeps the original completion time when already done", func() {
			first, err := svc.UpdateStatus(ctx, dev, 1, model.TaskStatusDone)
			Expect(err).NotTo(HaveOccurred())
			again, err := svc.UpdateStatus(ctx, leader, 1, model.TaskStatusDone)
			Expect(err).NotTo(HaveOccurred())
			Expect(*again.CompletedAt).To(Equal(*first.CompletedAt))
		})

		It("forbids members who are not the assignee", func() {
			_, err := svc.UpdateStatus(ctx, outsider, 1, model.TaskStatusDone)
			Expect(err).To(MatchError(service.ErrForbidden))
		})

		It("rejects unknown statuses", func() {
			_, err := svc.UpdateStatus(ctx, dev, 1, "blocked")
			Expect(err).To(MatchError(service.ErrInvalidStatus))
		})

		It("reports unknown tasks", func() {
			_, err := svc.UpdateStatus(ctx, dev, 404, model.TaskStatusDone)
			Expect(err).To(MatchError(service.ErrTaskNotFound))
		})
	})
})
