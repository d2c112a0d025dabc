package service_test

import (
	"context"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/report"
	"devtrack.app/api/internal/service"
)

type fakeArchive struct {
	keys []string
	err  error
}

func (f *fakeArchive) Put(_ context.Context, kind, ext, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := "reports/" + kind + "/2024/03/abc." + ext
	f.keys = append(f.keys, key)
	return key, nil
}

var _ = Describe("ReportService", func() {
	var (
		ctx        context.Context
		activities *mockActivityStore
		perms      *fakePermissionStore
		arch       *fakeArchive
		admin      *model.User
		q          service.RangeQuery
		build      func(arch *fakeArchive) service.ReportService
	)

	BeforeEach(func() {
		ctx = context.Background()
		admin = &model.User{ID: 1, Role: model.RoleAdmin}
		activities = &mockActivityStore{}
		perms = newFakePermissionStore()
		arch = &fakeArchive{}
		q = service.RangeQuery{
			From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		}
		build = func(a *fakeArchive) service.ReportService {
			projects := newMockProjectStore()
			act := service.NewActivityService(activities, newMockTaskStore(), projects, perms)
			pay := service.NewPaymentService(activities, projects, perms)
			if a == nil {
				return service.NewReportService(act, pay, perms, report.NewRenderer("DevTrack"), nil)
			}
			return service.NewReportService(act, pay, perms, report.NewRenderer("DevTrack"), a)
		}
	})

	It("rejects an end date before the start date", func() {
		_, err := build(arch).Activity(ctx, admin, service.RangeQuery{From: q.To, To: q.From}, report.FormatXLSX)
		Expect(err).To(MatchError(service.ErrInvalidDateRange))
		Expect(arch.keys).To(BeEmpty())
	})

	It("returns the aggregate without a file for json", func() {
		out, err := build(arch).Activity(ctx, admin, q, report.FormatJSON)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Activity).NotTo(BeNil())
		Expect(out.File).To(BeNil())
		Expect(arch.keys).To(BeEmpty())
	})

	It("renders and archives binary formats", func() {
		out, err := build(arch).Payments(ctx, admin, q, report.FormatXLSX)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.File.Filename).To(Equal("payments-report_2024-03-01_2024-03-31.xlsx"))
		Expect(out.File.Data).NotTo(BeEmpty())
		Expect(out.ArchiveKey).To(Equal("reports/payments/2024/03/abc.xlsx"))
	})

	It("still serves the file when archiving fails", func() {
		arch.err = errors.New("bucket unavailable")
		out, err := build(arch).Activity(ctx, admin, q, report.FormatPDF)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.File).NotTo(BeNil())
		Expect(out.ArchiveKey).To(BeEmpty())
	})

	It("works without an archive", func() {
		out, err := build(nil).Activity(ctx, admin, q, report.FormatPDF)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.ArchiveKey).To(BeEmpty())
	})

	Describe("reports.generate", func() {
		dev := &model.User{ID: 6, Role: model.RoleDeveloper}

		It("rejects staff without the grant before rendering anything", func() {
			_, err := build(arch).Activity(ctx, dev, q, report.FormatXLSX)
			Expect(err).To(MatchError(service.ErrForbidden))

			_, err = build(arch).Payments(ctx, dev, q, report.FormatPDF)
			Expect(err).To(MatchError(service.ErrForbidden))

			Expect(activities.totalCalls).To(BeZero())
			Expect(arch.keys).To(BeEmpty())
		})

		It("serves staff holding the grant, scoped to their own hours", func() {
			perms.grants = append(perms.grants, &model.UserPermission{
				ID: 50, UserID: dev.ID, PermissionID: 1, Key: model.PermReportsGenerate,
			})

			out, err := build(arch).Payments(ctx, dev, q, report.FormatXLSX)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.File).NotTo(BeNil())
			Expect(activities.lastFilter.UserID).NotTo(BeNil())
			Expect(*activities.lastFilter.UserID).To(Equal(dev.ID))
		})
	})
})
