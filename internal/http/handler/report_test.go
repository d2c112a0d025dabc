package handler_test

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/http/handler"
	"devtrack.app/api/internal/http/router"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/report"
	"devtrack.app/api/internal/service"
)

var _ = Describe("ReportHandler", func() {
	var (
		r        *gin.Engine
		reports  *mockReportService
		payments *mockPaymentService
		admin    *model.User
		from, to time.Time
	)

	BeforeEach(func() {
		admin = &model.User{ID: 1, Role: model.RoleAdmin, IsActive: true}
		from = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to = time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
		reports = &mockReportService{}
		payments = &mockPaymentService{}

		h := handler.NewReportHandler(reports, payments)
		r = authedRouter(admin)
		r.GET("/reports/activity", h.Activity)
		r.GET("/reports/payments", h.Payments)
		r.GET("/payments", h.CalculatePayments)
	})

	It("returns the activity summary as json by default", func() {
		reports.activityFn = func(_ context.Context, actor *model.User, q service.RangeQuery, format report.Format) (*service.Report, error) {
			Expect(actor.ID).To(Equal(admin.ID))
			Expect(q.From).To(Equal(from))
			Expect(q.To).To(Equal(to))
			Expect(*q.ProjectID).To(Equal(int64(9)))
			Expect(format).To(Equal(report.FormatJSON))
			return &service.Report{
				Kind:   report.KindActivity,
				Format: format,
				Activity: &model.ActivitySummary{
					From:       from,
					To:         to,
					TotalHours: decimal.RequireFromString("12.5"),
				},
			}, nil
		}

		w := perform(r, http.MethodGet, "/reports/activity?from=2024-03-01&to=2024-03-31&project_id=9", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp["from"]).To(Equal("2024-03-01"))
		Expect(resp["to"]).To(Equal("2024-03-31"))
		Expect(resp["total_hours"]).To(Equal("12.5"))
	})

	It("streams a rendered file as an attachment", func() {
		reports.paymentsFn = func(_ context.Context, _ *model.User, _ service.RangeQuery, format report.Format) (*service.Report, error) {
			Expect(format).To(Equal(report.FormatXLSX))
			return &service.Report{
				Kind:   report.KindPayments,
				Format: format,
				File: &report.File{
					Kind:        report.KindPayments,
					Format:      format,
					Filename:    report.Filename(report.KindPayments, from, to, format),
					ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
					Data:        []byte("PK-fake"),
				},
				ArchiveKey: "payments/2024/03/payments-report_2024-03-01_2024-03-31.xlsx",
			}, nil
		}

		w := perform(r, http.MethodGet, "/reports/payments?from=2024-03-01&to=2024-03-31&format=XLSX", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Disposition")).To(Equal(`attachment; filename="payments-report_2024-03-01_2024-03-31.xlsx"`))
		Expect(w.Header().Get("Content-Type")).To(HavePrefix("application/vnd.openxmlformats"))
		Expect(w.Header().Get("X-Report-Archive-Key")).To(HavePrefix("payments/"))
		Expect(w.Body.String()).To(Equal("PK-fake"))
	})

	It("returns 400 invalid_date_range when the end precedes the start", func() {
		reports.activityFn = func(context.Context, *model.User, service.RangeQuery, report.Format) (*service.Report, error) {
			return nil, service.ErrInvalidDateRange
		}

		w := perform(r, http.MethodGet, "/reports/activity?from=2024-03-31&to=2024-03-01", nil)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decode(w)["code"]).To(Equal("invalid_date_range"))
	})

	It("rejects unknown formats before generating anything", func() {
		w := perform(r, http.MethodGet, "/reports/activity?from=2024-03-01&to=2024-03-31&format=csv", nil)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decode(w)["code"]).To(Equal("unsupported_format"))
		Expect(reports.calls).To(BeZero())
	})

	It("requires both ends of the range", func() {
		w := perform(r, http.MethodGet, "/reports/activity?from=2024-03-01", nil)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(decode(w)["code"]).To(Equal("invalid_request"))
		Expect(reports.calls).To(BeZero())
	})

	It("rejects malformed dates", func() {
		w := perform(r, http.MethodGet, "/reports/activity?from=03/01/2024&to=2024-03-31", nil)

		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("maps a scope violation to 403", func() {
		reports.paymentsFn = func(context.Context, *model.User, service.RangeQuery, report.Format) (*service.Report, error) {
			return nil, service.ErrForbidden
		}

		w := perform(r, http.MethodGet, "/reports/payments?from=2024-03-01&to=2024-03-31", nil)

		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("calculates payments with string ids and decimal amounts", func() {
		payments.calculateFn = func(_ context.Context, _ *model.User, q service.RangeQuery) (*model.PaymentReport, error) {
			return service.BuildPaymentReport(q.From, q.To, []model.ActivityTotal{{
				UserID:      5,
				UserName:    "Ana",
				ProjectID:   9,
				ProjectName: "Portal",
				Hours:       decimal.RequireFromString("10"),
				HourlyRate:  ptr(decimal.RequireFromString("25.125")),
			}}), nil
		}

		w := perform(r, http.MethodGet, "/payments?from=2024-03-01&to=2024-03-31", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		resp := decode(w)
		Expect(resp["total_amount"]).To(Equal("251.25"))
		dev := resp["developers"].([]any)[0].(map[string]any)
		Expect(dev["user_id"]).To(Equal("5"))
		Expect(dev["lines"].([]any)).To(HaveLen(1))
	})
})

func ptr[T any](v T) *T {
	return &v
}

type grantChecker map[string]bool

func (g grantChecker) HasPermission(_ context.Context, user *model.User, key string) (bool, error) {
	return user.IsAdmin() || g[key], nil
}

var _ = Describe("ReportRouter", func() {
	var (
		reports *mockReportService
		dev     *model.User
		serve   func(grants grantChecker) *gin.Engine
	)

	BeforeEach(func() {
		dev = &model.User{ID: 6, Role: model.RoleDeveloper, IsActive: true}
		reports = &mockReportService{
			activityFn: func(context.Context, *model.User, service.RangeQuery, report.Format) (*service.Report, error) {
				return &service.Report{Kind: report.KindActivity, Format: report.FormatJSON, Activity: &model.ActivitySummary{}}, nil
			},
		}
		serve = func(grants grantChecker) *gin.Engine {
			e := authedRouter(dev)
			router.ReportRouter(e.Group("/reports"), handler.NewReportHandler(reports, &mockPaymentService{}), grants)
			return e
		}
	})

	DescribeTable("requires reports.generate",
		func(path string) {
			w := perform(serve(grantChecker{}), http.MethodGet, path, nil)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(reports.calls).To(BeZero())
		},
		Entry("activity", "/reports/activity?from=2024-03-01&to=2024-03-31&format=xlsx"),
		Entry("payments", "/reports/payments?from=2024-03-01&to=2024-03-31&format=pdf"),
	)

	It("lets grant holders through", func() {
		w := perform(serve(grantChecker{model.PermReportsGenerate: true}), http.MethodGet, "/reports/activity?from=2024-03-01&to=2024-03-31", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(reports.calls).To(Equal(1))
	})
})
