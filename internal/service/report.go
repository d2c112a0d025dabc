package service

import (
	"context"
	"log/slog"

	"devtrack.app/api/common/logger"
	"devtrack.app/api/internal/archive"
	"devtrack.app/api/internal/metrics"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/report"
	"devtrack.app/api/internal/store"
)

// Report carries the aggregate and, for binary formats, the rendered file.
type Report struct {
	Kind       report.Kind
	Format     report.Format
	Activity   *model.ActivitySummary
	Payments   *model.PaymentReport
	File       *report.File
	ArchiveKey string
}

type ReportService interface {
	Activity(ctx context.Context, actor *model.User, q RangeQuery, format report.Format) (*Report, error)
	Payments(ctx context.Context, actor *model.User, q RangeQuery, format report.Format) (*Report, error)
}

type reportService struct {
	activity    ActivityService
	payments    PaymentService
	permissions store.PermissionStore
	renderer    *report.Renderer
	archive     archive.Archive
}

// NewReportService accepts a nil archive, in which case files are not kept.
func NewReportService(
	activity ActivityService,
	payments PaymentService,
	permissions store.PermissionStore,
	renderer *report.Renderer,
	arch archive.Archive,
) ReportService {
	return &reportService{
		activity:    activity,
		payments:    payments,
		permissions: permissions,
		renderer:    renderer,
		archive:     arch,
	}
}

// authorize requires reports.generate; admins hold it implicitly.
func (s *reportService) authorize(ctx context.Context, actor *model.User) error {
	ok, err := projectAccess{permissions: s.permissions}.has(ctx, actor, model.PermReportsGenerate)
	if err != nil {
		return err
	}
	if !ok {
		slog.InfoContext(ctx, "report rejected, missing permission", "user_id", actor.ID)
		return ErrForbidden
	}
	return nil
}

func (s *reportService) Activity(ctx context.Context, actor *model.User, q RangeQuery, format report.Format) (*Report, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{ReportKind: logger.Ptr(string(report.KindActivity))})
	if err := s.authorize(ctx, actor); err != nil {
		return nil, err
	}

	summary, err := s.activity.Summary(ctx, actor, q)
	if err != nil {
		return nil, err
	}

	out := &Report{Kind: report.KindActivity, Format: format, Activity: summary}
	if format != report.FormatJSON {
		sc := logger.StartSpan(ctx, "report.render_activity")
		out.File, err = s.renderer.Activity(summary, format)
		sc.RecordError(err)
		sc.End()
		if err != nil {
			return nil, err
		}
		out.ArchiveKey = s.store(ctx, out.File)
	}

	metrics.ObserveReport(string(out.Kind), string(format))
	return out, nil
}

func (s *reportService) Payments(ctx context.Context, actor *model.User, q RangeQuery, format report.Format) (*Report, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{ReportKind: logger.Ptr(string(report.KindPayments))})
	if err := s.authorize(ctx, actor); err != nil {
		return nil, err
	}

	payments, err := s.payments.Calculate(ctx, actor, q)
	if err != nil {
		return nil, err
	}

	out := &Report{Kind: report.KindPayments, Format: format, Payments: payments}
	if format != report.FormatJSON {
		sc := logger.StartSpan(ctx, "report.render_payments")
		out.File, err = s.renderer.Payments(payments, format)
		sc.RecordError(err)
		sc.End()
		if err != nil {
			return nil, err
		}
		out.ArchiveKey = s.store(ctx, out.File)
	}

	metrics.ObserveReport(string(out.Kind), string(format))
	return out, nil
}

// store uploads f to the archive. Failures are logged and yield an empty key.
func (s *reportService) store(ctx context.Context, f *report.File) string {
	if s.archive == nil {
		return ""
	}
	key, err := s.archive.Put(ctx, string(f.Kind), string(f.Format), f.ContentType, f.Data)
	if err != nil {
		metrics.ObserveArchiveFailure()
		slog.ErrorContext(ctx, "failed to archive report", "error", err, "filename", f.Filename)
		return ""
	}
	slog.InfoContext(ctx, "report archived", "key", key, "bytes", len(f.Data))
	return key
}
