package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/dto"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/report"
	"devtrack.app/api/internal/service"
)

const archiveKeyHeader = "X-Report-Archive-Key"

type ReportHandler struct {
	reportService  service.ReportService
	paymentService service.PaymentService
}

func NewReportHandler(reportService service.ReportService, paymentService service.PaymentService) *ReportHandler {
	return &ReportHandler{reportService: reportService, paymentService: paymentService}
}

// Activity renders the activity report as json, xlsx or pdf.
func (h *ReportHandler) Activity(c *gin.Context) {
	h.render(c, h.reportService.Activity)
}

func (h *ReportHandler) Payments(c *gin.Context) {
	h.render(c, h.reportService.Payments)
}

// CalculatePayments returns the payment aggregate without producing a file.
func (h *ReportHandler) CalculatePayments(c *gin.Context) {
	ctx := c.Request.Context()
	q, ok := bindRange(c)
	if !ok {
		return
	}

	payments, err := h.paymentService.Calculate(ctx, middleware.GetUser(ctx), q)
	if err != nil {
		respondError(c, err, "calculate payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentReportResponse(payments))
}

type reportFunc func(ctx context.Context, actor *model.User, q service.RangeQuery, format report.Format) (*service.Report, error)

func (h *ReportHandler) render(c *gin.Context, generate reportFunc) {
	ctx := c.Request.Context()

	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		respondError(c, err, "generate report")
		return
	}
	q, ok := bindRange(c)
	if !ok {
		return
	}

	rep, err := generate(ctx, middleware.GetUser(ctx), q, format)
	if err != nil {
		respondError(c, err, "generate report")
		return
	}

	if rep.File == nil {
		switch {
		case rep.Activity != nil:
			c.JSON(http.StatusOK, dto.ToActivitySummaryResponse(rep.Activity))
		case rep.Payments != nil:
			c.JSON(http.StatusOK, dto.ToPaymentReportResponse(rep.Payments))
		default:
			respondError(c, fmt.Errorf("empty %s report", rep.Kind), "generate report")
		}
		return
	}

	if rep.ArchiveKey != "" {
		c.Header(archiveKeyHeader, rep.ArchiveKey)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.File.Filename))
	c.Data(http.StatusOK, rep.File.ContentType, rep.File.Data)
}
