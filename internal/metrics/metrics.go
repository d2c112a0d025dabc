package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devtrack",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "devtrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	reportsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devtrack",
			Subsystem: "reports",
			Name:      "generated_total",
			Help:      "Reports generated by kind and output format.",
		},
		[]string{"kind", "format"},
	)
	reportArchiveFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "devtrack",
			Subsystem: "reports",
			Name:      "archive_failures_total",
			Help:      "Generated reports that could not be uploaded to the archive.",
		},
	)

	notificationsEnqueuedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devtrack",
			Subsystem: "notifications",
			Name:      "enqueued_total",
			Help:      "Notifications enqueued by type and result.",
		},
		[]string{"type", "result"},
	)
	notificationsSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devtrack",
			Subsystem: "notifications",
			Name:      "sent_total",
			Help:      "Notifications delivered by type.",
		},
		[]string{"type"},
	)
	notificationsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devtrack",
			Subsystem: "notifications",
			Name:      "failed_total",
			Help:      "Failed deliveries by type; final=true when sent to the DLQ.",
		},
		[]string{"type", "final"},
	)

	otpRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "devtrack",
			Subsystem: "auth",
			Name:      "otp_requests_total",
			Help:      "Password reset codes issued.",
		},
	)
	otpVerifyFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devtrack",
			Subsystem: "auth",
			Name:      "otp_verify_failures_total",
			Help:      "Rejected password reset codes by reason.",
		},
		[]string{"reason"},
	)
)

func init() {
	Register()
}

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			reportsGeneratedTotal,
			reportArchiveFailuresTotal,
			notificationsEnqueuedTotal,
			notificationsSentTotal,
			notificationsFailedTotal,
			otpRequestsTotal,
			otpVerifyFailuresTotal,
		)
	})
}

// GinMiddleware records every request under its route template, so
// /projects/123 and /projects/456 share one series.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(route, c.Request.Method, status).Inc()
		httpRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

func ObserveReport(kind, format string) {
	reportsGeneratedTotal.WithLabelValues(kind, format).Inc()
}

func ObserveArchiveFailure() {
	reportArchiveFailuresTotal.Inc()
}

func ObserveEnqueue(notificationType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	notificationsEnqueuedTotal.WithLabelValues(notificationType, result).Inc()
}

func ObserveOTPRequest() {
	otpRequestsTotal.Inc()
}

func ObserveOTPFailure(reason string) {
	otpVerifyFailuresTotal.WithLabelValues(reason).Inc()
}

// WorkerRecorder feeds delivery outcomes from the notification worker.
type WorkerRecorder struct{}

func (WorkerRecorder) NotificationSent(notificationType string) {
	notificationsSentTotal.WithLabelValues(notificationType).Inc()
}

func (WorkerRecorder) NotificationFailed(notificationType string, final bool) {
	notificationsFailedTotal.WithLabelValues(notificationType, strconv.FormatBool(final)).Inc()
}
