package service

import (
	"context"
	"log/slog"

	"devtrack.app/api/common/logger"
	"devtrack.app/api/internal/metrics"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/queue"
)

// Notifier hands emails to the background worker. It never fails the caller.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification)
}

type queueNotifier struct {
	producer queue.Producer
}

// NewNotifier returns a Notifier that drops everything when producer is nil.
func NewNotifier(producer queue.Producer) Notifier {
	return &queueNotifier{producer: producer}
}

func (q *queueNotifier) Notify(ctx context.Context, n model.Notification) {
	if q.producer == nil {
		slog.WarnContext(ctx, "notification dropped, no producer configured", "type", n.Type)
		return
	}

	err := q.producer.Enqueue(ctx, n)
	metrics.ObserveEnqueue(string(n.Type), err)
	if err != nil {
		slog.ErrorContext(ctx, "failed to enqueue notification",
			"error", err,
			"type", n.Type,
			"to", logger.MaskEmail(n.To),
		)
	}
}
