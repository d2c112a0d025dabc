package worker

import (
	"context"

	"devtrack.app/api/internal/queue"
)

// Consumer abstracts the message queue for testability.
type Consumer interface {
	Read(ctx context.Context) ([]queue.Message, error)
	Ack(ctx context.Context, msg queue.Message) error
	Requeue(ctx context.Context, msg queue.Message, errMsg string) error
	SendDLQ(ctx context.Context, msg queue.Message, errMsg string) error
}

// Recorder receives delivery outcomes for metrics.
type Recorder interface {
	NotificationSent(notificationType string)
	NotificationFailed(notificationType string, final bool)
}

type nopRecorder struct{}

func (nopRecorder) NotificationSent(string)         {}
func (nopRecorder) NotificationFailed(string, bool) {}
