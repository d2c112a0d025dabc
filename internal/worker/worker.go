package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"devtrack.app/api/common/logger"
	"devtrack.app/api/internal/mail"
	"devtrack.app/api/internal/queue"
)

type Config struct {
	MaxAttempts int
	// ErrorBackoff is the pause after a failed stream read.
	ErrorBackoff time.Duration
}

// Worker drains the notification stream and hands each message to the mail sender.
type Worker struct {
	consumer Consumer
	sender   mail.Sender
	recorder Recorder
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, sender mail.Sender, recorder Recorder, cfg Config) *Worker {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &Worker{
		consumer:  consumer,
		sender:    sender,
		recorder:  recorder,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "devtrack.worker.mailer"})
	slog.InfoContext(ctx, "worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			slog.InfoContext(ctx, "worker stopping")
			return nil
		default:
			if err := w.processOneBatch(ctx); err != nil {
				slog.ErrorContext(ctx, "batch processing error", "error", err)
				select {
				case <-time.After(w.cfg.ErrorBackoff):
				case <-w.stopCh:
					slog.InfoContext(ctx, "worker stopping")
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
	<-w.stoppedCh
}

func (w *Worker) processOneBatch(ctx context.Context) error {
	messages, err := w.consumer.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading from stream: %w", err)
	}

	for _, msg := range messages {
		w.Handle(ctx, msg)
	}
	return nil
}

// Handle delivers msg and settles it: ack on success, requeue on a
// transient failure, DLQ on a permanent one or after the last attempt.
// The reclaimer reuses it for stale pending messages.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) {
	msgID := msg.ID
	ntype := string(msg.Notification.Type)
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		MessageID:        &msgID,
		NotificationType: &ntype,
	})

	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.send_notification",
		trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()

	if err := w.deliverSafe(ctx, msg); err != nil {
		sc.RecordError(err)
		slog.ErrorContext(ctx, "notification delivery failed", "error", err, "attempt", msg.Attempt)
		w.handleFailedMessage(ctx, msg, err)
		return
	}

	w.recorder.NotificationSent(ntype)
	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Delivered but unacked: the reclaimer may send it again.
		slog.WarnContext(ctx, "failed to ACK message", "error", err)
	}
	slog.InfoContext(ctx, "notification sent", "to", logger.MaskEmail(msg.Notification.To), "attempt", msg.Attempt)
}

func (w *Worker) deliverSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in notification delivery", "panic", r)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.sender.Send(ctx, msg.Notification)
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	ntype := string(msg.Notification.Type)
	if errors.Is(err, mail.ErrPermanent) || msg.Attempt >= w.cfg.MaxAttempts {
		w.recorder.NotificationFailed(ntype, true)
		slog.ErrorContext(ctx, "giving up on notification, sending to DLQ", "attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	w.recorder.NotificationFailed(ntype, false)
	slog.WarnContext(ctx, "requeuing failed notification", "attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
