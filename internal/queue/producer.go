package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"devtrack.app/api/common/logger"
	"devtrack.app/api/internal/model"
)

type Producer interface {
	Enqueue(ctx context.Context, n model.Notification) error
	Close() error
}

type redisProducer struct {
	client *redis.Client
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client *redis.Client, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Enqueue(ctx context.Context, n model.Notification) error {
	if !n.Type.Valid() {
		return fmt.Errorf("enqueue notification: unknown type %q", n.Type)
	}
	if n.To == "" {
		return fmt.Errorf("enqueue notification: empty recipient")
	}

	values, err := notificationValues(Message{
		Notification: n,
		Attempt:      1,
		TraceID:      logger.TraceIDFromContext(ctx),
	})
	if err != nil {
		return err
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}

	p.logger.InfoContext(ctx, "enqueued notification", "type", n.Type, "to", logger.MaskEmail(n.To))
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

func notificationValues(msg Message) (map[string]any, error) {
	data := msg.Notification.Data
	if data == nil {
		data = map[string]string{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding notification data: %w", err)
	}

	attempt := msg.Attempt
	if attempt <= 0 {
		attempt = 1
	}

	values := map[string]any{
		"type":    string(msg.Notification.Type),
		"to":      msg.Notification.To,
		"name":    msg.Notification.Name,
		"data":    string(encoded),
		"attempt": attempt,
	}
	if msg.TraceID != "" {
		values["trace_id"] = msg.TraceID
	}
	return values, nil
}
