package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"pressroom.app/pressroom/internal/model"
)

// Producer publishes conversation events for the archive worker.
type Producer interface {
	Publish(ctx context.Context, event model.ConversationEvent) error
	Close() error
}

type redisProducer struct {
	client redis.UniversalClient
	stream string
	logger *slog.Logger
}

func NewRedisProducer(client redis.UniversalClient, stream string, logger *slog.Logger) Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &redisProducer{
		client: client,
		stream: stream,
		logger: logger,
	}
}

func (p *redisProducer) Publish(ctx context.Context, event model.ConversationEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	fields := map[string]any{
		"event_type": string(event.Type),
		"payload":    string(payload),
		"attempt":    1,
	}
	if event.TraceID != "" {
		fields["trace_id"] = event.TraceID
	}

	if err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: fields,
	}).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	p.logger.DebugContext(ctx, "published conversation event",
		"event_type", event.Type,
		"stream", p.stream,
		"bytes", len(payload))
	return nil
}

func (p *redisProducer) Close() error {
	return p.client.Close()
}

type nopProducer struct{}

// NewNopProducer drops every event. Used when no Redis is configured.
func NewNopProducer() Producer {
	return nopProducer{}
}

func (nopProducer) Publish(context.Context, model.ConversationEvent) error { return nil }

func (nopProducer) Close() error { return nil }
