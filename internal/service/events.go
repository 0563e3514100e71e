package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/queue"
)

// publisher wraps the archive producer. Publishing is best effort: a live
// conversation never fails because the archive stream is down.
type publisher struct {
	producer queue.Producer
	now      func() time.Time
}

func (p publisher) publish(ctx context.Context, ev model.ConversationEvent) {
	if p.producer == nil {
		return
	}
	ev.OccurredAt = p.now()
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev.TraceID = sc.TraceID().String()
	}
	if err := p.producer.Publish(ctx, ev); err != nil {
		slog.WarnContext(ctx, "failed to publish conversation event", "event_type", ev.Type, "error", err)
	}
}
