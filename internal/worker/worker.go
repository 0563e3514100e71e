package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/queue"
	"pressroom.app/pressroom/internal/store"
)

type Config struct {
	MaxAttempts int
}

// Worker archives conversation events from the stream into Postgres.
type Worker struct {
	consumer Consumer
	txRunner TxRunner
	cfg      Config

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func New(consumer Consumer, txRunner TxRunner, cfg Config) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	return &Worker{
		consumer:  consumer,
		txRunner:  txRunner,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) error {
	defer close(w.stoppedCh)

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pressroom.worker"})
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
				// Brief backoff on error
				time.Sleep(time.Second)
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
		if err := w.processMessageSafe(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "message processing failed",
				"error", err,
				"message_id", msg.ID,
				"event_type", msg.EventType)
			w.handleFailedMessage(ctx, msg, err)
		}
	}

	return nil
}

func (w *Worker) processMessageSafe(ctx context.Context, msg queue.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic recovered in message processing",
				"panic", r,
				"message_id", msg.ID)
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.ProcessMessage(ctx, msg)
}

// ProcessMessage archives one event and acks it. Exported so it can be
// reused by the reclaimer.
func (w *Worker) ProcessMessage(ctx context.Context, msg queue.Message) error {
	sc := logger.StartSpanFromTraceID(ctx, msg.TraceID, "worker.archive_event", trace.WithSpanKind(trace.SpanKindConsumer))
	defer sc.End()
	ctx = sc.Context()

	eventType := string(msg.EventType)
	fields := logger.LogFields{MessageID: logger.Ptr(msg.ID), EventType: &eventType}
	if s := msg.Event.Session; s != nil {
		fields.SessionID = logger.Ptr(s.ID)
		fields.Persona = logger.Ptr(s.PersonaID)
	}
	if t := msg.Event.Thread; t != nil {
		fields.ThreadID = logger.Ptr(t.ID)
	}
	ctx = logger.WithLogFields(ctx, fields)
	sc.SetAttributes(attribute.String("event.type", eventType), attribute.Int("event.attempt", msg.Attempt))

	slog.DebugContext(ctx, "processing message", "attempt", msg.Attempt)

	txErr := w.txRunner.WithTx(ctx, func(archive store.ArchiveStore) error {
		return archiveEvent(ctx, archive, msg.Event)
	})
	if txErr != nil {
		sc.Fail(txErr)
		// not acked: the failure handler requeues or dead-letters it
		return fmt.Errorf("transaction failed: %w", txErr)
	}

	if err := w.consumer.Ack(ctx, msg); err != nil {
		// Log but don't fail - the message will be reclaimed and the upsert is idempotent
		slog.WarnContext(ctx, "failed to ACK message",
			"error", err,
			"message_id", msg.ID)
	}

	slog.InfoContext(ctx, "event archived")
	return nil
}

func archiveEvent(ctx context.Context, archive store.ArchiveStore, ev model.ConversationEvent) error {
	switch ev.Type {
	case model.EventThreadMessage:
		if ev.Thread == nil {
			return fmt.Errorf("thread event without thread")
		}
		return archive.UpsertThreadSnapshot(ctx, ev.Thread)
	default:
		if ev.Session == nil {
			return fmt.Errorf("%s event without session", ev.Type)
		}
		existing, err := archive.GetTranscript(ctx, ev.Session.ID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("loading transcript: %w", err)
		}
		transcript, err := store.ProjectTranscript(existing, ev)
		if err != nil {
			return err
		}
		return archive.UpsertTranscript(ctx, transcript)
	}
}

func (w *Worker) handleFailedMessage(ctx context.Context, msg queue.Message, err error) {
	if msg.Attempt >= w.cfg.MaxAttempts {
		slog.ErrorContext(ctx, "max attempts reached, sending to DLQ",
			"message_id", msg.ID,
			"attempts", msg.Attempt)
		if dlqErr := w.consumer.SendDLQ(ctx, msg, err.Error()); dlqErr != nil {
			slog.ErrorContext(ctx, "failed to send to DLQ", "error", dlqErr)
		}
		return
	}

	slog.WarnContext(ctx, "requeuing failed message",
		"message_id", msg.ID,
		"attempt", msg.Attempt)
	if requeueErr := w.consumer.Requeue(ctx, msg, err.Error()); requeueErr != nil {
		slog.ErrorContext(ctx, "failed to requeue message", "error", requeueErr)
	}
}
