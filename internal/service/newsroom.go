package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pressroom.app/pressroom/common/id"
	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
	"pressroom.app/pressroom/internal/queue"
	"pressroom.app/pressroom/internal/store"
)

var ErrThreadNotFound = errors.New("thread not found")

// MessageRouter is the newsroom supervisor.
type MessageRouter interface {
	Handle(ctx context.Context, thread *model.Thread, req newsroom.Request) (*newsroom.Outcome, error)
}

// NewsroomService manages supervisor threads.
type NewsroomService interface {
	CreateThread(ctx context.Context) (*model.Thread, error)
	GetThread(ctx context.Context, threadID string) (*model.Thread, error)
	DeleteThread(ctx context.Context, threadID string) error
	Post(ctx context.Context, threadID string, req newsroom.Request) (*newsroom.Outcome, error)
}

type newsroomService struct {
	threads store.ThreadStore
	router  MessageRouter
	events  publisher
	now     func() time.Time
}

func NewNewsroomService(threads store.ThreadStore, router MessageRouter, producer queue.Producer) NewsroomService {
	return &newsroomService{
		threads: threads,
		router:  router,
		events:  publisher{producer: producer, now: time.Now},
		now:     time.Now,
	}
}

func (s *newsroomService) CreateThread(ctx context.Context) (*model.Thread, error) {
	now := s.now()
	thread := &model.Thread{
		ID:        id.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Messages:  []model.ThreadMessage{},
	}
	if err := s.threads.Save(ctx, thread); err != nil {
		return nil, fmt.Errorf("saving thread: %w", err)
	}
	return thread, nil
}

func (s *newsroomService) GetThread(ctx context.Context, threadID string) (*model.Thread, error) {
	thread, err := s.threads.Get(ctx, threadID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrThreadNotFound
		}
		return nil, fmt.Errorf("loading thread: %w", err)
	}
	return thread, nil
}

func (s *newsroomService) DeleteThread(ctx context.Context, threadID string) error {
	if _, err := s.GetThread(ctx, threadID); err != nil {
		return err
	}
	return s.threads.Delete(ctx, threadID)
}

func (s *newsroomService) Post(ctx context.Context, threadID string, req newsroom.Request) (*newsroom.Outcome, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ThreadID:  logger.Ptr(threadID),
		Component: "pressroom.service.newsroom",
	})

	unlock, err := s.threads.Lock(ctx, threadID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	thread, err := s.GetThread(ctx, threadID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.router.Handle(ctx, thread, req)
	if err != nil {
		return nil, err
	}
	if err := s.threads.Save(ctx, thread); err != nil {
		return nil, fmt.Errorf("saving thread: %w", err)
	}

	slog.InfoContext(ctx, "thread message handled",
		"intent", outcome.Intent,
		"agent", outcome.Agent,
		"failed", outcome.Failed)
	s.events.publish(ctx, model.ConversationEvent{Type: model.EventThreadMessage, Thread: thread})
	return outcome, nil
}
