package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/journalist"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/queue"
	"pressroom.app/pressroom/internal/store"
)

// Orchestrator is the journalist state machine the press service drives.
type Orchestrator interface {
	Start(ctx context.Context, in journalist.StartInput) (*model.SessionState, journalist.TurnResult, error)
	Reply(ctx context.Context, state *model.SessionState, answer string) (journalist.TurnResult, error)
	Stop(ctx context.Context, state *model.SessionState) (journalist.StopResult, error)
	Reset(ctx context.Context, state *model.SessionState) *model.SessionState
}

type StartResult struct {
	Session *model.SessionState
	Turn    journalist.TurnResult
}

// PressService runs press conferences keyed by session id.
type PressService interface {
	// Start opens a new session. previousID, when set, is discarded first.
	Start(ctx context.Context, previousID string, in journalist.StartInput) (*StartResult, error)
	Reply(ctx context.Context, sessionID, answer string) (journalist.TurnResult, error)
	Stop(ctx context.Context, sessionID string) (journalist.StopResult, error)
	Reset(ctx context.Context, sessionID string) error
	Get(ctx context.Context, sessionID string) (*model.SessionState, error)
}

type pressService struct {
	sessions     store.SessionStore
	orchestrator Orchestrator
	events       publisher
}

func NewPressService(sessions store.SessionStore, orchestrator Orchestrator, producer queue.Producer) PressService {
	return &pressService{
		sessions:     sessions,
		orchestrator: orchestrator,
		events:       publisher{producer: producer, now: time.Now},
	}
}

func (s *pressService) Start(ctx context.Context, previousID string, in journalist.StartInput) (*StartResult, error) {
	if previousID != "" {
		if err := s.Reset(ctx, previousID); err != nil {
			return nil, err
		}
	}

	state, turn, err := s.orchestrator.Start(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("starting session: %w", err)
	}
	if err := s.sessions.Save(ctx, state); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.events.publish(ctx, model.ConversationEvent{Type: model.EventSessionStarted, Session: state})
	return &StartResult{Session: state, Turn: turn}, nil
}

func (s *pressService) Reply(ctx context.Context, sessionID, answer string) (journalist.TurnResult, error) {
	var turn journalist.TurnResult
	err := s.withSession(ctx, sessionID, func(ctx context.Context, state *model.SessionState) error {
		var err error
		turn, err = s.orchestrator.Reply(ctx, state, answer)
		if err != nil {
			return err
		}
		if err := s.sessions.Save(ctx, state); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		s.events.publish(ctx, model.ConversationEvent{Type: model.EventTurnCompleted, Session: state})
		return nil
	})
	return turn, err
}

func (s *pressService) Stop(ctx context.Context, sessionID string) (journalist.StopResult, error) {
	var result journalist.StopResult
	err := s.withSession(ctx, sessionID, func(ctx context.Context, state *model.SessionState) error {
		var err error
		result, err = s.orchestrator.Stop(ctx, state)
		if err != nil {
			return err
		}
		analysis := string(result.Analysis)
		s.events.publish(ctx, model.ConversationEvent{Type: model.EventSessionStopped, Session: state, Analysis: &analysis})
		if err := s.sessions.Delete(ctx, state.ID); err != nil {
			return fmt.Errorf("deleting session: %w", err)
		}
		return nil
	})
	return result, err
}

func (s *pressService) Reset(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	unlock, err := s.sessions.Lock(ctx, sessionID)
	if err != nil {
		return err
	}
	defer unlock()

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("loading session: %w", err)
	}
	s.orchestrator.Reset(ctx, state)
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *pressService) Get(ctx context.Context, sessionID string) (*model.SessionState, error) {
	if sessionID == "" {
		return nil, journalist.ErrNoActiveSession
	}
	state, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, journalist.ErrNoActiveSession
	}
	return state, err
}

// withSession holds the session lock around fn. A missing session reaches fn
// as nil so the orchestrator decides which error wins.
func (s *pressService) withSession(ctx context.Context, sessionID string, fn func(ctx context.Context, state *model.SessionState) error) error {
	if sessionID == "" {
		return fn(ctx, nil)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: logger.Ptr(sessionID),
		Component: "pressroom.service.press",
	})

	unlock, err := s.sessions.Lock(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionBusy) {
			slog.WarnContext(ctx, "session busy, rejecting concurrent request")
		}
		return err
	}
	defer unlock()

	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("loading session: %w", err)
	}
	return fn(ctx, state)
}
