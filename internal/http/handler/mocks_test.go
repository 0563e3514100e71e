package handler_test

import (
	"context"

	"pressroom.app/pressroom/internal/journalist"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/newsroom"
	"pressroom.app/pressroom/internal/service"
)

type mockPressService struct {
	startFn func(ctx context.Context, previousID string, in journalist.StartInput) (*service.StartResult, error)
	replyFn func(ctx context.Context, sessionID, answer string) (journalist.TurnResult, error)
	stopFn  func(ctx context.Context, sessionID string) (journalist.StopResult, error)
	resetFn func(ctx context.Context, sessionID string) error
	getFn   func(ctx context.Context, sessionID string) (*model.SessionState, error)
}

func (m *mockPressService) Start(ctx context.Context, previousID string, in journalist.StartInput) (*service.StartResult, error) {
	if m.startFn != nil {
		return m.startFn(ctx, previousID, in)
	}
	return nil, nil
}

func (m *mockPressService) Reply(ctx context.Context, sessionID, answer string) (journalist.TurnResult, error) {
	if m.replyFn != nil {
		return m.replyFn(ctx, sessionID, answer)
	}
	return journalist.TurnResult{}, nil
}

func (m *mockPressService) Stop(ctx context.Context, sessionID string) (journalist.StopResult, error) {
	if m.stopFn != nil {
		return m.stopFn(ctx, sessionID)
	}
	return journalist.StopResult{}, nil
}

func (m *mockPressService) Reset(ctx context.Context, sessionID string) error {
	if m.resetFn != nil {
		return m.resetFn(ctx, sessionID)
	}
	return nil
}

func (m *mockPressService) Get(ctx context.Context, sessionID string) (*model.SessionState, error) {
	if m.getFn != nil {
		return m.getFn(ctx, sessionID)
	}
	return nil, nil
}

type mockNewsroomService struct {
	createFn func(ctx context.Context) (*model.Thread, error)
	getFn    func(ctx context.Context, threadID string) (*model.Thread, error)
	deleteFn func(ctx context.Context, threadID string) error
	postFn   func(ctx context.Context, threadID string, req newsroom.Request) (*newsroom.Outcome, error)
}

func (m *mockNewsroomService) CreateThread(ctx context.Context) (*model.Thread, error) {
	if m.createFn != nil {
		return m.createFn(ctx)
	}
	return nil, nil
}

func (m *mockNewsroomService) GetThread(ctx context.Context, threadID string) (*model.Thread, error) {
	if m.getFn != nil {
		return m.getFn(ctx, threadID)
	}
	return nil, nil
}

func (m *mockNewsroomService) DeleteThread(ctx context.Context, threadID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, threadID)
	}
	return nil
}

func (m *mockNewsroomService) Post(ctx context.Context, threadID string, req newsroom.Request) (*newsroom.Outcome, error) {
	if m.postFn != nil {
		return m.postFn(ctx, threadID, req)
	}
	return nil, nil
}

type staticPersonas []model.Persona

func (s staticPersonas) List() []model.Persona { return s }
