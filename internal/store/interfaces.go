package store

import (
	"context"
	"errors"

	"pressroom.app/pressroom/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrSessionBusy is returned by Lock when another request holds the key.
var ErrSessionBusy = errors.New("session busy")

// Unlock releases a lock taken with Lock. It is safe to call more than once.
type Unlock func()

// SessionStore keeps live press-conference sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*model.SessionState, error)
	Save(ctx context.Context, state *model.SessionState) error
	Delete(ctx context.Context, id string) error
	// Lock fails fast with ErrSessionBusy instead of waiting.
	Lock(ctx context.Context, id string) (Unlock, error)
}

// ThreadStore keeps live newsroom supervisor threads.
type ThreadStore interface {
	Get(ctx context.Context, id string) (*model.Thread, error)
	Save(ctx context.Context, thread *model.Thread) error
	Delete(ctx context.Context, id string) error
	Lock(ctx context.Context, id string) (Unlock, error)
}

// ArchiveStore persists finished and in-flight conversations for later review.
type ArchiveStore interface {
	GetTranscript(ctx context.Context, sessionID string) (*model.Transcript, error)
	UpsertTranscript(ctx context.Context, t *model.Transcript) error
	UpsertThreadSnapshot(ctx context.Context, thread *model.Thread) error
}
