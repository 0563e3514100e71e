package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pressroom.app/pressroom/core/db"
	"pressroom.app/pressroom/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
	session_id   TEXT PRIMARY KEY,
	persona_id   TEXT NOT NULL,
	topic        TEXT NOT NULL,
	guest_role   TEXT NOT NULL,
	speech       TEXT NOT NULL,
	status       TEXT NOT NULL,
	turns        JSONB NOT NULL DEFAULT '[]',
	analysis     JSONB,
	event_count  INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS thread_snapshots (
	thread_id    TEXT PRIMARY KEY,
	snapshot     JSONB NOT NULL,
	message_count INTEGER NOT NULL,
	verdict      TEXT,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
`

const selectTranscript = `
SELECT session_id, persona_id, topic, guest_role, speech, status, turns, analysis, event_count, created_at, updated_at
FROM transcripts WHERE session_id = $1`

const upsertTranscript = `
INSERT INTO transcripts (session_id, persona_id, topic, guest_role, speech, status, turns, analysis, event_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (session_id) DO UPDATE SET
	persona_id  = EXCLUDED.persona_id,
	topic       = EXCLUDED.topic,
	guest_role  = EXCLUDED.guest_role,
	speech      = EXCLUDED.speech,
	status      = EXCLUDED.status,
	turns       = EXCLUDED.turns,
	analysis    = COALESCE(EXCLUDED.analysis, transcripts.analysis),
	event_count = EXCLUDED.event_count,
	updated_at  = EXCLUDED.updated_at`

const upsertThreadSnapshot = `
INSERT INTO thread_snapshots (thread_id, snapshot, message_count, verdict, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (thread_id) DO UPDATE SET
	snapshot      = EXCLUDED.snapshot,
	message_count = EXCLUDED.message_count,
	verdict       = EXCLUDED.verdict,
	updated_at    = EXCLUDED.updated_at
WHERE thread_snapshots.message_count <= EXCLUDED.message_count`

type archiveStore struct {
	q db.Querier
}

// NewArchiveStore runs against a pool or, inside db.WithTx, a transaction.
func NewArchiveStore(q db.Querier) ArchiveStore {
	return &archiveStore{q: q}
}

// EnsureSchema creates the archive tables when missing.
func EnsureSchema(ctx context.Context, q db.Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure archive schema: %w", err)
	}
	return nil
}

func (s *archiveStore) GetTranscript(ctx context.Context, sessionID string) (*model.Transcript, error) {
	var (
		t        model.Transcript
		turns    []byte
		analysis []byte
		status   string
	)
	err := s.q.QueryRow(ctx, selectTranscript, sessionID).Scan(
		&t.SessionID, &t.PersonaID, &t.Topic, &t.GuestRole, &t.Speech, &status,
		&turns, &analysis, &t.EventCount, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get transcript %s: %w", sessionID, err)
	}
	t.Status = model.SessionStatus(status)
	if err := json.Unmarshal(turns, &t.Turns); err != nil {
		return nil, fmt.Errorf("decode transcript turns: %w", err)
	}
	if len(analysis) > 0 {
		a := string(analysis)
		t.Analysis = &a
	}
	return &t, nil
}

func (s *archiveStore) UpsertTranscript(ctx context.Context, t *model.Transcript) error {
	turns, err := json.Marshal(t.Turns)
	if err != nil {
		return fmt.Errorf("encode transcript turns: %w", err)
	}
	var analysis []byte
	if t.Analysis != nil {
		analysis = []byte(*t.Analysis)
	}

	_, err = s.q.Exec(ctx, upsertTranscript,
		t.SessionID, t.PersonaID, t.Topic, t.GuestRole, t.Speech, string(t.Status),
		turns, analysis, t.EventCount, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert transcript %s: %w", t.SessionID, err)
	}
	return nil
}

func (s *archiveStore) UpsertThreadSnapshot(ctx context.Context, thread *model.Thread) error {
	snapshot, err := json.Marshal(thread)
	if err != nil {
		return fmt.Errorf("encode thread snapshot: %w", err)
	}
	var verdict *string
	if thread.Detection != nil {
		verdict = &thread.Detection.Verdict.Label
	}

	_, err = s.q.Exec(ctx, upsertThreadSnapshot,
		thread.ID, snapshot, len(thread.Messages), verdict, thread.CreatedAt, thread.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert thread snapshot %s: %w", thread.ID, err)
	}
	return nil
}

// ProjectTranscript folds one session event into the archived transcript.
// existing may be nil for the first event of a session.
func ProjectTranscript(existing *model.Transcript, ev model.ConversationEvent) (*model.Transcript, error) {
	if ev.Session == nil {
		return nil, fmt.Errorf("event %s carries no session", ev.Type)
	}
	s := ev.Session

	t := existing
	if t == nil {
		t = &model.Transcript{SessionID: s.ID, CreatedAt: s.CreatedAt}
	}
	if t.SessionID != s.ID {
		return nil, fmt.Errorf("event for session %s applied to transcript %s", s.ID, t.SessionID)
	}

	t.PersonaID = s.PersonaID
	t.Topic = s.Topic
	t.GuestRole = s.GuestRole
	t.Speech = s.OpeningSpeech
	t.Status = s.Status
	// events may arrive out of order after a requeue; never shrink the history
	if len(s.History) >= len(t.Turns) {
		t.Turns = append([]model.ConversationTurn(nil), s.History...)
	}
	if ev.Analysis != nil {
		t.Analysis = ev.Analysis
	}
	if ev.OccurredAt.After(t.UpdatedAt) {
		t.UpdatedAt = ev.OccurredAt
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = ev.OccurredAt
	}
	t.EventCount++
	return t, nil
}
