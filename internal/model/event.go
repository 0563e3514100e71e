package model

import "time"

type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventTurnCompleted  EventType = "turn_completed"
	EventSessionStopped EventType = "session_stopped"
	EventThreadMessage  EventType = "thread_message"
)

// ConversationEvent carries a full snapshot so the archive worker can upsert
// without reading back from the live store.
type ConversationEvent struct {
	OccurredAt time.Time     `json:"occurred_at"`
	Type       EventType     `json:"type"`
	Session    *SessionState `json:"session,omitempty"`
	Thread     *Thread       `json:"thread,omitempty"`
	Analysis   *string       `json:"analysis,omitempty"`
	TraceID    string        `json:"trace_id,omitempty"`
}

// Transcript is the archived form of a press conference.
type Transcript struct {
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	SessionID  string             `json:"session_id"`
	PersonaID  string             `json:"persona_id"`
	Topic      string             `json:"topic"`
	GuestRole  string             `json:"guest_role"`
	Speech     string             `json:"speech"`
	Status     SessionStatus      `json:"status"`
	Turns      []ConversationTurn `json:"turns"`
	Analysis   *string            `json:"analysis,omitempty"`
	EventCount int                `json:"event_count"`
}
