package model

import (
	"strings"
	"time"
)

// Role identifies who spoke a ConversationTurn.
type Role string

const (
	RoleJournalist Role = "journalist"
	RoleGuest      Role = "guest"
)

// Label renders the role the way prompts and transcripts show it.
func (r Role) Label() string {
	switch r {
	case RoleJournalist:
		return "Journalist"
	case RoleGuest:
		return "Guest"
	default:
		return string(r)
	}
}

type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusEnded  SessionStatus = "ended"
)

// ConversationTurn is immutable once appended to a session history.
type ConversationTurn struct {
	Speaker Role   `json:"speaker"`
	Content string `json:"content"`
}

// SessionState is one press conference. A nil *SessionState means no session.
type SessionState struct {
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
	ID               string             `json:"id"`
	PersonaID        string             `json:"persona_id"`
	Topic            string             `json:"topic"`
	GuestRole        string             `json:"guest_role"`
	OpeningSpeech    string             `json:"opening_speech"`
	LastQuestion     string             `json:"last_question"`
	LastExplanation  string             `json:"last_explanation,omitempty"`
	Status           SessionStatus      `json:"status"`
	History          []ConversationTurn `json:"history"`
	LastExplanations map[string]string  `json:"last_explanations,omitempty"`
}

// Active reports whether replies are accepted.
func (s *SessionState) Active() bool {
	return s != nil && s.Status == SessionStatusActive
}

// Append adds a turn. Journalist turns also become LastQuestion.
func (s *SessionState) Append(turn ConversationTurn) {
	s.History = append(s.History, turn)
	if turn.Speaker == RoleJournalist {
		s.LastQuestion = turn.Content
	}
}

// Turns counts journalist questions asked so far.
func (s *SessionState) Turns() int {
	n := 0
	for _, t := range s.History {
		if t.Speaker == RoleJournalist {
			n++
		}
	}
	return n
}

// Persona is an immutable journalist questioning style.
type Persona struct {
	ID          string   `json:"id" yaml:"id"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Description string   `json:"description" yaml:"description"`
	ToneRules   []string `json:"tone_rules" yaml:"tone_rules"`
	Example     string   `json:"example" yaml:"example"`
}

// Prompt is derived per turn and never persisted.
type Prompt struct {
	System string
	User   string
}

// Merged joins both parts for backends that take a single text.
func (p Prompt) Merged() string {
	return strings.TrimSpace(p.System) + "\n\n" + strings.TrimSpace(p.User)
}
