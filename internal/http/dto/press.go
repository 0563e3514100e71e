package dto

import (
	"encoding/json"

	"pressroom.app/pressroom/internal/journalist"
	"pressroom.app/pressroom/internal/model"
)

type StartRequest struct {
	Persona string `json:"persona"`
	Topic   string `json:"topic"`
	Role    string `json:"role"`
	Speech  string `json:"speech"`
}

func (r StartRequest) ToInput() journalist.StartInput {
	return journalist.StartInput{
		PersonaID: r.Persona,
		Topic:     r.Topic,
		GuestRole: r.Role,
		Speech:    r.Speech,
	}
}

type StartResponse struct {
	SessionID    string            `json:"session_id"`
	Question     string            `json:"question"`
	Explanation  string            `json:"explanation,omitempty"`
	Explanations map[string]string `json:"explanations,omitempty"`
}

type ReplyRequest struct {
	Answer string `json:"answer"`
}

type TurnResponse struct {
	Question     string            `json:"question"`
	Explanation  string            `json:"explanation,omitempty"`
	Explanations map[string]string `json:"explanations,omitempty"`
	Closing      bool              `json:"closing,omitempty"`
}

type StopResponse struct {
	Analysis json.RawMessage `json:"analysis"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type TurnView struct {
	Speaker string `json:"role"`
	Content string `json:"content"`
}

type SessionResponse struct {
	SessionID    string     `json:"session_id"`
	Persona      string     `json:"persona"`
	Topic        string     `json:"topic"`
	Role         string     `json:"role"`
	Status       string     `json:"status"`
	LastQuestion string     `json:"last_question"`
	History      []TurnView `json:"history"`
}

func ToStartResponse(sessionID string, turn journalist.TurnResult) StartResponse {
	return StartResponse{
		SessionID:    sessionID,
		Question:     turn.Question,
		Explanation:  turn.Explanation,
		Explanations: turn.Explanations,
	}
}

func ToTurnResponse(turn journalist.TurnResult) TurnResponse {
	return TurnResponse{
		Question:     turn.Question,
		Explanation:  turn.Explanation,
		Explanations: turn.Explanations,
		Closing:      turn.Closing,
	}
}

func ToSessionResponse(s *model.SessionState) SessionResponse {
	history := make([]TurnView, len(s.History))
	for i, t := range s.History {
		history[i] = TurnView{Speaker: string(t.Speaker), Content: t.Content}
	}
	return SessionResponse{
		SessionID:    s.ID,
		Persona:      s.PersonaID,
		Topic:        s.Topic,
		Role:         s.GuestRole,
		Status:       string(s.Status),
		LastQuestion: s.LastQuestion,
		History:      history,
	}
}
