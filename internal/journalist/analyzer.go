package journalist

import (
	"context"
	"encoding/json"
	"fmt"

	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/remote"
)

// Analyzer produces the end-of-conference analysis over the whole exchange.
type Analyzer interface {
	Analyze(ctx context.Context, state *model.SessionState) (json.RawMessage, error)
}

type RemoteAnalyzer struct {
	client *remote.Client
	url    string
}

func NewRemoteAnalyzer(client *remote.Client, url string) *RemoteAnalyzer {
	return &RemoteAnalyzer{client: client, url: url}
}

type analyzeTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type analyzeRequest struct {
	Speech  string        `json:"speech"`
	History []analyzeTurn `json:"history"`
	Topic   string        `json:"topic"`
	Role    string        `json:"role"`
}

type analyzeResponse struct {
	Analysis json.RawMessage `json:"analysis"`
}

func (a *RemoteAnalyzer) Analyze(ctx context.Context, state *model.SessionState) (json.RawMessage, error) {
	req := analyzeRequest{
		Speech:  state.OpeningSpeech,
		History: make([]analyzeTurn, 0, len(state.History)),
		Topic:   state.Topic,
		Role:    state.GuestRole,
	}
	for _, t := range state.History {
		req.History = append(req.History, analyzeTurn{Role: string(t.Speaker), Content: t.Content})
	}

	var out analyzeResponse
	if err := a.client.PostJSON(ctx, a.url, req, &out); err != nil {
		return nil, err
	}
	if len(out.Analysis) == 0 || string(out.Analysis) == "null" {
		return nil, fmt.Errorf("analyze: missing analysis field: %w", remote.ErrMalformedResponse)
	}
	return out.Analysis, nil
}

// localAnalysis is used when no analysis endpoint is configured.
func localAnalysis(state *model.SessionState) json.RawMessage {
	questions := []string{}
	answers := 0
	for _, t := range state.History {
		switch t.Speaker {
		case model.RoleJournalist:
			questions = append(questions, t.Content)
		case model.RoleGuest:
			answers++
		}
	}
	data, _ := json.Marshal(map[string]any{
		"persona":   state.PersonaID,
		"topic":     state.Topic,
		"questions": questions,
		"answers":   answers,
	})
	return data
}

func analysisError(err error) json.RawMessage {
	data, _ := json.Marshal(map[string]string{"error": remote.Describe(err)})
	return data
}
