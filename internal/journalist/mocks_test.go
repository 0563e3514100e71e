package journalist_test

import (
	"context"
	"encoding/json"

	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/internal/model"
)

type mockGenerator struct {
	generateFn func(ctx context.Context, prompt model.Prompt) (string, error)
	prompts    []model.Prompt
	callCount  int
}

func (m *mockGenerator) Generate(ctx context.Context, prompt model.Prompt) (string, error) {
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "<QUESTION>What is next?<eoa>", nil
}

type explainCall struct {
	speech, question, mode string
}

type mockExplainer struct {
	explainFn func(ctx context.Context, speech, question, mode string) (string, error)
	calls     []explainCall
}

func (m *mockExplainer) Explain(ctx context.Context, speech, question, mode string) (string, error) {
	m.calls = append(m.calls, explainCall{speech, question, mode})
	if m.explainFn != nil {
		return m.explainFn(ctx, speech, question, mode)
	}
	return mode + " explanation", nil
}

type mockAnalyzer struct {
	analyzeFn func(ctx context.Context, state *model.SessionState) (json.RawMessage, error)
	callCount int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, state *model.SessionState) (json.RawMessage, error) {
	m.callCount++
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, state)
	}
	return json.RawMessage(`{"score":7}`), nil
}

type mockAgentClient struct {
	chatFn    func(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error)
	requests  []llm.AgentRequest
	callCount int
}

func (m *mockAgentClient) ChatWithTools(ctx context.Context, req llm.AgentRequest) (*llm.AgentResponse, error) {
	m.callCount++
	m.requests = append(m.requests, req)
	if m.chatFn != nil {
		return m.chatFn(ctx, req)
	}
	return &llm.AgentResponse{Content: "<QUESTION>Hosted?<eoa>", FinishReason: "stop"}, nil
}

func (m *mockAgentClient) Model() string {
	return "mock-model"
}
