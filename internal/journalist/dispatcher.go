package journalist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
	"pressroom.app/pressroom/internal/remote"
)

// Generator turns a prompt into raw model text. Implementations report
// failures with the remote error taxonomy (remote.ErrNetwork,
// *remote.StatusError, remote.ErrMalformedResponse).
type Generator interface {
	Generate(ctx context.Context, prompt model.Prompt) (string, error)
}

// TunnelGenerator posts to a self-hosted generation endpoint.
type TunnelGenerator struct {
	client   *remote.Client
	url      string
	messages bool
}

type generateResponse struct {
	Response *string `json:"response"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewTunnelGenerator posts {prompt} by default, or {messages} when
// messages is set.
func NewTunnelGenerator(client *remote.Client, url string, messages bool) *TunnelGenerator {
	return &TunnelGenerator{client: client, url: url, messages: messages}
}

func (g *TunnelGenerator) Generate(ctx context.Context, prompt model.Prompt) (string, error) {
	var payload any = map[string]string{"prompt": prompt.Merged()}
	if g.messages {
		payload = map[string][]chatMessage{"messages": {
			{Role: "system", Content: strings.TrimSpace(prompt.System)},
			{Role: "user", Content: strings.TrimSpace(prompt.User)},
		}}
	}

	var out generateResponse
	if err := g.client.PostJSON(ctx, g.url, payload, &out); err != nil {
		return "", err
	}
	if out.Response == nil {
		return "", fmt.Errorf("generate: missing response field: %w", remote.ErrMalformedResponse)
	}
	return *out.Response, nil
}

// LLMGenerator asks a hosted chat model for the next question.
type LLMGenerator struct {
	client      llm.AgentClient
	maxTokens   int
	temperature *float64
}

func NewLLMGenerator(client llm.AgentClient, maxTokens int) *LLMGenerator {
	return &LLMGenerator{client: client, maxTokens: maxTokens, temperature: llm.Temp(0.7)}
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt model.Prompt) (string, error) {
	resp, err := g.client.ChatWithTools(ctx, llm.AgentRequest{
		Messages: []llm.Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", classifyLLMError(g.client.Model(), err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%s: empty completion (finish_reason=%s): %w",
			g.client.Model(), resp.FinishReason, remote.ErrMalformedResponse)
	}
	return resp.Content, nil
}

func classifyLLMError(model string, err error) error {
	if status, ok := llm.StatusCode(err); ok {
		return &remote.StatusError{Endpoint: model, StatusCode: status, Body: logger.Truncate(err.Error(), 512)}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", model, remote.ErrNetwork, err)
}

// RetryingGenerator retries retryable failures with linear backoff.
type RetryingGenerator struct {
	next     Generator
	attempts int
	backoff  time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

// WithRetry wraps g so it is attempted up to attempts times.
func WithRetry(g Generator, attempts int, backoff time.Duration) *RetryingGenerator {
	if attempts < 1 {
		attempts = 1
	}
	return &RetryingGenerator{next: g, attempts: attempts, backoff: backoff, sleep: sleepCtx}
}

func (r *RetryingGenerator) Generate(ctx context.Context, prompt model.Prompt) (string, error) {
	sc := logger.StartSpan(ctx, "journalist.generate")
	defer sc.End()
	ctx = sc.Context()

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		sc.SetAttributes(attribute.Int("generate.attempt", attempt))

		raw, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err

		if attempt == r.attempts || !remote.IsRetryable(err) {
			break
		}

		wait := r.backoff * time.Duration(attempt)
		slog.WarnContext(ctx, "generation failed, retrying",
			"attempt", attempt,
			"max_attempts", r.attempts,
			"backoff_ms", wait.Milliseconds(),
			"error", err)
		if err := r.sleep(ctx, wait); err != nil {
			break
		}
	}

	sc.Fail(lastErr)
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Placeholder renders a dispatch failure as the inline text shown in place
// of the question, so the conference can continue.
func Placeholder(err error) string {
	if errors.Is(err, remote.ErrMalformedResponse) {
		return "[Error decoding backend response: " + remote.Describe(err) + "]"
	}
	return "[Error contacting backend: " + remote.Describe(err) + "]"
}
