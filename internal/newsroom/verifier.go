package newsroom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
)

// Verifier cross-checks an article against what is publicly known.
type Verifier interface {
	Verify(ctx context.Context, article *model.NewsArticle) (*model.VerificationResult, error)
}

type webVerification struct {
	Verified  bool   `json:"verified" jsonschema:"required,description=True only if credible sources report the same facts"`
	URL       string `json:"url" jsonschema:"required,description=URL of the best supporting source or an empty string"`
	Reasoning string `json:"reasoning" jsonschema:"required,description=One or two sentences explaining the decision"`
}

const verifierPrompt = `You are a fact-checker. Decide whether the article below is reported by credible outlets.
Answer verified=true only when you are confident that reputable sources describe the same event.
When verified, give the most relevant source URL. Otherwise leave url empty.`

// LLMVerifier asks a chat model to act as the web search step.
type LLMVerifier struct {
	client llm.Client
}

func NewLLMVerifier(client llm.Client) *LLMVerifier {
	return &LLMVerifier{client: client}
}

func (v *LLMVerifier) Verify(ctx context.Context, article *model.NewsArticle) (*model.VerificationResult, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pressroom.newsroom.verifier"})

	var out webVerification
	_, err := v.client.Chat(ctx, llm.Request{
		SystemPrompt: verifierPrompt,
		UserPrompt:   articleText(article),
		SchemaName:   "web_search_verify",
		Schema:       llm.GenerateSchema[webVerification](),
		MaxTokens:    400,
		Temperature:  llm.Temp(0),
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("web verify: %w", err)
	}

	result := &model.VerificationResult{Verdict: out.Verified}
	if url := strings.TrimSpace(out.URL); url != "" {
		result.SourceURL = &url
	}
	if reasoning := strings.TrimSpace(out.Reasoning); reasoning != "" {
		result.Reasoning = &reasoning
	}

	slog.DebugContext(ctx, "web verification completed",
		"article_id", article.ID,
		"verified", result.Verdict)
	return result, nil
}
