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

type summaryResult struct {
	Summary string `json:"summary" jsonschema:"required,description=Summary of the article in 2 to 3 sentences"`
}

type sentimentResult struct {
	Sentiment string   `json:"sentiment" jsonschema:"required,enum=positive,enum=negative,enum=neutral"`
	Tone      string   `json:"tone" jsonschema:"required,enum=objective,enum=sensational,enum=biased"`
	KeyTopics []string `json:"key_topics" jsonschema:"required,description=Two or three key topics of the article"`
}

type analysisResult struct {
	Summary   string   `json:"summary" jsonschema:"required,description=Summary of the article in 2 to 3 sentences"`
	Sentiment string   `json:"sentiment" jsonschema:"required,enum=positive,enum=negative,enum=neutral"`
	Tone      string   `json:"tone" jsonschema:"required,enum=objective,enum=sensational,enum=biased"`
	KeyTopics []string `json:"key_topics" jsonschema:"required,description=Two or three key topics of the article"`
}

const analystPrompt = `You are the analyst of a newsroom. You read one article and report on it.
Only produce the fields requested. Be factual and concise.`

// Analysis holds whichever parts the caller asked for.
type Analysis struct {
	Summary   *string
	Sentiment *model.Sentiment
}

// Analyst summarizes articles and reads their tone. Each public method is a
// single model call.
type Analyst struct {
	client llm.Client
}

func NewAnalyst(client llm.Client) *Analyst {
	return &Analyst{client: client}
}

func (a *Analyst) Summarize(ctx context.Context, article *model.NewsArticle) (string, error) {
	var out summaryResult
	if err := a.chat(ctx, "summarize_text", article, llm.GenerateSchema[summaryResult](), &out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Summary), nil
}

func (a *Analyst) Sentiment(ctx context.Context, article *model.NewsArticle) (*model.Sentiment, error) {
	var out sentimentResult
	if err := a.chat(ctx, "analyze_sentiment", article, llm.GenerateSchema[sentimentResult](), &out); err != nil {
		return nil, err
	}
	return toSentiment(out), nil
}

// Analyze returns both the summary and the sentiment from one call.
func (a *Analyst) Analyze(ctx context.Context, article *model.NewsArticle) (*Analysis, error) {
	var out analysisResult
	if err := a.chat(ctx, "analyze_article", article, llm.GenerateSchema[analysisResult](), &out); err != nil {
		return nil, err
	}
	summary := strings.TrimSpace(out.Summary)
	return &Analysis{Summary: &summary, Sentiment: toSentiment(sentimentResult{Sentiment: out.Sentiment, Tone: out.Tone, KeyTopics: out.KeyTopics})}, nil
}

func (a *Analyst) chat(ctx context.Context, schemaName string, article *model.NewsArticle, schema, out any) error {
	if article == nil {
		return fmt.Errorf("%s: no article", schemaName)
	}
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pressroom.newsroom.analyst"})

	_, err := a.client.Chat(ctx, llm.Request{
		SystemPrompt: analystPrompt,
		UserPrompt:   articleText(article),
		SchemaName:   schemaName,
		Schema:       schema,
		MaxTokens:    500,
		Temperature:  llm.Temp(0.2),
	}, out)
	if err != nil {
		return fmt.Errorf("%s: %w", schemaName, err)
	}
	slog.DebugContext(ctx, "analysis completed", "tool", schemaName, "article_id", article.ID)
	return nil
}

func toSentiment(r sentimentResult) *model.Sentiment {
	topics := make([]string, 0, len(r.KeyTopics))
	for _, t := range r.KeyTopics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	return &model.Sentiment{
		Sentiment: strings.ToLower(strings.TrimSpace(r.Sentiment)),
		Tone:      strings.ToLower(strings.TrimSpace(r.Tone)),
		KeyTopics: topics,
	}
}

func articleText(a *model.NewsArticle) string {
	return fmt.Sprintf("Title: %s\nSubject: %s\nDate: %s\n\n%s", a.Title, a.Subject, a.PublicationDate, a.Body)
}
