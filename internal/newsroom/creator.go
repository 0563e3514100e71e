package newsroom

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pressroom.app/pressroom/common/id"
	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
)

const (
	DefaultSubject = "News"
	dateLayout     = "2006-01-02"
)

type GeneratedNews struct {
	Title   string `json:"title" jsonschema:"required,description=Headline of the article"`
	Text    string `json:"text" jsonschema:"required,description=Body of the article in 2 to 4 sentences"`
	Subject string `json:"subject" jsonschema:"required,description=Subject or category of the article"`
	Date    string `json:"date" jsonschema:"required,description=Publication date formatted YYYY-MM-DD"` // ignored: the requested date wins
	Label   string `json:"label" jsonschema:"required,enum=real,enum=fake,description=Whether the article is plausible real news or deliberately fabricated"`
}

const creatorPrompt = `You are the content creator of a newsroom that trains fake-news detectors.
Write one short news article for the requested subject and date.
Decide yourself whether it is realistic (label "real") or fabricated but believable (label "fake").
The body must be 2 to 4 sentences in a neutral wire-service style. Return only the structured fields.`

// Creator produces one article per call.
type Creator struct {
	client llm.Client
	now    func() time.Time
}

func NewCreator(client llm.Client) *Creator {
	return &Creator{client: client, now: time.Now}
}

// Generate writes an article. A blank subject falls back to DefaultSubject
// and a blank or unparseable date to today's date.
func (c *Creator) Generate(ctx context.Context, subject, date string) (*model.NewsArticle, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pressroom.newsroom.creator"})

	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = DefaultSubject
	}
	date = normalizeDate(date, c.now())

	var out GeneratedNews
	_, err := c.client.Chat(ctx, llm.Request{
		SystemPrompt: creatorPrompt,
		UserPrompt:   fmt.Sprintf("Subject: %s\nDate: %s", subject, date),
		SchemaName:   "generate_news_article",
		Schema:       llm.GenerateSchema[GeneratedNews](),
		MaxTokens:    600,
		Temperature:  llm.Temp(0.9),
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("generate article: %w", err)
	}
	if strings.TrimSpace(out.Title) == "" || strings.TrimSpace(out.Text) == "" {
		return nil, fmt.Errorf("generate article: model returned an empty title or body")
	}

	article := &model.NewsArticle{
		CreatedAt:       c.now(),
		ID:              id.NewString(),
		Title:           strings.TrimSpace(out.Title),
		Body:            strings.TrimSpace(out.Text),
		Subject:         firstNonEmpty(out.Subject, subject),
		PublicationDate: date,
		Label:           model.ArticleLabelReal,
	}
	if strings.EqualFold(strings.TrimSpace(out.Label), string(model.ArticleLabelFake)) {
		article.Label = model.ArticleLabelFake
	}

	slog.InfoContext(ctx, "article generated",
		"article_id", article.ID,
		"subject", article.Subject,
		"label", article.Label)
	return article, nil
}

func normalizeDate(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if t, err := time.Parse(dateLayout, date); err == nil {
		return t.Format(dateLayout)
	}
	return now.Format(dateLayout)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
