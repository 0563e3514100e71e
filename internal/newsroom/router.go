package newsroom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
)

var ErrEmptyMessage = errors.New("empty message")

const (
	NoArticleReply = "There is no article in this conversation yet. Ask me to generate one first."
	HelpReply      = "I can generate a news article, summarize it, read its sentiment, or check whether it is fake. What would you like?"
)

type ArticleCreator interface {
	Generate(ctx context.Context, subject, date string) (*model.NewsArticle, error)
}

type ArticleAnalyst interface {
	Summarize(ctx context.Context, article *model.NewsArticle) (string, error)
	Sentiment(ctx context.Context, article *model.NewsArticle) (*model.Sentiment, error)
	Analyze(ctx context.Context, article *model.NewsArticle) (*Analysis, error)
}

type ArticleDetector interface {
	Detect(ctx context.Context, article *model.NewsArticle) (*model.Detection, error)
}

// Request is one user message. Subject and Date, when set, override what the
// classifier extracted from Content.
type Request struct {
	Content string
	Subject string
	Date    string
}

// Outcome reports the single hop taken for a message.
type Outcome struct {
	Intent    model.Intent
	Agent     model.Agent
	Reply     string
	Article   *model.NewsArticle
	Summary   *string
	Sentiment *model.Sentiment
	Detection *model.Detection
	Failed    bool
}

// Router is the supervisor: it classifies each message and dispatches it to
// at most one sub-agent.
type Router struct {
	classifier IntentClassifier
	creator    ArticleCreator
	analyst    ArticleAnalyst
	detector   ArticleDetector
	now        func() time.Time
}

func NewRouter(classifier IntentClassifier, creator ArticleCreator, analyst ArticleAnalyst, detector ArticleDetector) *Router {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	return &Router{
		classifier: classifier,
		creator:    creator,
		analyst:    analyst,
		detector:   detector,
		now:        time.Now,
	}
}

// Handle routes one message and records both sides of the exchange on thread.
// Sub-agent failures become a failed reply, not an error.
func (r *Router) Handle(ctx context.Context, thread *model.Thread, req Request) (*Outcome, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if thread == nil {
		return nil, fmt.Errorf("handle message: nil thread")
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ThreadID:  logger.Ptr(thread.ID),
		Component: "pressroom.newsroom.router",
	})

	decision, err := r.classifier.Classify(ctx, thread, content)
	if err != nil {
		slog.WarnContext(ctx, "intent classification failed", "error", err)
		decision = Decision{Intent: model.IntentNone}
	}
	if !decision.Intent.Valid() {
		decision.Intent = model.IntentNone
	}
	if s := strings.TrimSpace(req.Subject); s != "" {
		decision.Subject = s
	}
	if d := strings.TrimSpace(req.Date); d != "" {
		decision.Date = d
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Intent: logger.Ptr(string(decision.Intent))})
	slog.InfoContext(ctx, "message routed", "reason", logger.Truncate(decision.Reason, 200))

	r.record(thread, model.ThreadMessage{Role: "user", Content: content, Intent: decision.Intent})

	out := r.dispatch(ctx, thread, decision)
	out.Intent = decision.Intent
	r.record(thread, model.ThreadMessage{Role: string(out.Agent), Content: out.Reply, Intent: decision.Intent})
	return out, nil
}

func (r *Router) dispatch(ctx context.Context, thread *model.Thread, d Decision) *Outcome {
	switch d.Intent {
	case model.IntentGenerate:
		return r.generate(ctx, thread, d)
	case model.IntentSummarize, model.IntentSentiment, model.IntentAnalyze:
		if thread.Article == nil {
			return &Outcome{Agent: model.AgentSupervisor, Reply: NoArticleReply}
		}
		return r.analyze(ctx, thread, d.Intent)
	case model.IntentVerify:
		if thread.Article == nil {
			return &Outcome{Agent: model.AgentSupervisor, Reply: NoArticleReply}
		}
		return r.verify(ctx, thread)
	default:
		return &Outcome{Agent: model.AgentSupervisor, Reply: HelpReply}
	}
}

func (r *Router) generate(ctx context.Context, thread *model.Thread, d Decision) *Outcome {
	out := &Outcome{Agent: model.AgentCreator}
	if r.creator == nil {
		return failed(out, "news generation is not configured")
	}
	article, err := r.creator.Generate(ctx, d.Subject, d.Date)
	if err != nil {
		slog.ErrorContext(ctx, "article generation failed", "error", err)
		return failed(out, "I could not generate an article right now.")
	}

	// a new article invalidates everything derived from the old one
	thread.Article = article
	thread.Summary = nil
	thread.Sentiment = nil
	thread.Detection = nil

	out.Article = article
	out.Reply = FormatArticle(article)
	return out
}

func (r *Router) analyze(ctx context.Context, thread *model.Thread, intent model.Intent) *Outcome {
	out := &Outcome{Agent: model.AgentAnalyst, Article: thread.Article}
	if r.analyst == nil {
		return failed(out, "analysis is not configured")
	}

	var err error
	switch intent {
	case model.IntentSummarize:
		var summary string
		if summary, err = r.analyst.Summarize(ctx, thread.Article); err == nil {
			out.Summary = &summary
		}
	case model.IntentSentiment:
		out.Sentiment, err = r.analyst.Sentiment(ctx, thread.Article)
	default:
		var a *Analysis
		if a, err = r.analyst.Analyze(ctx, thread.Article); err == nil {
			out.Summary, out.Sentiment = a.Summary, a.Sentiment
		}
	}
	if err != nil {
		slog.ErrorContext(ctx, "article analysis failed", "error", err)
		return failed(out, "I could not analyze the article right now.")
	}

	if out.Summary != nil {
		thread.Summary = out.Summary
	}
	if out.Sentiment != nil {
		thread.Sentiment = out.Sentiment
	}
	out.Reply = FormatAnalysis(out.Summary, out.Sentiment)
	return out
}

func (r *Router) verify(ctx context.Context, thread *model.Thread) *Outcome {
	out := &Outcome{Agent: model.AgentDetector, Article: thread.Article}
	if r.detector == nil {
		return failed(out, "fake-news detection is not configured")
	}
	detection, err := r.detector.Detect(ctx, thread.Article)
	if err != nil {
		slog.ErrorContext(ctx, "detection failed", "error", err)
		return failed(out, "I could not check the article right now.")
	}
	thread.Detection = detection
	out.Detection = detection
	out.Reply = FormatVerdict(detection.Verdict)
	return out
}

func (r *Router) record(thread *model.Thread, msg model.ThreadMessage) {
	msg.CreatedAt = r.now()
	thread.Messages = append(thread.Messages, msg)
	thread.UpdatedAt = msg.CreatedAt
}

func failed(out *Outcome, reply string) *Outcome {
	out.Failed = true
	out.Reply = reply
	return out
}

func FormatArticle(a *model.NewsArticle) string {
	return fmt.Sprintf("%s\n\n%s\n\nSubject: %s | Date: %s", a.Title, a.Body, a.Subject, a.PublicationDate)
}

func FormatAnalysis(summary *string, sentiment *model.Sentiment) string {
	var parts []string
	if summary != nil {
		parts = append(parts, "Summary: "+*summary)
	}
	if sentiment != nil {
		parts = append(parts, fmt.Sprintf("Sentiment: %s\nTone: %s\nKey topics: %s",
			sentiment.Sentiment, sentiment.Tone, strings.Join(sentiment.KeyTopics, ", ")))
	}
	return strings.Join(parts, "\n\n")
}

func FormatVerdict(v model.FinalVerdict) string {
	switch {
	case v.Source != nil:
		return fmt.Sprintf("Verdict: %s (source: %s)", v.Label, *v.Source)
	case v.Confidence != nil:
		return fmt.Sprintf("Verdict: %s (confidence %.2f%%)", v.Label, *v.Confidence)
	default:
		return "Verdict: " + v.Label
	}
}
