package newsroom

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"pressroom.app/pressroom/common/llm"
	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
)

// Decision is what the intent layer inferred from one user message.
type Decision struct {
	Intent  model.Intent
	Subject string
	Date    string
	Reason  string
}

// IntentClassifier infers the user's intent. Its output is advisory: the
// Router still enforces the one-hop policy on top of it.
type IntentClassifier interface {
	Classify(ctx context.Context, thread *model.Thread, message string) (Decision, error)
}

var (
	subjectLine = regexp.MustCompile(`(?im)^[ \t]*subject[ \t]*:[ \t]*(.+?)[ \t]*$`)
	dateLine    = regexp.MustCompile(`(?im)^[ \t]*date[ \t]*:[ \t]*(.+?)[ \t]*$`)
	isoDate     = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	aboutPhrase = regexp.MustCompile(`(?i)\b(?:about|regarding|covering)\s+(.+?)(?:\s+(?:on|for|dated)\s+\d{4}-\d{2}-\d{2})?\s*(?:[.?!\n]|$)`)
)

// ParseArticleRequest reads "Subject:" and "Date:" lines, then falls back to
// an ISO date and an "about X" phrase anywhere in the message.
func ParseArticleRequest(message string) (subject, date string) {
	if m := subjectLine.FindStringSubmatch(message); m != nil {
		subject = m[1]
	}
	if m := dateLine.FindStringSubmatch(message); m != nil {
		date = m[1]
	}
	if date == "" {
		date = isoDate.FindString(message)
	}
	if subject == "" {
		if m := aboutPhrase.FindStringSubmatch(message); m != nil {
			subject = m[1]
		}
	}
	return strings.TrimSpace(subject), strings.TrimSpace(date)
}

// KeywordClassifier is the deterministic fallback classifier. Generation
// needs an explicit request; a message that points back at the current
// article goes to the analyst or detector even if it also says "new" or
// "created".
type KeywordClassifier struct{}

var (
	generateVerb   = regexp.MustCompile(`(?i)\b(?:generate|write|create|draft|produce|génère|rédige)\b`)
	newArticle     = regexp.MustCompile(`(?i)\b(?:another|a\s+new|a\s+fresh|a\s+different|one\s+more)\s+(?:news\s+)?(?:article|story|piece)\b`)
	summarizeWords = regexp.MustCompile(`(?i)\b(?:summar|résum|recap|gist\b|tl;?dr\b)`)
	sentimentWords = regexp.MustCompile(`(?i)\b(?:sentiment|tone|mood|emotion|bias)`)
	analyzeWords   = regexp.MustCompile(`(?i)\banaly[sz]`)
	verifyWords    = regexp.MustCompile(`(?i)\b(?:verif|vérifi|fake|true\b|truth|real\b|fact.?check|detect|credib|legit|hoax|misinfo|check\s+(?:it|this|that|the)\b)`)
	existingRef    = regexp.MustCompile(`(?i)\b(?:the|this|that|current|previous|last|same|above|your)\s+(?:new\s+|latest\s+|generated\s+)?(?:news\s+)?(?:article|story|piece|text)\b|\bit\b|\b(?:created|generated|wrote|written|produced|drafted)\b`)
)

func (KeywordClassifier) Classify(_ context.Context, _ *model.Thread, message string) (Decision, error) {
	subject, date := ParseArticleRequest(message)
	d := Decision{Subject: subject, Date: date, Reason: "keyword match"}

	summarize := summarizeWords.MatchString(message)
	sentiment := sentimentWords.MatchString(message)
	analyze := analyzeWords.MatchString(message)
	verify := verifyWords.MatchString(message)
	followUp := (summarize || sentiment || analyze || verify) && existingRef.MatchString(message)

	generate := generateVerb.MatchString(message) || newArticle.MatchString(message) || subjectLine.MatchString(message)

	switch {
	case generate && !followUp:
		d.Intent = model.IntentGenerate
	case summarize && sentiment, analyze:
		d.Intent = model.IntentAnalyze
	case summarize:
		d.Intent = model.IntentSummarize
	case sentiment:
		d.Intent = model.IntentSentiment
	case verify:
		d.Intent = model.IntentVerify
	default:
		d.Intent = model.IntentNone
		d.Reason = "no keyword matched"
	}
	return d, nil
}

const routeIntentTool = "route_intent"

// RouteIntentParams is the schema of the route_intent tool.
type RouteIntentParams struct {
	Intent  string `json:"intent" jsonschema:"required,enum=generate,enum=summarize,enum=sentiment,enum=analyze,enum=verify,enum=none,description=The single operation the user asked for in their latest message"`
	Subject string `json:"subject,omitempty" jsonschema:"description=News subject or category when generating"`
	Date    string `json:"date,omitempty" jsonschema:"description=Publication date YYYY-MM-DD when generating"`
	Reason  string `json:"reason" jsonschema:"required,description=One short sentence explaining the choice"`
}

const supervisorPrompt = `You route requests in a newsroom with three agents: a content creator, an analyst and a fake-news detector.
Classify ONLY the user's latest message by calling route_intent exactly once.

Intents:
- generate: the user asks for a new news article (explicitly new, another, or the first one).
- summarize: the user asks ONLY for a summary of the current article.
- sentiment: the user asks ONLY for the sentiment or tone of the current article.
- analyze: the user asks for both summary and sentiment.
- verify: the user asks whether the current article is real, fake or credible.
- none: anything else.

Never infer extra work the user did not ask for. Asking about the existing article is never a request to generate.`

// LLMClassifier asks a chat model to call route_intent, falling back to
// the keyword classifier when the call fails or returns nothing usable.
type LLMClassifier struct {
	client   llm.AgentClient
	fallback IntentClassifier
}

func NewLLMClassifier(client llm.AgentClient) *LLMClassifier {
	return &LLMClassifier{client: client, fallback: KeywordClassifier{}}
}

func (c *LLMClassifier) Classify(ctx context.Context, thread *model.Thread, message string) (Decision, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "pressroom.newsroom.intent"})

	resp, err := c.client.ChatWithTools(ctx, llm.AgentRequest{
		Messages: []llm.Message{
			{Role: "system", Content: supervisorPrompt},
			{Role: "user", Content: classifierContext(thread, message)},
		},
		Tools: []llm.Tool{{
			Name:        routeIntentTool,
			Description: "Record the intent of the user's latest message.",
			Parameters:  llm.GenerateSchema[RouteIntentParams](),
		}},
		MaxTokens:   256,
		Temperature: llm.Temp(0),
	})
	if err != nil {
		slog.WarnContext(ctx, "intent classification failed, using keywords", "error", err)
		return c.fallback.Classify(ctx, thread, message)
	}

	call, ok := llm.FindToolCall(resp, routeIntentTool)
	if !ok {
		slog.WarnContext(ctx, "model did not call route_intent, using keywords",
			"content", logger.Truncate(resp.Content, 200))
		return c.fallback.Classify(ctx, thread, message)
	}
	args, err := llm.ParseToolArguments[RouteIntentParams](call.Arguments)
	if err != nil || !model.Intent(args.Intent).Valid() {
		slog.WarnContext(ctx, "invalid route_intent arguments, using keywords",
			"arguments", logger.Truncate(call.Arguments, 200), "error", err)
		return c.fallback.Classify(ctx, thread, message)
	}

	d := Decision{Intent: model.Intent(args.Intent), Subject: args.Subject, Date: args.Date, Reason: args.Reason}
	// explicit Subject:/Date: lines beat the model's paraphrase
	if subject, date := ParseArticleRequest(message); subject != "" || date != "" {
		if subject != "" {
			d.Subject = subject
		}
		if date != "" {
			d.Date = date
		}
	}
	return d, nil
}

func classifierContext(thread *model.Thread, message string) string {
	var b strings.Builder
	if thread != nil && thread.Article != nil {
		fmt.Fprintf(&b, "Current article in this thread: %q (subject %s, %s)\n", thread.Article.Title, thread.Article.Subject, thread.Article.PublicationDate)
	} else {
		b.WriteString("No article has been generated in this thread yet.\n")
	}
	if thread != nil && len(thread.Messages) > 0 {
		b.WriteString("\nRecent messages:\n")
		start := max(0, len(thread.Messages)-4)
		for _, m := range thread.Messages[start:] {
			fmt.Fprintf(&b, "- %s: %s\n", m.Role, logger.Truncate(m.Content, 200))
		}
	}
	fmt.Fprintf(&b, "\nLatest user message:\n%s", message)
	return b.String()
}
