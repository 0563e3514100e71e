package model

import "time"

type ArticleLabel string

const (
	ArticleLabelReal ArticleLabel = "real"
	ArticleLabelFake ArticleLabel = "fake"
)

// NewsArticle is produced once per generate request and never mutated afterwards.
type NewsArticle struct {
	CreatedAt       time.Time    `json:"created_at"`
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Body            string       `json:"text"`
	Subject         string       `json:"subject"`
	PublicationDate string       `json:"date"`
	Label           ArticleLabel `json:"label"`
}

// Prediction is the classifier oracle output. Confidence is a percentage.
type Prediction struct {
	Label      string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

type VerificationResult struct {
	Verdict   bool    `json:"verdict"`
	SourceURL *string `json:"source_url,omitempty"`
	Reasoning *string `json:"reasoning,omitempty"`
}

type FinalVerdict struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence,omitempty"`
	Source     *string  `json:"source,omitempty"`
}

const TrueNewsLabel = "True News"

// Detection is everything the detector produced for one article.
type Detection struct {
	Prediction   Prediction          `json:"prediction"`
	Verification *VerificationResult `json:"verification,omitempty"`
	Verdict      FinalVerdict        `json:"verdict"`
}

type Intent string

const (
	IntentGenerate  Intent = "generate"
	IntentSummarize Intent = "summarize"
	IntentSentiment Intent = "sentiment"
	IntentAnalyze   Intent = "analyze"
	IntentVerify    Intent = "verify"
	IntentNone      Intent = "none"
)

// Intents lists every routable intent in tool-enum order.
var Intents = []Intent{IntentGenerate, IntentSummarize, IntentSentiment, IntentAnalyze, IntentVerify, IntentNone}

func (i Intent) Valid() bool {
	for _, known := range Intents {
		if i == known {
			return true
		}
	}
	return false
}

type Agent string

const (
	AgentCreator    Agent = "content_creator"
	AgentAnalyst    Agent = "analyst"
	AgentDetector   Agent = "detector"
	AgentSupervisor Agent = "supervisor"
)

type ThreadMessage struct {
	CreatedAt time.Time `json:"created_at"`
	Role      string    `json:"role"` // "user" or the answering agent
	Content   string    `json:"content"`
	Intent    Intent    `json:"intent,omitempty"`
}

// Sentiment is the analyst's tone reading of an article.
type Sentiment struct {
	Sentiment string   `json:"sentiment"`
	Tone      string   `json:"tone"`
	KeyTopics []string `json:"key_topics"`
}

// Thread is the supervisor conversation. Article stays until the user asks for a new one.
type Thread struct {
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	ID        string          `json:"id"`
	Messages  []ThreadMessage `json:"messages"`
	Article   *NewsArticle    `json:"article,omitempty"`
	Summary   *string         `json:"summary,omitempty"`
	Sentiment *Sentiment      `json:"sentiment,omitempty"`
	Detection *Detection      `json:"detection,omitempty"`
}
