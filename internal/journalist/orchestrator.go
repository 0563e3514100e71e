package journalist

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"pressroom.app/pressroom/common/id"
	"pressroom.app/pressroom/common/logger"
	"pressroom.app/pressroom/internal/model"
)

var (
	ErrNoActiveSession = errors.New("no active session")
	ErrEmptyAnswer     = errors.New("empty response")
)

const defaultGuestRole = "CEO"

// PersonaSource resolves persona ids, falling back to a default persona.
type PersonaSource interface {
	Get(id string) model.Persona
}

type OrchestratorConfig struct {
	HistoryBudget int
	ExplainModes  []string // nil disables per-turn explanations
	PrimaryMode   string   // mode surfaced as TurnResult.Explanation
}

type StartInput struct {
	PersonaID string
	Topic     string
	GuestRole string
	Speech    string
}

type TurnResult struct {
	Question     string
	Explanation  string
	Explanations map[string]string
	Closing      bool // the journalist ended the conference
	Degraded     bool // the question is an error placeholder
}

type StopResult struct {
	Analysis json.RawMessage
	Failed   bool
}

// Orchestrator runs the journalist state machine
// (NoSession -> Active -> Ended) over an explicit *model.SessionState.
// It never persists state; callers own storage and per-session exclusivity.
type Orchestrator struct {
	cfg       OrchestratorConfig
	personas  PersonaSource
	generator Generator
	explainer Explainer
	analyzer  Analyzer
	now       func() time.Time
	newID     func() string
}

type Option func(*Orchestrator)

// WithExplainer enables per-turn explanations over cfg.ExplainModes.
func WithExplainer(e Explainer) Option {
	return func(o *Orchestrator) { o.explainer = e }
}

// WithAnalyzer sets the end-of-conference analyzer used by Stop.
func WithAnalyzer(a Analyzer) Option {
	return func(o *Orchestrator) { o.analyzer = a }
}

// WithClock overrides time and id generation, for deterministic tests.
func WithClock(now func() time.Time, newID func() string) Option {
	return func(o *Orchestrator) {
		o.now = now
		o.newID = newID
	}
}

func NewOrchestrator(cfg OrchestratorConfig, personas PersonaSource, generator Generator, opts ...Option) *Orchestrator {
	if cfg.HistoryBudget <= 0 {
		cfg.HistoryBudget = DefaultHistoryBudget
	}
	if cfg.PrimaryMode == "" {
		cfg.PrimaryMode = ModeSHAP
	}
	o := &Orchestrator{
		cfg:       cfg,
		personas:  personas,
		generator: generator,
		now:       time.Now,
		newID:     id.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start opens a conference and asks the first question.
func (o *Orchestrator) Start(ctx context.Context, in StartInput) (*model.SessionState, TurnResult, error) {
	p := o.personas.Get(in.PersonaID)
	now := o.now()
	state := &model.SessionState{
		ID:            o.newID(),
		PersonaID:     p.ID,
		Topic:         strings.TrimSpace(in.Topic),
		GuestRole:     orDefault(strings.TrimSpace(in.GuestRole), defaultGuestRole),
		OpeningSpeech: in.Speech,
		Status:        model.SessionStatusActive,
		History:       []model.ConversationTurn{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: &state.ID,
		Persona:   &state.PersonaID,
		Component: "pressroom.journalist.orchestrator",
	})
	slog.InfoContext(ctx, "starting press conference",
		"topic", state.Topic,
		"guest_role", state.GuestRole,
		"speech_chars", len(state.OpeningSpeech))

	result := o.runTurn(ctx, state, p)
	return state, result, nil
}

// Reply records the guest's answer and asks the next question. It fails
// with ErrNoActiveSession or ErrEmptyAnswer without touching state.
func (o *Orchestrator) Reply(ctx context.Context, state *model.SessionState, answer string) (TurnResult, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return TurnResult{}, ErrEmptyAnswer
	}
	if !state.Active() {
		return TurnResult{}, ErrNoActiveSession
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: &state.ID,
		Persona:   &state.PersonaID,
		Component: "pressroom.journalist.orchestrator",
	})

	// guest turn lands before dispatch so a timeout cannot lose it
	state.Append(model.ConversationTurn{Speaker: model.RoleGuest, Content: answer})
	state.UpdatedAt = o.now()
	slog.InfoContext(ctx, "guest replied", "answer", logger.Truncate(answer, 200), "turns", len(state.History))

	return o.runTurn(ctx, state, o.personas.Get(state.PersonaID)), nil
}

// Stop analyzes the whole conference and ends it. An analysis failure is
// reported inside the result; the session still ends.
func (o *Orchestrator) Stop(ctx context.Context, state *model.SessionState) (StopResult, error) {
	if !state.Active() {
		return StopResult{}, ErrNoActiveSession
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		SessionID: &state.ID,
		Persona:   &state.PersonaID,
		Component: "pressroom.journalist.orchestrator",
	})

	var result StopResult
	if o.analyzer == nil {
		result.Analysis = localAnalysis(state)
	} else {
		analysis, err := o.analyzer.Analyze(ctx, state)
		if err != nil {
			slog.WarnContext(ctx, "conference analysis failed", "error", err)
			result = StopResult{Analysis: analysisError(err), Failed: true}
		} else {
			result.Analysis = analysis
		}
	}

	state.Status = model.SessionStatusEnded
	state.UpdatedAt = o.now()
	slog.InfoContext(ctx, "press conference stopped", "turns", len(state.History), "analysis_failed", result.Failed)
	return result, nil
}

// Reset is legal from any state and always yields NoSession.
func (o *Orchestrator) Reset(_ context.Context, state *model.SessionState) *model.SessionState {
	if state != nil {
		state.Status = model.SessionStatusEnded
	}
	return nil
}

func (o *Orchestrator) runTurn(ctx context.Context, state *model.SessionState, p model.Persona) TurnResult {
	summary := SummarizeHistory(state.History, o.cfg.HistoryBudget)
	prompt := BuildPrompt(p, state.Topic, state.GuestRole, state.OpeningSpeech, summary)

	var result TurnResult
	raw, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		slog.ErrorContext(ctx, "question generation failed", "error", err)
		result.Question = Placeholder(err)
		result.Degraded = true
	} else {
		result.Question = ExtractQuestion(raw)
		result.Closing = IsClosing(result.Question)
		slog.DebugContext(ctx, "model output", "raw", logger.Truncate(raw, 400))
	}

	state.Append(model.ConversationTurn{Speaker: model.RoleJournalist, Content: result.Question})
	state.UpdatedAt = o.now()

	if o.explainer != nil && len(o.cfg.ExplainModes) > 0 && !result.Degraded && !result.Closing {
		result.Explanations = ExplainAll(ctx, o.explainer, state.OpeningSpeech, result.Question, o.cfg.ExplainModes)
		result.Explanation = result.Explanations[o.cfg.PrimaryMode]
	}
	state.LastExplanation = result.Explanation
	state.LastExplanations = result.Explanations

	slog.InfoContext(ctx, "journalist asked",
		"question", logger.Truncate(result.Question, 200),
		"turn", state.Turns(),
		"degraded", result.Degraded,
		"closing", result.Closing)
	return result
}
