package agents

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"maxwell/internal/adapters/ai"
	"maxwell/internal/domain/convlog"
	"maxwell/internal/domain/dialogue"
	"maxwell/internal/domain/personalization"
	"maxwell/internal/domain/wiki"
	"maxwell/internal/metrics"
	"maxwell/pkg/errors"
	"maxwell/pkg/logger"
)

// FactSource supplies weighted story facts for the pipeline's context
// budget. Implemented by the wiki service.
type FactSource interface {
	ContextBlocks(ctx context.Context, scope wiki.ScopeRef) ([]*wiki.Block, error)
}

// TurnState tracks where a conversation turn is in its lifecycle
type TurnState string

const (
	StateReceived        TurnState = "received"
	StateRouting         TurnState = "routing"
	StateRunningPipeline TurnState = "running_pipeline"
	StateResponding      TurnState = "responding"
	StateDone            TurnState = "done"
)

const conversationalSystemPrompt = `You are Maxwell, a friendly writing coach. The author is chatting with
you; no manuscript analysis was requested. Answer conversationally,
drawing on the dialogue history provided. Keep replies concise.`

// Front is the top-level conversation façade: per message it decides
// whether to run the full analysis pipeline or respond conversationally,
// and maintains short-term dialogue state.
type Front struct {
	router        *Router
	orchestrator  *Orchestrator
	reasoner      *ConflictReasoner
	synthesizer   *Synthesizer
	runner        Completer
	facts         FactSource
	sessions      dialogue.Store
	turnLog       convlog.Logger
	contextTokens int
	maxTokens     int
	log           *logger.Logger
}

// NewFront wires the conversation front. facts and turnLog may be nil;
// maxTokens caps each agent completion, zero means provider default.
func NewFront(
	router *Router,
	orchestrator *Orchestrator,
	reasoner *ConflictReasoner,
	synthesizer *Synthesizer,
	runner Completer,
	facts FactSource,
	sessions dialogue.Store,
	turnLog convlog.Logger,
	contextTokens int,
	maxTokens int,
) *Front {
	if turnLog == nil {
		turnLog = convlog.Noop{}
	}
	if contextTokens <= 0 {
		contextTokens = 8000
	}
	return &Front{
		router:        router,
		orchestrator:  orchestrator,
		reasoner:      reasoner,
		synthesizer:   synthesizer,
		runner:        runner,
		facts:         facts,
		sessions:      sessions,
		turnLog:       turnLog,
		contextTokens: contextTokens,
		maxTokens:     maxTokens,
		log:           logger.Get().With("component", "front"),
	}
}

// TurnRequest is one incoming user message
type TurnRequest struct {
	SessionID    string
	UserID       uuid.UUID
	ManuscriptID uuid.UUID
	ChapterID    uuid.UUID
	Message      string
	SelectedText string
	ContextText  string // pre-assembled story facts for the pipeline path
	Tone         Tone
}

// TurnResult is the complete outcome of one turn
type TurnResult struct {
	Narrative   string
	State       TurnState
	Decision    *RouteDecision
	Merged      *MergedAnalysis
	Conflicts   []Conflict
	Health      *StoryHealthAssessment
	TotalCost   decimal.Decimal
	TotalTokens int
	LatencyMs   int64
}

// HandleMessage processes one conversation turn through the state machine
// received -> [routing -> running_pipeline] -> responding -> done. A
// cancelled or failed turn returns an error with no partial narrative and
// no dialogue mutation. On success exactly one user turn and one assistant
// turn are appended, regardless of path.
func (f *Front) HandleMessage(ctx context.Context, req TurnRequest) (*TurnResult, error) {
	start := time.Now()
	result := &TurnResult{State: StateReceived}

	session, err := f.loadOrCreateSession(ctx, req)
	if err != nil {
		return nil, err
	}

	usePipeline := f.router.ShouldInvokeAgents(req.Message) && req.SelectedText != ""

	if usePipeline {
		if err := f.runPipeline(ctx, req, result); err != nil {
			metrics.ConversationTurns.WithLabelValues("pipeline", "error").Inc()
			return nil, err
		}
	} else {
		if err := f.respondConversationally(ctx, req, session, result); err != nil {
			metrics.ConversationTurns.WithLabelValues("conversational", "error").Inc()
			return nil, err
		}
	}

	result.State = StateDone
	result.LatencyMs = time.Since(start).Milliseconds()

	// Uniform history shape: one user turn, one assistant turn, whichever
	// path ran.
	session.Append(dialogue.RoleUser, req.Message)
	session.Append(dialogue.RoleAssistant, result.Narrative)
	if err := f.sessions.Save(ctx, session); err != nil {
		f.log.Warnf("Session save failed for %s: %v", session.ID, err)
	}

	f.emitTurnRecord(ctx, req, result)

	path := "conversational"
	if usePipeline {
		path = "pipeline"
	}
	metrics.ConversationTurns.WithLabelValues(path, "success").Inc()

	return result, nil
}

func (f *Front) runPipeline(ctx context.Context, req TurnRequest, result *TurnResult) error {
	result.State = StateRouting
	decision := f.router.Route(req.Message, req.SelectedText)
	result.Decision = &decision

	result.State = StateRunningPipeline
	merged := f.orchestrator.Analyze(ctx, AnalyzeRequest{
		Text:                  req.SelectedText,
		UserID:                req.UserID,
		ManuscriptID:          req.ManuscriptID,
		ChapterID:             req.ChapterID,
		SessionID:             req.SessionID,
		EnabledAgents:         decision.Agents,
		ContextText:           f.assembleStoryContext(ctx, req),
		MaxTokens:             f.maxTokens,
		IncludeAuthorInsights: true,
	})
	if err := ctx.Err(); err != nil {
		// Cancelled mid-pipeline: discard partial results, return no
		// narrative at all.
		return errors.Wrap(errors.ErrTurnCancelled, err.Error())
	}

	result.Merged = merged
	result.Conflicts = f.reasoner.FindConflicts(merged.PerAgent)
	result.Health = f.reasoner.AssessHealth(merged.PerAgent)

	result.State = StateResponding
	authorContext := ""
	if merged.AuthorInsights != nil {
		authorContext = renderInsights(merged.AuthorInsights)
	}
	synthesis, err := f.synthesizer.Synthesize(ctx, merged, result.Conflicts, req.Tone, authorContext)
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrTurnCancelled, err.Error())
		}
		return err
	}

	result.Narrative = synthesis.Narrative
	result.TotalCost = merged.TotalCost.Add(synthesis.Cost)
	result.TotalTokens = merged.TotalTokens + synthesis.Usage.TotalTokens
	return nil
}

// assembleStoryContext builds the bounded story-fact context for the
// pipeline. Wiki blocks for the manuscript scope take priority; when no
// fact source or scope is available the caller-supplied text is used,
// passed through the same budget truncation.
func (f *Front) assembleStoryContext(ctx context.Context, req TurnRequest) string {
	if f.facts != nil && (req.ManuscriptID != uuid.Nil || req.ChapterID != uuid.Nil) {
		scope := wiki.ScopeRef{
			UserID:       req.UserID,
			ManuscriptID: req.ManuscriptID,
			ChapterID:    req.ChapterID,
		}
		blocks, err := f.facts.ContextBlocks(ctx, scope)
		if err != nil {
			f.log.Warnf("Context block load failed for %s: %v", req.SessionID, err)
		} else if assembled := AssembleContext(BlocksToContext(blocks), f.contextTokens); assembled != "" {
			return assembled
		}
	}

	if req.ContextText == "" {
		return ""
	}
	return AssembleContext([]ContextBlock{{
		Weight: 1.0,
		Render: func() string { return req.ContextText },
	}}, f.contextTokens)
}

func (f *Front) respondConversationally(ctx context.Context, req TurnRequest, session *dialogue.Session, result *TurnResult) error {
	result.State = StateResponding

	// History flows through the same budget-truncation path as wiki facts.
	var rendered []string
	for _, turn := range session.Recent(20) {
		rendered = append(rendered, string(turn.Role)+": "+turn.Content)
	}
	history := AssembleContext(TurnsToContext(rendered), f.contextTokens)

	userContent := req.Message
	if history != "" {
		userContent = "Conversation so far:\n" + history + "\n\nLatest message: " + req.Message
	}

	completion, err := f.runner.Run(ctx, RunRequest{
		Label:       "conversation",
		System:      conversationalSystemPrompt,
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: userContent}},
		Temperature: 0.7,
		UserID:      req.UserID.String(),
		SessionID:   req.SessionID,
	})
	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrap(errors.ErrTurnCancelled, err.Error())
		}
		return err
	}

	result.Narrative = completion.Text
	if result.Narrative == "" {
		result.Narrative = "I'm here. Tell me more about what you're working on."
	}
	result.TotalCost = completion.Cost
	result.TotalTokens = completion.Usage.TotalTokens
	return nil
}

func (f *Front) loadOrCreateSession(ctx context.Context, req TurnRequest) (*dialogue.Session, error) {
	session, err := f.sessions.Get(ctx, req.SessionID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, errors.Wrap(err, "load dialogue session")
	}

	now := time.Now()
	return &dialogue.Session{
		ID:           req.SessionID,
		UserID:       req.UserID,
		ManuscriptID: req.ManuscriptID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// emitTurnRecord publishes the turn to the conversation log, best effort
func (f *Front) emitTurnRecord(ctx context.Context, req TurnRequest, result *TurnResult) {
	record := &convlog.TurnRecord{
		SessionID:      req.SessionID,
		UserID:         req.UserID,
		ManuscriptID:   req.ManuscriptID,
		UserMessage:    req.Message,
		AssistantReply: result.Narrative,
		ConflictCount:  len(result.Conflicts),
		TotalTokens:    result.TotalTokens,
		TotalCost:      result.TotalCost,
		LatencyMs:      result.LatencyMs,
		CreatedAt:      time.Now(),
	}
	if result.Decision != nil {
		record.Intent = string(result.Decision.Intent)
		for _, kind := range result.Decision.Agents {
			record.AgentsConsulted = append(record.AgentsConsulted, string(kind))
		}
	}

	if err := f.turnLog.Emit(ctx, record); err != nil {
		f.log.Warnf("Turn record emit failed for %s: %v", req.SessionID, err)
	}
}

func renderInsights(insights *personalization.Insights) string {
	var b strings.Builder
	if insights.WritingLevel != "" {
		b.WriteString("Writing level: " + insights.WritingLevel + "\n")
	}
	if insights.PreferredTone != "" {
		b.WriteString("Preferred tone: " + insights.PreferredTone + "\n")
	}
	if len(insights.FocusAreas) > 0 {
		b.WriteString("Focus areas: " + strings.Join(insights.FocusAreas, ", ") + "\n")
	}
	if len(insights.RecurringHabits) > 0 {
		b.WriteString("Recurring habits: " + strings.Join(insights.RecurringHabits, ", ") + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
