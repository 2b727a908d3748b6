package orchestrator

import (
	"context"
	"strings"
	"time"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/observability/metrics"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/textfilter"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// Workflow runs the four turn stages in strict sequence: CLASSIFY,
// ASSEMBLE_CONTEXT, DISPATCH, AGGREGATE. Every stage degrades instead
// of failing, so the workflow always produces a best-effort response.
type Workflow struct {
	classifier *Classifier
	assembler  *Assembler
	dispatcher *Dispatcher
	aggregator *Aggregator
	metrics    *metrics.TurnMetrics
	logger     *logging.Logger

	allowLLMClassification bool
}

// NewWorkflow wires the four stages together. metrics may be nil.
func NewWorkflow(classifier *Classifier, assembler *Assembler, dispatcher *Dispatcher, aggregator *Aggregator, m *metrics.TurnMetrics, allowLLMClassification bool, logger *logging.Logger) *Workflow {
	if logger == nil {
		logger = logging.Default()
	}
	return &Workflow{
		classifier:             classifier,
		assembler:              assembler,
		dispatcher:             dispatcher,
		aggregator:             aggregator,
		metrics:                m,
		logger:                 logger.Component("workflow"),
		allowLLMClassification: allowLLMClassification,
	}
}

// Run processes one turn and returns the single-shot response.
func (w *Workflow) Run(ctx context.Context, req TurnRequest) (TurnResponse, error) {
	start := time.Now()
	turn := NewTurnContext(req)

	w.classify(ctx, turn)
	w.assembler.Assemble(ctx, turn)
	w.dispatcher.Dispatch(ctx, turn)

	if turn.HandlerResult != nil {
		turn.HandlerResult.Content = textfilter.StripThinkingAll(turn.HandlerResult.Content)
	}
	resp := w.aggregator.Aggregate(ctx, turn)

	w.metrics.ObserveTurn(string(turn.Intent), turn.HandlerName, "sync", time.Since(start).Seconds())
	w.logger.Info("turn complete",
		"conversation_id", turn.ConversationID,
		"intent", turn.Intent,
		"confidence", turn.IntentConfidence,
		"agent", turn.HandlerName,
	)
	return resp, nil
}

// RunStream processes one turn, forwarding content fragments to emit
// as the agent produces them and closing with a single done event. The
// accumulated text is persisted after the stream completes. Caller
// disconnect (context cancellation) aborts fragment production.
func (w *Workflow) RunStream(ctx context.Context, req TurnRequest, emit func(Event) error) error {
	start := time.Now()
	turn := NewTurnContext(req)

	w.classify(ctx, turn)
	w.assembler.Assemble(ctx, turn)

	// Envelope metadata is computed once up front and attached to
	// every fragment.
	envelope := map[string]any{
		"agent":           w.handlerNameFor(turn.Intent),
		"conversation_id": turn.ConversationID,
	}

	// Thinking-markup filter state lives on this stream only and
	// starts clean for every turn.
	inside := false
	var accumulated strings.Builder
	forward := func(token string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		clean, nowInside := textfilter.StripThinking(token, inside)
		inside = nowInside
		if clean == "" {
			return nil
		}
		accumulated.WriteString(clean)
		w.metrics.ObserveStreamToken()
		return emit(Event{Type: "token", Content: clean, Metadata: envelope})
	}

	w.dispatcher.DispatchStream(ctx, turn, forward)

	if err := ctx.Err(); err != nil {
		w.logger.Info("stream cancelled",
			"conversation_id", turn.ConversationID, "agent", turn.HandlerName)
		return err
	}

	// Persist the concatenation of what actually went out.
	if turn.HandlerResult != nil {
		turn.HandlerResult.Content = accumulated.String()
	}
	w.aggregator.Aggregate(ctx, turn)

	w.metrics.ObserveTurn(string(turn.Intent), turn.HandlerName, "stream", time.Since(start).Seconds())
	w.logger.Info("stream complete",
		"conversation_id", turn.ConversationID,
		"intent", turn.Intent,
		"agent", turn.HandlerName,
	)
	return emit(Event{Type: "done", Metadata: envelope})
}

// classify resolves the turn intent with the documented priority:
// explicit agent selection, then explicit intent label, then automatic
// classification. Parameters are extracted for every path so agents
// can rely on them regardless of how the intent was chosen.
func (w *Workflow) classify(ctx context.Context, turn *TurnContext) {
	turn.Parameters = ExtractParameters(turn.Message)

	if turn.ExplicitAgent != "" {
		intent, ok := agentToIntent[turn.ExplicitAgent]
		if !ok {
			intent = IntentGeneral
		}
		turn.Intent = intent
		turn.IntentConfidence = confidenceExplicit
		return
	}

	if turn.ExplicitIntent != "" {
		if intent, ok := ParseIntent(turn.ExplicitIntent); ok {
			turn.Intent = intent
			turn.IntentConfidence = confidenceExplicit
			return
		}
		w.logger.Warn("invalid explicit intent, falling back to classification",
			"explicit_intent", turn.ExplicitIntent)
	}

	if w.allowLLMClassification && w.classifier.Classify(turn.Message) == IntentGeneral {
		w.metrics.ObserveLLMFallback("ambiguous_intent")
	}
	turn.Intent, turn.IntentConfidence = w.classifier.ClassifyWithFallback(ctx, turn.Message, w.allowLLMClassification)
}

// handlerNameFor resolves which handler a dispatch of this intent will
// run, without running it.
func (w *Workflow) handlerNameFor(intent Intent) string {
	if agent, ok := w.dispatcher.table[intent]; ok {
		return agent.Name()
	}
	return systemHandlerName
}
