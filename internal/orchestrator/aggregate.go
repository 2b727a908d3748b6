package orchestrator

import (
	"context"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/store"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// Aggregator folds the handler result into the caller-facing response
// and persists the turn. Persistence is best-effort telemetry: each
// write is individually fault-tolerant and failures never alter the
// response already computed.
type Aggregator struct {
	conversations store.ConversationStore
	logger        *logging.Logger
}

// NewAggregator creates an aggregator. conversations may be nil.
func NewAggregator(conversations store.ConversationStore, logger *logging.Logger) *Aggregator {
	if logger == nil {
		logger = logging.Default()
	}
	return &Aggregator{conversations: conversations, logger: logger.Component("aggregator")}
}

// Aggregate computes the final content and metadata for the turn and
// writes both turn messages to storage.
func (ag *Aggregator) Aggregate(ctx context.Context, turn *TurnContext) TurnResponse {
	turn.Content = ""
	metadata := map[string]any{"agent": turn.HandlerName}

	if result := turn.HandlerResult; result != nil {
		turn.Content = result.Content
		for key, value := range result.Metadata {
			metadata[key] = value
		}
		// Whitelisted top-level pass-through fields. Anything else an
		// agent sets stays internal; widening this list is the
		// extension point for new handler capabilities.
		if result.Type != "" {
			metadata["type"] = result.Type
		}
		if result.Results != nil {
			metadata["results"] = result.Results
		}
		if result.NeedsClarification {
			metadata["needs_clarification"] = true
		}
	}
	turn.Metadata = metadata

	ag.persist(ctx, turn)

	return TurnResponse{
		Agent:    turn.HandlerName,
		Content:  turn.Content,
		Metadata: metadata,
	}
}

// persist writes the conversation record and both turn messages. The
// three writes are independent: a failure on one is logged and the
// next is still attempted.
func (ag *Aggregator) persist(ctx context.Context, turn *TurnContext) {
	if ag.conversations == nil || !turn.Persistable() {
		return
	}

	if err := ag.conversations.EnsureConversation(ctx, turn.ConversationID, turn.UserID, nil); err != nil {
		ag.logger.Warn("ensure conversation failed",
			"conversation_id", turn.ConversationID, "error", err)
	}

	userMeta := map[string]any{
		"intent":     string(turn.Intent),
		"confidence": turn.IntentConfidence,
	}
	if err := ag.conversations.AppendMessage(ctx, turn.ConversationID, "user", turn.Message, userMeta); err != nil {
		ag.logger.Warn("append user message failed",
			"conversation_id", turn.ConversationID, "error", err)
	}

	assistantMeta := map[string]any{"agent": turn.HandlerName}
	if err := ag.conversations.AppendMessage(ctx, turn.ConversationID, "assistant", turn.Content, assistantMeta); err != nil {
		ag.logger.Warn("append assistant message failed",
			"conversation_id", turn.ConversationID, "error", err)
	}
}
