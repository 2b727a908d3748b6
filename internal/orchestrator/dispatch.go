package orchestrator

import (
	"context"
	"fmt"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/agents"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

const generalFallbackMessage = "I can help with tracking, rates, service centers, and FAQs. " +
	"Please select an agent or specify what you need."

const handlerErrorMessage = "Something went wrong while handling your request. Please try again."

// systemHandlerName is recorded when no agent ran.
const systemHandlerName = "system"

// Dispatcher routes a classified turn to at most one agent via a
// static intent table. Unmapped intents fall through to a fixed system
// message; agent errors and panics become a generic error result so a
// failing handler cannot crash the turn.
type Dispatcher struct {
	table  map[Intent]agents.Agent
	logger *logging.Logger
}

// NewDispatcher builds the dispatch table. Nil agents are simply left
// out of the table and their intents fall through to the system
// message.
func NewDispatcher(tracking, rates, retail, faq agents.Agent, logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	table := make(map[Intent]agents.Agent, 4)
	if tracking != nil {
		table[IntentTracking] = tracking
	}
	if rates != nil {
		table[IntentRates] = rates
	}
	if retail != nil {
		table[IntentLocations] = retail
	}
	if faq != nil {
		table[IntentFAQ] = faq
	}
	return &Dispatcher{table: table, logger: logger.Component("dispatcher")}
}

// Dispatch runs the mapped agent and records its result on the turn.
func (d *Dispatcher) Dispatch(ctx context.Context, turn *TurnContext) {
	d.dispatch(ctx, turn, nil)
}

// DispatchStream is the streaming variant; fragments go to emit as the
// agent produces them. Agents without a streaming implementation emit
// their full content as one fragment.
func (d *Dispatcher) DispatchStream(ctx context.Context, turn *TurnContext, emit func(token string) error) {
	d.dispatch(ctx, turn, emit)
}

func (d *Dispatcher) dispatch(ctx context.Context, turn *TurnContext, emit func(token string) error) {
	mergeFileParameters(turn)

	agent, ok := d.table[turn.Intent]
	if !ok {
		turn.HandlerName = systemHandlerName
		turn.HandlerResult = &agents.Result{Content: generalFallbackMessage}
		if emit != nil {
			_ = emit(generalFallbackMessage)
		}
		return
	}

	turn.HandlerName = agent.Name()
	result, err := d.runGuarded(ctx, agent, turn, emit)
	if err != nil {
		d.logger.Error("handler failed", "agent", agent.Name(), "error", err)
		result = agents.Result{
			Content:  handlerErrorMessage,
			Metadata: map[string]any{"error": err.Error(), "type": "system_error"},
		}
		if emit != nil {
			_ = emit(handlerErrorMessage)
		}
	}
	turn.HandlerResult = &result
}

// runGuarded invokes the agent with panic containment.
func (d *Dispatcher) runGuarded(ctx context.Context, agent agents.Agent, turn *TurnContext, emit func(token string) error) (result agents.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	in := agents.Input{
		Message:        turn.Message,
		ConversationID: turn.ConversationID,
		UserID:         turn.UserID,
		Parameters:     turn.Parameters,
		History:        toChatMessages(turn.History),
		FileContext:    turn.FileContext,
	}

	if emit != nil {
		if streamer, ok := agent.(agents.StreamingAgent); ok {
			return streamer.RunStream(ctx, in, emit)
		}
		result, err = agent.Run(ctx, in)
		if err == nil && result.Content != "" {
			_ = emit(result.Content)
		}
		return result, err
	}
	return agent.Run(ctx, in)
}

// mergeFileParameters folds file-derived entities into the turn
// parameters. File evidence (a scanned waybill) beats text guesswork,
// so file values win on key collision.
func mergeFileParameters(turn *TurnContext) {
	extracted, ok := turn.FileContext["extracted_data"].(map[string]any)
	if !ok {
		return
	}
	if turn.Parameters == nil {
		turn.Parameters = make(map[string]any, len(extracted))
	}
	for key, value := range extracted {
		turn.Parameters[key] = value
	}
}

func toChatMessages(history []HistoryMessage) []llm.ChatMessage {
	messages := make([]llm.ChatMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, llm.ChatMessage{Role: msg.Role, Content: msg.Content})
	}
	return messages
}
