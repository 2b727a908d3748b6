// Package orchestrator routes one chat turn through classification,
// context assembly, agent dispatch and response aggregation.
package orchestrator

import (
	"strings"
	"time"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/agents"
)

// Intent is the coarse category of help being requested.
type Intent string

const (
	IntentTracking  Intent = "TRACKING"
	IntentRates     Intent = "RATES"
	IntentLocations Intent = "LOCATIONS"
	IntentFAQ       Intent = "FAQ"
	IntentGeneral   Intent = "GENERAL"
)

// DefaultConversationID is the sentinel conversation id that disables
// persistence for the turn.
const DefaultConversationID = "default"

// ParseIntent validates a label against the fixed intent enum.
func ParseIntent(label string) (Intent, bool) {
	switch Intent(strings.ToUpper(strings.TrimSpace(label))) {
	case IntentTracking:
		return IntentTracking, true
	case IntentRates:
		return IntentRates, true
	case IntentLocations:
		return IntentLocations, true
	case IntentFAQ:
		return IntentFAQ, true
	case IntentGeneral:
		return IntentGeneral, true
	}
	return IntentGeneral, false
}

// agentToIntent maps a caller-selected agent name to its intent.
var agentToIntent = map[string]Intent{
	"tracking":       IntentTracking,
	"rates":          IntentRates,
	"retail":         IntentLocations,
	"retail_centers": IntentLocations,
	"faq":            IntentFAQ,
}

// TurnRequest is the caller-facing input for one turn.
type TurnRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id,omitempty"`
	ExplicitAgent  string `json:"selected_agent,omitempty"`
	ExplicitIntent string `json:"explicit_intent,omitempty"`
	FileID         string `json:"file_id,omitempty"`
	FileURL        string `json:"file_url,omitempty"`
}

// HistoryMessage is one prior turn message as seen by this turn.
type HistoryMessage struct {
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// TurnContext is the mutable record threaded through one request. It
// is created fresh per inbound request and discarded afterwards; state
// survives only through the storage collaborator.
type TurnContext struct {
	TurnRequest

	Intent           Intent
	IntentConfidence float64
	Parameters       map[string]any
	History          []HistoryMessage
	FileContext      map[string]any

	HandlerName   string
	HandlerResult *agents.Result

	Content  string
	Metadata map[string]any
}

// NewTurnContext seeds a turn from the inbound request.
func NewTurnContext(req TurnRequest) *TurnContext {
	if req.ConversationID == "" {
		req.ConversationID = DefaultConversationID
	}
	return &TurnContext{
		TurnRequest: req,
		Parameters:  make(map[string]any),
		FileContext: make(map[string]any),
	}
}

// Persistable reports whether this turn should be written to storage.
func (t *TurnContext) Persistable() bool {
	return t.ConversationID != "" && t.ConversationID != DefaultConversationID
}

// TurnResponse is the single-shot result returned to the caller.
type TurnResponse struct {
	Agent    string         `json:"agent"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Event is one element of the streaming response.
type Event struct {
	Type     string         `json:"type"` // token, done or error
	Content  string         `json:"content,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}
