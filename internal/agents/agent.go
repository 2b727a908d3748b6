// Package agents contains the specialized handlers a classified turn is
// dispatched to. Each agent owns one capability (tracking, rates,
// retail centers, FAQ) and degrades to an apologetic message instead of
// returning an error wherever it can.
package agents

import (
	"context"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
)

// Input is the slice of turn state an agent consumes.
type Input struct {
	Message        string
	ConversationID string
	UserID         string
	Parameters     map[string]any
	History        []llm.ChatMessage
	FileContext    map[string]any
}

// Result is what an agent hands back to aggregation. Content is always
// set, possibly to an apologetic or clarifying message. Type, Results
// and NeedsClarification are the whitelisted top-level fields that pass
// through to the caller for rich rendering.
type Result struct {
	Content            string
	Metadata           map[string]any
	Type               string
	Results            any
	NeedsClarification bool
}

// Agent is a single-capability handler. Run must not panic on bad
// input; dispatch still guards against it.
type Agent interface {
	Name() string
	Run(ctx context.Context, in Input) (Result, error)
}

// StreamingAgent additionally produces its content as incremental text
// fragments. The returned Result carries the full concatenated content
// so persistence does not need to re-assemble it.
type StreamingAgent interface {
	Agent
	RunStream(ctx context.Context, in Input, emit func(token string) error) (Result, error)
}

// stringParam reads a string-valued parameter, tolerating absence.
func stringParam(params map[string]any, key string) string {
	if params == nil {
		return ""
	}
	if v, ok := params[key].(string); ok {
		return v
	}
	return ""
}
