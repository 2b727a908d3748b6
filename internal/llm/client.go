// Package llm defines the text-generation backend boundary. Agents and
// the intent classifier only see the Client interface; the concrete
// providers (self-hosted Qwen, Gemini fallback) live behind it.
package llm

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type Request struct {
	Model        string
	SystemPrompt string
	Messages     []ChatMessage
	MaxTokens    int32
	Temperature  float32
}

type Response struct {
	Text       string
	Model      string
	Usage      TokenUsage
	StopReason string
}

// Chunk is one incremental fragment of a streamed completion.
type Chunk struct {
	Text string
	Done bool
}

// Client is the non-streaming completion interface.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

// StreamClient is implemented by providers that can deliver the
// completion incrementally. emit is called once per fragment; returning
// an error from emit aborts generation.
type StreamClient interface {
	Client
	CompleteStream(ctx context.Context, req Request, emit func(Chunk) error) error
}
