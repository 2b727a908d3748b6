package agents

import (
	"context"
	"strings"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/faq"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

const faqSystemPrompt = `You are a helpful AI assistant for SMSA Express.

Answer questions about SMSA services concisely (2-4 sentences max).
Use the provided context to answer accurately.
If context doesn't have the answer, say so briefly.
For tracking/rates/locations, suggest the appropriate agent.
Be direct and helpful - avoid long explanations.`

const (
	faqEmptyPrompt = "Please ask me a question about SMSA services, policies, or shipping."
	faqEmptyReply  = "I apologize, but I couldn't generate a response. Please try rephrasing your question."
	faqErrorReply  = "I encountered an error while processing your question. " +
		"Please try again or contact SMSA support for assistance."
)

// faqHistoryWindow bounds how many prior messages go into the prompt.
const faqHistoryWindow = 5

// FAQAgent answers questions about SMSA services with the LLM,
// grounded on retrieved FAQ chunks and the recent conversation.
type FAQAgent struct {
	llm    llm.StreamClient
	loader *faq.Loader
	logger *logging.Logger
}

// NewFAQAgent creates the FAQ agent. loader may be nil; responses then
// run without retrieval context. A nil llmClient degrades every answer
// to a static apology.
func NewFAQAgent(llmClient llm.StreamClient, loader *faq.Loader, logger *logging.Logger) *FAQAgent {
	if logger == nil {
		logger = logging.Default()
	}
	return &FAQAgent{llm: llmClient, loader: loader, logger: logger.Component("agent.faq")}
}

// Name implements Agent.
func (a *FAQAgent) Name() string { return "faq" }

// Run implements Agent.
func (a *FAQAgent) Run(ctx context.Context, in Input) (Result, error) {
	if strings.TrimSpace(in.Message) == "" {
		return Result{Content: faqEmptyPrompt}, nil
	}
	if a.llm == nil {
		return Result{Content: faqErrorReply}, nil
	}

	resp, err := a.llm.Complete(ctx, a.buildRequest(in))
	if err != nil {
		a.logger.Error("faq completion failed", "error", err, "conversation_id", in.ConversationID)
		return Result{
			Content:  faqErrorReply,
			Metadata: map[string]any{"error": err.Error()},
		}, nil
	}

	content := strings.TrimSpace(resp.Text)
	if content == "" {
		content = faqEmptyReply
	}
	return Result{
		Content: content,
		Metadata: map[string]any{
			"model": resp.Model,
			"usage": resp.Usage,
		},
	}, nil
}

// RunStream implements StreamingAgent.
func (a *FAQAgent) RunStream(ctx context.Context, in Input, emit func(token string) error) (Result, error) {
	if strings.TrimSpace(in.Message) == "" {
		return emitWhole(Result{Content: faqEmptyPrompt}, emit)
	}
	if a.llm == nil {
		return emitWhole(Result{Content: faqErrorReply}, emit)
	}

	var sb strings.Builder
	err := a.llm.CompleteStream(ctx, a.buildRequest(in), func(chunk llm.Chunk) error {
		if chunk.Text == "" {
			return nil
		}
		sb.WriteString(chunk.Text)
		return emit(chunk.Text)
	})
	if err != nil {
		a.logger.Error("faq stream failed", "error", err, "conversation_id", in.ConversationID)
		if sb.Len() == 0 {
			return emitWhole(Result{
				Content:  faqErrorReply,
				Metadata: map[string]any{"error": err.Error()},
			}, emit)
		}
		// Partial output already reached the caller; keep it.
	}

	content := sb.String()
	if strings.TrimSpace(content) == "" {
		return emitWhole(Result{Content: faqEmptyReply}, emit)
	}
	return Result{Content: content}, nil
}

func (a *FAQAgent) buildRequest(in Input) llm.Request {
	systemPrompt := faqSystemPrompt
	if a.loader != nil {
		if context := a.loader.ContextForPrompt(in.Message, 3); context != "" {
			systemPrompt += "\n\nRelevant SMSA Information:\n" + context
		}
	}

	history := in.History
	if len(history) > faqHistoryWindow {
		history = history[len(history)-faqHistoryWindow:]
	}
	messages := make([]llm.ChatMessage, 0, len(history)+1)
	for _, msg := range history {
		if msg.Content == "" {
			continue
		}
		messages = append(messages, msg)
	}
	messages = append(messages, llm.ChatMessage{Role: llm.ChatRoleUser, Content: in.Message})

	return llm.Request{
		SystemPrompt: systemPrompt,
		Messages:     messages,
		Temperature:  0.7,
		MaxTokens:    300,
	}
}
