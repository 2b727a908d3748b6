package agents

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/faq"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
)

func writeFAQFile(t *testing.T) *faq.Loader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq.jsonl")
	lines := `{"title":"Prohibited Items","url":"https://smsaexpress.com/faq/prohibited","chunk_text":"SMSA does not ship flammable liquids, weapons, or perishable food without cold chain packaging."}
{"title":"Delivery Times","url":"https://smsaexpress.com/faq/delivery","chunk_text":"Domestic shipments arrive within 1-3 business days."}
`
	require.NoError(t, os.WriteFile(path, []byte(lines), 0o644))
	return faq.NewLoader(path, nil)
}

func TestFAQAgentEmptyMessagePrompts(t *testing.T) {
	agent := NewFAQAgent(&fakeLLM{text: "unused"}, nil, nil)

	res, err := agent.Run(context.Background(), Input{Message: "   "})
	require.NoError(t, err)
	assert.Equal(t, faqEmptyPrompt, res.Content)
}

func TestFAQAgentIncludesRetrievedContext(t *testing.T) {
	client := &fakeLLM{text: "SMSA cannot ship flammable liquids."}
	agent := NewFAQAgent(client, writeFAQFile(t), nil)

	res, err := agent.Run(context.Background(), Input{Message: "can I ship flammable liquids?"})
	require.NoError(t, err)

	assert.Equal(t, "SMSA cannot ship flammable liquids.", res.Content)
	assert.Contains(t, client.lastReq.SystemPrompt, "Prohibited Items")
	assert.Equal(t, "qwen-test", res.Metadata["model"])
}

func TestFAQAgentLimitsHistoryWindow(t *testing.T) {
	client := &fakeLLM{text: "answer"}
	agent := NewFAQAgent(client, nil, nil)

	var history []llm.ChatMessage
	for i := 0; i < 8; i++ {
		history = append(history, llm.ChatMessage{Role: llm.ChatRoleUser, Content: "older"})
	}
	history = append(history, llm.ChatMessage{Role: llm.ChatRoleAssistant, Content: "recent"})

	_, err := agent.Run(context.Background(), Input{Message: "what are your hours?", History: history})
	require.NoError(t, err)

	// Five history messages plus the current question.
	require.Len(t, client.lastReq.Messages, 6)
	assert.Equal(t, "what are your hours?", client.lastReq.Messages[5].Content)
}

func TestFAQAgentErrorDegradesToApology(t *testing.T) {
	agent := NewFAQAgent(&fakeLLM{err: errors.New("backend down")}, nil, nil)

	res, err := agent.Run(context.Background(), Input{Message: "what are your hours?"})
	require.NoError(t, err)

	assert.Equal(t, faqErrorReply, res.Content)
	assert.Equal(t, "backend down", res.Metadata["error"])
}

func TestFAQAgentEmptyCompletionDegrades(t *testing.T) {
	agent := NewFAQAgent(&fakeLLM{text: "   "}, nil, nil)

	res, err := agent.Run(context.Background(), Input{Message: "hello"})
	require.NoError(t, err)
	assert.Equal(t, faqEmptyReply, res.Content)
}

func TestFAQAgentStreamConcatenationMatchesContent(t *testing.T) {
	client := &fakeLLM{text: "Domestic shipments arrive within 1-3 business days."}
	agent := NewFAQAgent(client, nil, nil)

	var streamed strings.Builder
	res, err := agent.RunStream(context.Background(), Input{Message: "how long does delivery take?"}, func(token string) error {
		streamed.WriteString(token)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, res.Content, streamed.String())
	assert.Equal(t, "Domestic shipments arrive within 1-3 business days.", res.Content)
}

func TestFAQAgentStreamErrorBeforeOutputDegrades(t *testing.T) {
	agent := NewFAQAgent(&fakeLLM{err: errors.New("backend down")}, nil, nil)

	var tokens []string
	res, err := agent.RunStream(context.Background(), Input{Message: "hello"}, func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, faqErrorReply, res.Content)
	require.Len(t, tokens, 1)
	assert.Equal(t, faqErrorReply, tokens[0])
}
