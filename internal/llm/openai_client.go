package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient talks to an OpenAI-compatible chat-completions endpoint.
// The production deployment points this at the self-hosted Qwen model
// on ModelArts; anything speaking the same wire format works.
type OpenAIClient struct {
	apiURL     string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIClient creates a client for the given endpoint and model.
func NewOpenAIClient(apiURL, model, apiKey string, timeout time.Duration) (*OpenAIClient, error) {
	if strings.TrimSpace(apiURL) == "" {
		return nil, errors.New("llm: api url is required")
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAIClient{
		apiURL:     apiURL,
		model:      model,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int32         `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatCompletionChoice struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	FinishReason string `json:"finish_reason"`
}

type chatCompletionResponse struct {
	Model   string                 `json:"model"`
	Choices []chatCompletionChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int32 `json:"prompt_tokens"`
		CompletionTokens int32 `json:"completion_tokens"`
		TotalTokens      int32 `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) buildPayload(req Request, stream bool) chatCompletionRequest {
	model := req.Model
	if model == "" {
		model = c.model
	}
	messages := make([]ChatMessage, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.SystemPrompt) != "" {
		messages = append(messages, ChatMessage{Role: ChatRoleSystem, Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)
	return chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		Stream:      stream,
	}
}

func (c *OpenAIClient) post(ctx context.Context, payload chatCompletionRequest) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("llm: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("llm: request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("llm: backend returned %d: %s", resp.StatusCode, string(snippet))
	}
	return resp, nil
}

// Complete sends a non-streaming chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.post(ctx, c.buildPayload(req, false))
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	var data chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return Response{}, fmt.Errorf("llm: decode response: %w", err)
	}
	if len(data.Choices) == 0 {
		return Response{}, errors.New("llm: backend returned no choices")
	}

	model := data.Model
	if model == "" {
		model = c.model
	}
	return Response{
		Text:       data.Choices[0].Message.Content,
		Model:      model,
		StopReason: data.Choices[0].FinishReason,
		Usage: TokenUsage{
			InputTokens:  data.Usage.PromptTokens,
			OutputTokens: data.Usage.CompletionTokens,
			TotalTokens:  data.Usage.TotalTokens,
		},
	}, nil
}

// CompleteStream sends a streaming request and forwards each SSE delta
// to emit. The stream ends on "[DONE]" or when the body is exhausted;
// cancellation of ctx closes the connection mid-stream.
func (c *OpenAIClient) CompleteStream(ctx context.Context, req Request, emit func(Chunk) error) error {
	resp, err := c.post(ctx, c.buildPayload(req, true))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "[DONE]" {
			break
		}

		var data chatCompletionResponse
		if err := json.Unmarshal([]byte(payload), &data); err != nil {
			// Malformed keep-alive or partial frame; skip it.
			continue
		}
		if len(data.Choices) == 0 {
			continue
		}
		text := data.Choices[0].Delta.Content
		if text == "" {
			continue
		}
		if err := emit(Chunk{Text: text}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("llm: read stream: %w", err)
	}
	return emit(Chunk{Done: true})
}
