package llm

import (
	"context"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// FallbackClient wraps a primary provider with a fallback provider.
// If the primary fails, it automatically retries with the fallback.
type FallbackClient struct {
	primary  StreamClient
	fallback StreamClient
	logger   *logging.Logger
}

// NewFallbackClient creates a fallback-enabled client. If fallback is
// nil, the client only uses the primary provider.
func NewFallbackClient(primary, fallback StreamClient, logger *logging.Logger) *FallbackClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &FallbackClient{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Complete sends a completion request to the primary provider, retrying
// once with the fallback on failure.
func (c *FallbackClient) Complete(ctx context.Context, req Request) (Response, error) {
	resp, err := c.primary.Complete(ctx, req)
	if err == nil {
		return resp, nil
	}

	c.logger.Warn("primary LLM failed, attempting fallback",
		"error", err.Error(),
		"fallback_available", c.fallback != nil,
	)

	if c.fallback == nil || ctx.Err() != nil {
		return Response{}, err
	}

	fallbackResp, fallbackErr := c.fallback.Complete(ctx, req)
	if fallbackErr != nil {
		c.logger.Error("fallback LLM also failed",
			"primary_error", err.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		return Response{}, fallbackErr
	}

	c.logger.Info("fallback LLM succeeded after primary failure")
	return fallbackResp, nil
}

// CompleteStream streams from the primary provider. The fallback is
// only consulted when the primary fails before any fragment was
// emitted; a mid-stream failure is surfaced as-is so the caller does
// not receive duplicated text.
func (c *FallbackClient) CompleteStream(ctx context.Context, req Request, emit func(Chunk) error) error {
	emitted := false
	wrapped := func(ch Chunk) error {
		if ch.Text != "" {
			emitted = true
		}
		return emit(ch)
	}

	err := c.primary.CompleteStream(ctx, req, wrapped)
	if err == nil {
		return nil
	}
	if emitted || c.fallback == nil || ctx.Err() != nil {
		return err
	}

	c.logger.Warn("primary LLM stream failed before first token, attempting fallback",
		"error", err.Error(),
	)
	return c.fallback.CompleteStream(ctx, req, emit)
}
