package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/smsa"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// AWB numbers are 10 to 15 digit runs.
var awbPattern = regexp.MustCompile(`\b\d{10,15}\b`)

const trackingSystemPrompt = `You are a helpful AI assistant for SMSA Express tracking service.
Generate a friendly, clear, and informative response about shipment tracking status.
Use the tracking data provided to answer the user's question naturally and helpfully.
Be concise but include important details like current status, location, and recent events.`

const trackingClarification = "Please provide a valid AWB number to track your shipment. " +
	"You can type it or upload an image of your waybill."

// TrackingService is the provider surface the tracking agent needs.
type TrackingService interface {
	TrackBulk(ctx context.Context, awbs []string, language string) ([]smsa.TrackingResult, error)
}

// TrackingAgent answers shipment tracking queries. It collects AWB
// numbers from the message text, file extraction metadata and turn
// parameters, queries the provider, and phrases the outcome with the
// LLM, falling back to deterministic formatting when the LLM is
// unavailable.
type TrackingAgent struct {
	service TrackingService
	llm     llm.StreamClient
	logger  *logging.Logger
}

// NewTrackingAgent creates the tracking agent. llmClient may be nil;
// responses then use deterministic formatting only.
func NewTrackingAgent(service TrackingService, llmClient llm.StreamClient, logger *logging.Logger) *TrackingAgent {
	if logger == nil {
		logger = logging.Default()
	}
	return &TrackingAgent{
		service: service,
		llm:     llmClient,
		logger:  logger.Component("agent.tracking"),
	}
}

// Name implements Agent.
func (a *TrackingAgent) Name() string { return "tracking" }

// Run implements Agent.
func (a *TrackingAgent) Run(ctx context.Context, in Input) (Result, error) {
	return a.run(ctx, in, nil)
}

// RunStream implements StreamingAgent. Deterministic fallbacks are
// emitted as a single fragment.
func (a *TrackingAgent) RunStream(ctx context.Context, in Input, emit func(token string) error) (Result, error) {
	return a.run(ctx, in, emit)
}

func (a *TrackingAgent) run(ctx context.Context, in Input, emit func(token string) error) (Result, error) {
	awbs := a.collectAWBs(in)
	if len(awbs) == 0 {
		a.logger.Info("no AWB found in turn", "conversation_id", in.ConversationID)
		return emitWhole(Result{
			Content:            trackingClarification,
			Results:            []smsa.TrackingResult{},
			NeedsClarification: true,
		}, emit)
	}

	a.logger.Info("tracking request", "awbs", awbs, "conversation_id", in.ConversationID)

	results, err := a.service.TrackBulk(ctx, awbs, "en")
	if err != nil {
		a.logger.Error("tracking lookup failed", "error", err)
		return emitWhole(Result{
			Content:  "I could not reach the tracking service right now. Please try again in a moment.",
			Metadata: map[string]any{"error": err.Error()},
			Results:  []smsa.TrackingResult{},
		}, emit)
	}

	content, meta := a.phrase(ctx, in.Message, results, emit)
	return Result{
		Content:  content,
		Metadata: meta,
		Type:     "tracking_results",
		Results:  results,
	}, nil
}

// collectAWBs gathers AWB numbers from the message text, the file
// extraction metadata, and the turn parameters, deduplicated in that
// order. File-derived values were already merged into parameters by
// dispatch, but the extraction payload is also read directly so a
// waybill photo works without a parameter mapping.
func (a *TrackingAgent) collectAWBs(in Input) []string {
	seen := make(map[string]struct{})
	var awbs []string
	add := func(awb string) {
		awb = strings.TrimSpace(awb)
		if awb == "" {
			return
		}
		if _, dup := seen[awb]; dup {
			return
		}
		seen[awb] = struct{}{}
		awbs = append(awbs, awb)
	}

	for _, match := range awbPattern.FindAllString(in.Message, -1) {
		add(match)
	}
	if extracted, ok := in.FileContext["extracted_data"].(map[string]any); ok {
		if awb, ok := extracted["awb"].(string); ok {
			add(awb)
		}
	}
	add(stringParam(in.Parameters, "awb"))
	return awbs
}

// phrase asks the LLM for a friendly summary of the tracking data and
// falls back to formatted lines when the LLM fails or returns nothing.
func (a *TrackingAgent) phrase(ctx context.Context, message string, results []smsa.TrackingResult, emit func(token string) error) (string, map[string]any) {
	data, _ := json.MarshalIndent(summarizeForLLM(results), "", "  ")
	req := llm.Request{
		SystemPrompt: trackingSystemPrompt,
		Messages: []llm.ChatMessage{{
			Role: llm.ChatRoleUser,
			Content: fmt.Sprintf("User asked: %s\n\nTracking data:\n%s\n\nGenerate a helpful response about the shipment status.",
				message, data),
		}},
		Temperature: 0.7,
		MaxTokens:   500,
	}

	if a.llm != nil && emit != nil {
		var sb strings.Builder
		err := a.llm.CompleteStream(ctx, req, func(chunk llm.Chunk) error {
			if chunk.Text == "" {
				return nil
			}
			sb.WriteString(chunk.Text)
			return emit(chunk.Text)
		})
		if err == nil && strings.TrimSpace(sb.String()) != "" {
			return sb.String(), nil
		}
		if err != nil {
			a.logger.Warn("llm phrasing failed", "error", err)
		}
		// Nothing streamed yet, safe to emit the fallback.
		if sb.Len() == 0 {
			content := formatResults(results)
			_ = emit(content)
			return content, nil
		}
		return sb.String(), nil
	}

	if a.llm != nil {
		resp, err := a.llm.Complete(ctx, req)
		if err == nil && strings.TrimSpace(resp.Text) != "" {
			meta := map[string]any{"model": resp.Model}
			return strings.TrimSpace(resp.Text), meta
		}
		if err != nil {
			a.logger.Warn("llm phrasing failed", "error", err)
		}
	}

	content := formatResults(results)
	if emit != nil {
		_ = emit(content)
	}
	return content, nil
}

// summarizeForLLM trims each result down to the fields worth showing.
func summarizeForLLM(results []smsa.TrackingResult) []map[string]any {
	summaries := make([]map[string]any, 0, len(results))
	for _, r := range results {
		events := r.Checkpoints
		if len(events) > 5 {
			events = events[:5]
		}
		summaries = append(summaries, map[string]any{
			"awb":           r.AWB,
			"status":        statusText(r),
			"location":      locationText(r),
			"last_update":   r.LastUpdate,
			"recent_events": events,
		})
	}
	return summaries
}

// formatResults is the deterministic rendering used when the LLM is
// unavailable.
func formatResults(results []smsa.TrackingResult) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, formatResultLine(r))
	}
	return strings.Join(lines, "\n")
}

func formatResultLine(r smsa.TrackingResult) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("AWB %s: %s (location: %s)", r.AWB, statusText(r), locationText(r)))
	if r.LastUpdate != "" {
		parts = append(parts, fmt.Sprintf("Last update: %s", r.LastUpdate))
	}
	if len(r.Checkpoints) > 0 {
		preview := r.Checkpoints
		if len(preview) > 3 {
			preview = preview[:3]
		}
		eventLines := make([]string, 0, len(preview))
		for _, ev := range preview {
			desc := ev.Description
			if desc == "" {
				desc = "Status update"
			}
			loc := ev.Location
			if loc == "" {
				loc = "N/A"
			}
			line := fmt.Sprintf("- %s @ %s", desc, loc)
			if !ev.Timestamp.IsZero() {
				line += fmt.Sprintf(" (%s)", ev.Timestamp.Format("2006-01-02 15:04"))
			}
			eventLines = append(eventLines, line)
		}
		parts = append(parts, "Recent events:\n"+strings.Join(eventLines, "\n"))
	}
	return strings.Join(parts, "\n")
}

func statusText(r smsa.TrackingResult) string {
	if r.FriendlyStatus != "" {
		return r.FriendlyStatus
	}
	return string(r.Status)
}

func locationText(r smsa.TrackingResult) string {
	if r.CurrentLocation != "" {
		return r.CurrentLocation
	}
	return "N/A"
}

// emitWhole forwards a fully-formed result as a single fragment when a
// stream is active.
func emitWhole(res Result, emit func(token string) error) (Result, error) {
	if emit != nil && res.Content != "" {
		_ = emit(res.Content)
	}
	return res, nil
}
