package orchestrator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// Keyword confidence levels per the classification contract. The
// values are advisory metadata only; no stage branches on them.
const (
	confidenceExplicit = 1.0
	confidenceKeyword  = 0.8
	confidenceFallback = 0.25
)

// intentKeywords are tested in this exact order. The sets are not
// mutually exclusive, so order is the tie-break.
var intentKeywords = []struct {
	intent   Intent
	keywords []string
}{
	{IntentTracking, []string{"track", "tracking", "awb", "shipment", "waybill", "parcel", "package", "where is my"}},
	{IntentRates, []string{"rate", "rates", "price", "cost", "quote", "how much", "shipping fee"}},
	{IntentLocations, []string{"branch", "branches", "center", "centre", "location", "office", "drop off", "drop-off", "near me"}},
	{IntentFAQ, []string{"policy", "prohibited", "allowed", "insurance", "customs", "refund", "claim", "working hours", "how do i", "how to", "what is", "can i"}},
}

const classifyPrompt = `Classify the customer message into exactly one of these intents:
TRACKING (shipment status), RATES (shipping prices), LOCATIONS (service centers),
FAQ (questions about SMSA services), GENERAL (anything else).

Respond with JSON only: {"intent": "<LABEL>", "confidence": <0.0-1.0>}`

// Classifier assigns an intent to a message, cheaply by keywords and
// optionally refined by the LLM for unmatched messages.
type Classifier struct {
	llm    llm.Client
	logger *logging.Logger
}

// NewClassifier creates a classifier. llmClient may be nil; fallback
// classification is then skipped entirely.
func NewClassifier(llmClient llm.Client, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{llm: llmClient, logger: logger.Component("classifier")}
}

// Classify is the deterministic keyword pass. It always returns one of
// the five intents.
func (c *Classifier) Classify(message string) Intent {
	lower := strings.ToLower(message)
	for _, set := range intentKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(lower, kw) {
				return set.intent
			}
		}
	}
	return IntentGeneral
}

// ClassifyWithFallback runs the keyword pass and, when it yields
// GENERAL and the LLM is permitted, asks the backend for a label. Any
// backend failure degrades to GENERAL with low confidence. Never
// returns an error.
func (c *Classifier) ClassifyWithFallback(ctx context.Context, message string, allowLLM bool) (Intent, float64) {
	if intent := c.Classify(message); intent != IntentGeneral {
		return intent, confidenceKeyword
	}
	if !allowLLM || c.llm == nil {
		return IntentGeneral, confidenceFallback
	}

	resp, err := c.llm.Complete(ctx, llm.Request{
		SystemPrompt: classifyPrompt,
		Messages:     []llm.ChatMessage{{Role: llm.ChatRoleUser, Content: message}},
		Temperature:  0,
		MaxTokens:    50,
	})
	if err != nil {
		c.logger.Warn("llm classification failed", "error", err)
		return IntentGeneral, confidenceFallback
	}

	intent, confidence, ok := parseClassification(resp.Text)
	if !ok {
		c.logger.Warn("unparseable llm classification", "response", resp.Text)
		return IntentGeneral, confidenceFallback
	}
	return intent, confidence
}

// parseClassification leniently decodes the backend's answer. The
// model sometimes wraps the JSON in prose or code fences, so the
// object is located by brace scanning before decoding.
func parseClassification(text string) (Intent, float64, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return IntentGeneral, 0, false
	}

	var parsed struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return IntentGeneral, 0, false
	}

	intent, valid := ParseIntent(parsed.Intent)
	if !valid {
		return IntentGeneral, 0, false
	}
	confidence := parsed.Confidence
	if confidence <= 0 || confidence > 1 {
		confidence = confidenceFallback
	}
	return intent, confidence, true
}
