package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
)

// fakeCompleter is a canned llm.Client for classifier tests.
type fakeCompleter struct {
	text  string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(_ context.Context, _ llm.Request) (llm.Response, error) {
	f.calls++
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text}, nil
}

func TestClassifyKeywordPriority(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		message string
		want    Intent
	}{
		{"track AWB 227047923763", IntentTracking},
		{"where is my package", IntentTracking},
		{"what are your rates to Jeddah", IntentRates},
		{"how much to ship a box", IntentRates},
		{"nearest branch in Riyadh", IntentLocations},
		{"what is your refund policy", IntentFAQ},
		{"hello there", IntentGeneral},
		// "track" and "price" both present: tracking wins by order.
		{"track the price of my shipment", IntentTracking},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.message), "message=%q", tt.message)
	}
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := NewClassifier(nil, nil)
	for i := 0; i < 10; i++ {
		assert.Equal(t, IntentRates, c.Classify("what does shipping cost?"))
	}
}

func TestClassifyWithFallbackKeywordSkipsLLM(t *testing.T) {
	backend := &fakeCompleter{text: `{"intent":"FAQ","confidence":0.9}`}
	c := NewClassifier(backend, nil)

	intent, confidence := c.ClassifyWithFallback(context.Background(), "track my parcel", true)

	assert.Equal(t, IntentTracking, intent)
	assert.Equal(t, 0.8, confidence)
	assert.Zero(t, backend.calls)
}

func TestClassifyWithFallbackUsesLLM(t *testing.T) {
	backend := &fakeCompleter{text: `{"intent":"FAQ","confidence":0.9}`}
	c := NewClassifier(backend, nil)

	intent, confidence := c.ClassifyWithFallback(context.Background(), "tell me about your company", true)

	assert.Equal(t, IntentFAQ, intent)
	assert.Equal(t, 0.9, confidence)
	assert.Equal(t, 1, backend.calls)
}

func TestClassifyWithFallbackLLMDisallowed(t *testing.T) {
	backend := &fakeCompleter{text: `{"intent":"FAQ","confidence":0.9}`}
	c := NewClassifier(backend, nil)

	intent, confidence := c.ClassifyWithFallback(context.Background(), "tell me about your company", false)

	assert.Equal(t, IntentGeneral, intent)
	assert.LessOrEqual(t, confidence, 0.3)
	assert.Zero(t, backend.calls)
}

func TestClassifyWithFallbackBackendErrorDegrades(t *testing.T) {
	c := NewClassifier(&fakeCompleter{err: errors.New("backend down")}, nil)

	intent, confidence := c.ClassifyWithFallback(context.Background(), "random chatter", true)

	assert.Equal(t, IntentGeneral, intent)
	assert.LessOrEqual(t, confidence, 0.3)
}

func TestClassifyWithFallbackLenientParsing(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     Intent
		wantLow  bool
	}{
		{"json in prose", "Sure! Here you go: {\"intent\": \"RATES\", \"confidence\": 0.7} hope that helps", IntentRates, false},
		{"lowercase label", `{"intent":"locations","confidence":0.6}`, IntentLocations, false},
		{"invalid label", `{"intent":"SHOPPING","confidence":0.9}`, IntentGeneral, true},
		{"no json at all", "I think this is about tracking", IntentGeneral, true},
		{"broken json", `{"intent": "FAQ",`, IntentGeneral, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fakeCompleter{text: tt.response}, nil)
			intent, confidence := c.ClassifyWithFallback(context.Background(), "something unmatched", true)
			assert.Equal(t, tt.want, intent)
			if tt.wantLow {
				assert.LessOrEqual(t, confidence, 0.3)
			}
		})
	}
}

func TestParseIntent(t *testing.T) {
	intent, ok := ParseIntent(" tracking ")
	assert.True(t, ok)
	assert.Equal(t, IntentTracking, intent)

	_, ok = ParseIntent("SHOPPING")
	assert.False(t, ok)
}
