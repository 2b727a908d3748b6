package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/llm"
	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/internal/smsa"
)

// fakeTrackingService records the AWBs it was asked about.
type fakeTrackingService struct {
	lastAWBs []string
	results  []smsa.TrackingResult
	err      error
}

func (f *fakeTrackingService) TrackBulk(_ context.Context, awbs []string, _ string) ([]smsa.TrackingResult, error) {
	f.lastAWBs = awbs
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// fakeLLM returns canned text, optionally as a token stream.
type fakeLLM struct {
	text       string
	err        error
	lastReq    llm.Request
	streamCall int
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	f.lastReq = req
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Text: f.text, Model: "qwen-test"}, nil
}

func (f *fakeLLM) CompleteStream(_ context.Context, req llm.Request, emit func(llm.Chunk) error) error {
	f.lastReq = req
	f.streamCall++
	if f.err != nil {
		return f.err
	}
	for _, word := range strings.SplitAfter(f.text, " ") {
		if err := emit(llm.Chunk{Text: word}); err != nil {
			return err
		}
	}
	return emit(llm.Chunk{Done: true})
}

func deliveredResult(awb string) smsa.TrackingResult {
	return smsa.TrackingResult{
		AWB:             awb,
		Status:          smsa.StatusDelivered,
		FriendlyStatus:  "Delivered",
		CurrentLocation: "Riyadh",
		LastUpdate:      "2025-03-14 10:22",
	}
}

func TestTrackingAgentNoAWBAsksForOne(t *testing.T) {
	service := &fakeTrackingService{}
	agent := NewTrackingAgent(service, nil, nil)

	res, err := agent.Run(context.Background(), Input{Message: "where is my shipment?"})
	require.NoError(t, err)

	assert.True(t, res.NeedsClarification)
	assert.Contains(t, res.Content, "AWB")
	assert.Nil(t, service.lastAWBs)
}

func TestTrackingAgentExtractsAWBFromMessage(t *testing.T) {
	service := &fakeTrackingService{results: []smsa.TrackingResult{deliveredResult("227047923763")}}
	agent := NewTrackingAgent(service, nil, nil)

	res, err := agent.Run(context.Background(), Input{Message: "track AWB 227047923763 please"})
	require.NoError(t, err)

	assert.Equal(t, []string{"227047923763"}, service.lastAWBs)
	assert.Contains(t, res.Content, "227047923763")
	assert.Contains(t, res.Content, "Delivered")
	assert.Equal(t, "tracking_results", res.Type)
}

func TestTrackingAgentMergesFileAndParameterAWBs(t *testing.T) {
	service := &fakeTrackingService{results: []smsa.TrackingResult{deliveredResult("1111111111")}}
	agent := NewTrackingAgent(service, nil, nil)

	_, err := agent.Run(context.Background(), Input{
		Message: "track 1111111111",
		FileContext: map[string]any{
			"extracted_data": map[string]any{"awb": "2222222222"},
		},
		Parameters: map[string]any{"awb": "3333333333"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1111111111", "2222222222", "3333333333"}, service.lastAWBs)
}

func TestTrackingAgentDeduplicatesAWBs(t *testing.T) {
	service := &fakeTrackingService{results: []smsa.TrackingResult{deliveredResult("1111111111")}}
	agent := NewTrackingAgent(service, nil, nil)

	_, err := agent.Run(context.Background(), Input{
		Message:    "is 1111111111 delivered? I mean 1111111111",
		Parameters: map[string]any{"awb": "1111111111"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1111111111"}, service.lastAWBs)
}

func TestTrackingAgentUsesLLMPhrasing(t *testing.T) {
	service := &fakeTrackingService{results: []smsa.TrackingResult{deliveredResult("227047923763")}}
	client := &fakeLLM{text: "Good news, your shipment was delivered in Riyadh."}
	agent := NewTrackingAgent(service, client, nil)

	res, err := agent.Run(context.Background(), Input{Message: "track 227047923763"})
	require.NoError(t, err)

	assert.Equal(t, "Good news, your shipment was delivered in Riyadh.", res.Content)
	assert.Contains(t, client.lastReq.Messages[0].Content, "227047923763")
}

func TestTrackingAgentFallsBackWhenLLMFails(t *testing.T) {
	service := &fakeTrackingService{results: []smsa.TrackingResult{deliveredResult("227047923763")}}
	client := &fakeLLM{err: errors.New("backend down")}
	agent := NewTrackingAgent(service, client, nil)

	res, err := agent.Run(context.Background(), Input{Message: "track 227047923763"})
	require.NoError(t, err)

	assert.Contains(t, res.Content, "AWB 227047923763: Delivered (location: Riyadh)")
}

func TestTrackingAgentProviderErrorDegrades(t *testing.T) {
	service := &fakeTrackingService{err: errors.New("soap timeout")}
	agent := NewTrackingAgent(service, nil, nil)

	res, err := agent.Run(context.Background(), Input{Message: "track 227047923763"})
	require.NoError(t, err)

	assert.Contains(t, res.Content, "tracking service")
	assert.Equal(t, "soap timeout", res.Metadata["error"])
}

func TestTrackingAgentStreamMatchesRun(t *testing.T) {
	service := &fakeTrackingService{results: []smsa.TrackingResult{deliveredResult("227047923763")}}
	client := &fakeLLM{text: "Your shipment 227047923763 was delivered."}
	agent := NewTrackingAgent(service, client, nil)

	var streamed strings.Builder
	res, err := agent.RunStream(context.Background(), Input{Message: "track 227047923763"}, func(token string) error {
		streamed.WriteString(token)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, res.Content, streamed.String())
	assert.Equal(t, 1, client.streamCall)
}

func TestTrackingAgentStreamFallbackEmitsOnce(t *testing.T) {
	service := &fakeTrackingService{results: []smsa.TrackingResult{deliveredResult("227047923763")}}
	client := &fakeLLM{err: errors.New("backend down")}
	agent := NewTrackingAgent(service, client, nil)

	var tokens []string
	res, err := agent.RunStream(context.Background(), Input{Message: "track 227047923763"}, func(token string) error {
		tokens = append(tokens, token)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, tokens, 1)
	assert.Equal(t, res.Content, tokens[0])
}
