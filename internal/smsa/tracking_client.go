package smsa

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

const trackBulkConcurrency = 4

// TrackingConfig controls how the tracking client behaves.
type TrackingConfig struct {
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// TrackingClient wraps the SMSA tracking SOAP endpoint.
type TrackingClient struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewTrackingClient creates a configured tracking client.
func NewTrackingClient(cfg TrackingConfig) (*TrackingClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("smsa: tracking base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &TrackingClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

const trackingEnvelopeTmpl = `<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:tem="http://tempuri.org/">
  <soapenv:Header/>
  <soapenv:Body>
    <tem:getSMSATrackingDetails>
      <tem:lang>%s</tem:lang>
      <tem:awb>%s</tem:awb>
      <tem:username>%s</tem:username>
      <tem:password>%s</tem:password>
    </tem:getSMSATrackingDetails>
  </soapenv:Body>
</soapenv:Envelope>`

type trackEventXML struct {
	EventDesc   string `xml:"EventDesc"`
	Office      string `xml:"Office"`
	EventTime   string `xml:"EventTime"`
	StatusCode  string `xml:"StatusCode"`
	CountryCode string `xml:"CountryCode"`
}

type trackingEnvelopeXML struct {
	Body struct {
		Fault *struct {
			FaultString string `xml:"faultstring"`
		} `xml:"Fault"`
		Response struct {
			Result struct {
				Events []trackEventXML `xml:"TrackRslt"`
			} `xml:"getSMSATrackingDetailsResult"`
		} `xml:"getSMSATrackingDetailsResponse"`
	} `xml:"Body"`
}

func (c *TrackingClient) postSOAP(ctx context.Context, action, envelope string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(envelope))
	if err != nil {
		return nil, fmt.Errorf("smsa: build tracking request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml")
	req.Header.Set("SOAPAction", action)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smsa: tracking request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("smsa: read tracking response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		snippet := string(body)
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("smsa: tracking API error %d: %s", resp.StatusCode, snippet)
	}
	return body, nil
}

// TrackSingle looks up one AWB. API and parse failures are returned as
// a structured result with an error code, never as a Go error, so one
// bad AWB cannot sink a bulk request.
func (c *TrackingClient) TrackSingle(ctx context.Context, awb, lang string) TrackingResult {
	if lang == "" {
		lang = "en"
	}
	envelope := fmt.Sprintf(trackingEnvelopeTmpl, lang, awb, c.username, c.password)

	raw, err := c.postSOAP(ctx, "http://tempuri.org/iTrack/getSMSATrackingDetails", envelope)
	if err != nil {
		c.logger.Warn("tracking API call failed", "awb", awb, "error", err)
		return TrackingResult{
			AWB:          awb,
			Status:       StatusException,
			ErrorCode:    "API_ERROR",
			ErrorMessage: err.Error(),
		}
	}

	return parseTrackingResponse(raw, awb)
}

func parseTrackingResponse(raw []byte, awb string) TrackingResult {
	var env trackingEnvelopeXML
	if err := xml.Unmarshal(raw, &env); err != nil {
		return TrackingResult{
			AWB:          awb,
			Status:       StatusException,
			ErrorCode:    "PARSE_ERROR",
			ErrorMessage: fmt.Sprintf("invalid tracking response: %v", err),
		}
	}
	if env.Body.Fault != nil {
		msg := env.Body.Fault.FaultString
		if msg == "" {
			msg = "Unknown SOAP fault"
		}
		return TrackingResult{
			AWB:          awb,
			Status:       StatusException,
			ErrorCode:    "SOAP_FAULT",
			ErrorMessage: msg,
		}
	}

	events := env.Body.Response.Result.Events
	if len(events) == 0 {
		return TrackingResult{
			AWB:          awb,
			Status:       StatusException,
			ErrorCode:    "NO_EVENTS",
			ErrorMessage: "No tracking events found for this AWB",
		}
	}

	// Events arrive most recent first.
	latest := events[0]
	checkpoints := make([]TrackingCheckpoint, 0, len(events))
	for _, ev := range events {
		checkpoints = append(checkpoints, TrackingCheckpoint{
			Timestamp:   parseEventTime(ev.EventTime),
			Location:    orDefault(ev.Office, "N/A"),
			Description: orDefault(ev.EventDesc, "Status update"),
			StatusCode:  ev.StatusCode,
		})
	}

	return TrackingResult{
		AWB:             awb,
		Status:          statusEnum(latest.StatusCode),
		FriendlyStatus:  FriendlyStatus(latest.StatusCode, latest.EventDesc),
		CurrentLocation: orDefault(latest.Office, "N/A"),
		LastUpdate:      latest.EventTime,
		Checkpoints:     checkpoints,
	}
}

func parseEventTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// TrackBulk resolves several AWBs concurrently, preserving input order.
func (c *TrackingClient) TrackBulk(ctx context.Context, awbs []string, lang string) ([]TrackingResult, error) {
	results := make([]TrackingResult, len(awbs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(trackBulkConcurrency)
	for i, awb := range awbs {
		g.Go(func() error {
			results[i] = c.TrackSingle(ctx, awb, lang)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
