package smsa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// RatesConfig controls the rate inquiry client.
type RatesConfig struct {
	BaseURL    string
	Passkey    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// RatesClient wraps the SMSA rate inquiry REST endpoint.
type RatesClient struct {
	baseURL    string
	passkey    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewRatesClient creates a configured rates client.
func NewRatesClient(cfg RatesConfig) (*RatesClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("smsa: rates base URL is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &RatesClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		passkey:    cfg.Passkey,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// rateInquiryRequest matches the provider's field names exactly,
// including the lowercase ones and weight-as-string.
type rateInquiryRequest struct {
	FromCountry     string `json:"fromCountry"`
	FromCity        string `json:"fromCity"`
	ToCountry       string `json:"toCountry"`
	ToCity          string `json:"toCity"`
	Documents       string `json:"documents"`
	ProductCategory string `json:"productcategory"`
	Weight          string `json:"weight"`
	Passkey         string `json:"passkey"`
	Language        string `json:"language"`
}

type rateInquiryResponse struct {
	Success bool         `json:"Success"`
	Data    []RateOption `json:"Data"`
}

// Quote returns the available service options and prices for a lane.
func (c *RatesClient) Quote(ctx context.Context, q RateQuery) ([]RateOption, error) {
	payload := rateInquiryRequest{
		FromCountry:     q.FromCountry,
		FromCity:        q.FromCity,
		ToCountry:       q.ToCountry,
		ToCity:          q.ToCity,
		Documents:       "documents",
		ProductCategory: "Parcel",
		Weight:          q.WeightKG,
		Passkey:         c.passkey,
		Language:        "En",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("smsa: marshal rate inquiry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("smsa: build rate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smsa: rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("smsa: rates API error %d: %s", resp.StatusCode, string(snippet))
	}

	var data rateInquiryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("smsa: decode rate response: %w", err)
	}
	if !data.Success {
		return nil, errors.New("smsa: rate inquiry was not successful")
	}
	return data.Data, nil
}
