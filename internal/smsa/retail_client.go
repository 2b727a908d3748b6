package smsa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sumitkumar-tci/SMSA-Ai-Assistant/pkg/logging"
)

// RetailConfig controls the service-center lookup client.
type RetailConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// RetailClient wraps the SMSA retail center lookup endpoint.
type RetailClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewRetailClient creates a configured retail client.
func NewRetailClient(cfg RetailConfig) (*RetailClient, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("smsa: retail base URL is required")
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
	return &RetailClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// CentersByCity returns the service centers in the given city.
func (c *RetailClient) CentersByCity(ctx context.Context, city string) ([]RetailCenter, error) {
	endpoint := fmt.Sprintf("%s/centers?city=%s", c.baseURL, url.QueryEscape(city))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("smsa: build retail request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("smsa: retail request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("smsa: retail API error %d: %s", resp.StatusCode, string(snippet))
	}

	var centers []RetailCenter
	if err := json.NewDecoder(resp.Body).Decode(&centers); err != nil {
		return nil, fmt.Errorf("smsa: decode retail response: %w", err)
	}
	return centers, nil
}
