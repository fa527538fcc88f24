// Package copart provides the ad-hoc lot-status lookup against the
// public Copart lot-details endpoint. This is a thin proxied call, not
// part of the reconciliation core.
package copart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// DefaultBaseURL is the public Copart lot-details endpoint.
const DefaultBaseURL = "https://www.copart.com/public/data/lotdetails/solr"

// ErrLotNotFound is returned when Copart reports a non-success
// returnCode for the lot.
var ErrLotNotFound = errors.New("copart: lot details not available")

// userAgents is rotated per request; the endpoint rejects obvious
// non-browser clients.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.3 Safari/605.1.15",
}

// Client fetches lot details.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a lot-status client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    DefaultBaseURL,
	}
}

// NewClientWithBaseURL is used by tests to point at a local server.
func NewClientWithBaseURL(timeout time.Duration, baseURL string) *Client {
	c := NewClient(timeout)
	c.baseURL = baseURL
	return c
}

// LotDetails fetches the raw lot-details document for a lot number.
// The payload is passed through untouched after validating returnCode.
func (c *Client) LotDetails(ctx context.Context, lotNumber string) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, lotNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build lot details request: %w", err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch lot details: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch lot details: unexpected status %d", resp.StatusCode)
	}

	var payload json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode lot details: %w", err)
	}

	var envelope struct {
		ReturnCode int `json:"returnCode"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode lot details envelope: %w", err)
	}
	if envelope.ReturnCode != 1 {
		return nil, fmt.Errorf("%w: returnCode %d for lot %s", ErrLotNotFound, envelope.ReturnCode, lotNumber)
	}

	return payload, nil
}
