// Package geo enriches VPS records with location metadata. Lookups are
// advisory: a failure or timeout never blocks admission or provisioning.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Location is the metadata returned for a network address.
type Location struct {
	Country string  `json:"country"`
	Region  string  `json:"region,omitempty"`
	City    string  `json:"city,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// Client talks to the IP-geolocation service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a new client. The short timeout keeps a slow geo backend
// from holding up anything that asked for enrichment.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Lookup resolves the address to location metadata.
func (c *Client) Lookup(ctx context.Context, address string) (*Location, error) {
	url := fmt.Sprintf("%s/lookup/%s", c.BaseURL, address)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geo API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var loc Location
	if err := json.Unmarshal(respBody, &loc); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &loc, nil
}
