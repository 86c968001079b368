// Package profilesync is the client for the third-party automation-profile
// API. Profile metadata lives outside the fleet; this client only reads
// and pushes it on operator demand, never from the scheduling path.
package profilesync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"swipefleet/internal/store"
)

// Profile is the metadata the automation-profile API keeps per account.
type Profile struct {
	ProfileID string            `json:"profile_id"`
	Name      string            `json:"name"`
	Proxy     string            `json:"proxy,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// Client talks to the automation-profile API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a new client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("profile API error (%d): %s", e.StatusCode, e.Message)
}

// Fetch returns the profile metadata for the account. The account's own
// auth token is the bearer credential.
func (c *Client) Fetch(ctx context.Context, account *store.Account) (*Profile, error) {
	url := fmt.Sprintf("%s/profiles/%s", c.BaseURL, account.Username)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", account.AuthToken))

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var profile Profile
	if err := json.Unmarshal(respBody, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &profile, nil
}

// Push uploads edited profile metadata for the account.
func (c *Client) Push(ctx context.Context, account *store.Account, profile *Profile) error {
	bodyBytes, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	url := fmt.Sprintf("%s/profiles/%s", c.BaseURL, account.Username)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", account.AuthToken))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return nil
}
