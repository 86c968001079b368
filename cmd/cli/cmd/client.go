package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"swipefleet/pkg/api"

	"github.com/spf13/viper"
)

// FleetClient handles API calls to the swipefleet controller.
type FleetClient struct {
	BaseURL    string
	Key        string
	HTTPClient *http.Client
}

// NewFleetClient creates a new client with the given base URL and API key.
func NewFleetClient(baseURL, key string) *FleetClient {
	return &FleetClient{
		BaseURL: baseURL,
		Key:     key,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError represents an error response from the API.
type APIError struct {
	StatusCode int
	Message    string
	// ConflictingJobIDs is populated on 409 responses.
	ConflictingJobIDs []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// do issues a request and decodes the JSON response into out (skipped
// when out is nil).
func (c *FleetClient) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequest(method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Add("Authorization", fmt.Sprintf("Bearer %s", c.Key))
	httpReq.Header.Add("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var errResp api.ErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
			apiErr.ConflictingJobIDs = errResp.ConflictingJobIDs
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CreateAccount sends POST /accounts.
func (c *FleetClient) CreateAccount(req api.CreateAccountRequest) (*api.AccountResponse, error) {
	var resp api.AccountResponse
	if err := c.do(http.MethodPost, "/accounts", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListAccounts sends GET /accounts with the given query string.
func (c *FleetClient) ListAccounts(query string) ([]api.AccountResponse, error) {
	path := "/accounts"
	if query != "" {
		path += "?" + query
	}
	var resp []api.AccountResponse
	if err := c.do(http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteAccount sends DELETE /accounts/{id}.
func (c *FleetClient) DeleteAccount(accountID string) error {
	return c.do(http.MethodDelete, "/accounts/"+accountID, nil, nil)
}

// RequestJob sends POST /accounts/{id}/jobs.
func (c *FleetClient) RequestJob(accountID string, req api.RequestJobRequest) (*api.JobResponse, error) {
	var resp api.JobResponse
	if err := c.do(http.MethodPost, "/accounts/"+accountID+"/jobs", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetJob sends GET /jobs/{id}.
func (c *FleetClient) GetJob(jobID string) (*api.JobResponse, error) {
	var resp api.JobResponse
	if err := c.do(http.MethodGet, "/jobs/"+jobID, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelJob sends POST /jobs/{id}/cancel.
func (c *FleetClient) CancelJob(jobID string) (*api.JobResponse, error) {
	var resp api.JobResponse
	if err := c.do(http.MethodPost, "/jobs/"+jobID+"/cancel", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetStatus sends PUT /accounts/{id}/status.
func (c *FleetClient) SetStatus(accountID, status string) (*api.AccountResponse, error) {
	var resp api.AccountResponse
	if err := c.do(http.MethodPut, "/accounts/"+accountID+"/status", api.SetStatusRequest{Status: status}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// PreviousStatus sends GET /accounts/{id}/status/previous.
func (c *FleetClient) PreviousStatus(accountID string) (*api.PreviousStatusResponse, error) {
	var resp api.PreviousStatusResponse
	if err := c.do(http.MethodGet, "/accounts/"+accountID+"/status/previous", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transitions sends GET /accounts/{id}/transitions.
func (c *FleetClient) Transitions(accountID string) ([]api.TransitionResponse, error) {
	var resp []api.TransitionResponse
	if err := c.do(http.MethodGet, "/accounts/"+accountID+"/transitions", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Profile sends GET /accounts/{id}/profile.
func (c *FleetClient) Profile(accountID string) (*api.ProfileResponse, error) {
	var resp api.ProfileResponse
	if err := c.do(http.MethodGet, "/accounts/"+accountID+"/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VPSLocation sends GET /vps/{id}/location.
func (c *FleetClient) VPSLocation(vpsID string) (*api.VPSLocationResponse, error) {
	var resp api.VPSLocationResponse
	if err := c.do(http.MethodGet, "/vps/"+vpsID+"/location", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateVPS sends POST /vps.
func (c *FleetClient) CreateVPS(req api.CreateVPSRequest) (*api.VPSResponse, error) {
	var resp api.VPSResponse
	if err := c.do(http.MethodPost, "/vps", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListVPS sends GET /vps.
func (c *FleetClient) ListVPS() ([]api.VPSResponse, error) {
	var resp []api.VPSResponse
	if err := c.do(http.MethodGet, "/vps", nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteVPS sends DELETE /vps/{id}.
func (c *FleetClient) DeleteVPS(vpsID string) error {
	return c.do(http.MethodDelete, "/vps/"+vpsID, nil, nil)
}

// clientFromConfig builds a client from the resolved flags/env, or an
// error when the API key is missing.
func clientFromConfig() (*FleetClient, error) {
	key := viper.GetString("key")
	if key == "" {
		return nil, fmt.Errorf("API key not found. Please set it using the --key flag or the SWIPEFLEET_KEY environment variable")
	}
	return NewFleetClient(viper.GetString("url"), key), nil
}
