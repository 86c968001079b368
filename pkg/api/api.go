// Package api contains shared JSON request/response structs.
// This package is shared between the CLI and Controller.
package api

import "time"

// CreateAccountRequest is the request body for registering an account.
type CreateAccountRequest struct {
	Username    string  `json:"username"`
	AuthToken   string  `json:"auth_token"`
	ScheduleID  *string `json:"schedule_id,omitempty"`
	WarmUp      bool    `json:"warm_up,omitempty"`
	Gold        bool    `json:"gold,omitempty"`
	ProxyActive bool    `json:"proxy_active"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Status      string    `json:"status"`
	ScheduleID  *string   `json:"schedule_id,omitempty"`
	WarmUp      bool      `json:"warm_up"`
	Gold        bool      `json:"gold"`
	ProxyActive bool      `json:"proxy_active"`
	TotalSwipes int       `json:"total_swipes"`
	CreatedAt   time.Time `json:"created_at"`
}

// RequestJobRequest is the request body for admitting a job on an account.
// Type defaults to "swipe" when omitted. VPSID optionally pins the job to
// a specific host; an unknown hint falls back to schedule selection.
type RequestJobRequest struct {
	Type  string  `json:"type,omitempty"`
	VPSID *string `json:"vps_id,omitempty"`
}

// JobResponse represents a swipe job in API responses.
type JobResponse struct {
	ID         string     `json:"id"`
	AccountID  string     `json:"account_id"`
	VPSID      *string    `json:"vps_id,omitempty"`
	Status     string     `json:"status"`
	Type       string     `json:"type"`
	CreatedBy  string     `json:"created_by"`
	Swipes     int        `json:"swipes"`
	Error      *string    `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// CompleteJobRequest carries the swipe count of a finished run.
type CompleteJobRequest struct {
	Swipes int `json:"swipes"`
}

// FailJobRequest carries the failure reason and, when the executor
// diagnosed the account itself, the status it observed.
type FailJobRequest struct {
	Reason        string `json:"reason"`
	AccountStatus string `json:"account_status,omitempty"`
}

// SetStatusRequest is the request body for an operator status override.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// PreviousStatusResponse is the response body for the previous
// non-transient status lookup.
type PreviousStatusResponse struct {
	Status string `json:"status"`
}

// TransitionResponse represents one status-ledger record.
type TransitionResponse struct {
	ID           int64     `json:"id"`
	BeforeStatus string    `json:"before_status"`
	AfterStatus  string    `json:"after_status"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateVPSRequest is the request body for registering a VPS.
type CreateVPSRequest struct {
	Name       string  `json:"name"`
	Address    string  `json:"address"`
	OwnerID    string  `json:"owner_id"`
	ScheduleID *string `json:"schedule_id,omitempty"`
}

// VPSResponse represents a VPS in API responses.
type VPSResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	OwnerID    string    `json:"owner_id"`
	ScheduleID *string   `json:"schedule_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProfileResponse is the automation-profile metadata relayed from the
// external profile service.
type ProfileResponse struct {
	ProfileID string            `json:"profile_id"`
	Name      string            `json:"name"`
	Proxy     string            `json:"proxy,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// VPSLocationResponse is the geolocation metadata for a VPS address.
type VPSLocationResponse struct {
	Address string  `json:"address"`
	Country string  `json:"country"`
	Region  string  `json:"region,omitempty"`
	City    string  `json:"city,omitempty"`
	Lat     float64 `json:"lat,omitempty"`
	Lon     float64 `json:"lon,omitempty"`
}

// ErrorResponse is the standard error response format.
// ConflictingJobIDs is set on 409 responses so the caller knows
// which jobs block the account.
type ErrorResponse struct {
	Error             string   `json:"error"`
	Code              string   `json:"code,omitempty"`
	Details           string   `json:"details,omitempty"`
	ConflictingJobIDs []string `json:"conflicting_job_ids,omitempty"`
}
