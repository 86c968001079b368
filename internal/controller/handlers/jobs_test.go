package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"swipefleet/internal/engine"
	"swipefleet/internal/store"
	"swipefleet/pkg/api"

	"github.com/google/uuid"
)

func pendingJob(accountID uuid.UUID) *store.SwipeJob {
	return &store.SwipeJob{
		ID:        uuid.New(),
		AccountID: accountID,
		Status:    store.JobStatusPending,
		Type:      store.JobTypeSwipe,
		CreatedBy: store.CreatedByUser,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRequestJob(t *testing.T) {
	accountID := uuid.New()
	blockingID := uuid.New()

	tests := []struct {
		name           string
		pathID         string
		body           string
		mockSetup      func(*mockEngine)
		expectedStatus int
		expectedInBody string
	}{
		{
			name:   "Success",
			pathID: accountID.String(),
			body:   `{}`,
			mockSetup: func(m *mockEngine) {
				m.requestJobResp = pendingJob(accountID)
			},
			expectedStatus: http.StatusCreated,
			expectedInBody: `"status":"pending"`,
		},
		{
			name:   "Explicit Status Check Type",
			pathID: accountID.String(),
			body:   `{"type":"status_check"}`,
			mockSetup: func(m *mockEngine) {
				m.requestJobResp = pendingJob(accountID)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Invalid Account ID",
			pathID:         "not-a-uuid",
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Invalid account id",
		},
		{
			name:           "Unknown Job Type",
			pathID:         accountID.String(),
			body:           `{"type":"espionage"}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Unknown job type",
		},
		{
			name:   "Account Busy",
			pathID: accountID.String(),
			body:   `{}`,
			mockSetup: func(m *mockEngine) {
				m.requestJobErr = &engine.AlreadyRunningError{
					AccountID: accountID,
					JobIDs:    []uuid.UUID{blockingID},
				}
			},
			expectedStatus: http.StatusConflict,
			expectedInBody: blockingID.String(),
		},
		{
			name:   "No VPS Available",
			pathID: accountID.String(),
			body:   `{}`,
			mockSetup: func(m *mockEngine) {
				m.requestJobErr = engine.ErrNoResourceAvailable
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:   "Unknown Account",
			pathID: accountID.String(),
			body:   `{}`,
			mockSetup: func(m *mockEngine) {
				m.requestJobErr = engine.ErrNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockEngine{}
			if tt.mockSetup != nil {
				tt.mockSetup(mock)
			}
			h := New(&mockStore{}, mock)

			req := httptest.NewRequest(http.MethodPost, "/accounts/"+tt.pathID+"/jobs", bytes.NewReader([]byte(tt.body)))
			req.SetPathValue("id", tt.pathID)

			rr := httptest.NewRecorder()
			h.RequestJob(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}
			if tt.expectedInBody != "" && !strings.Contains(rr.Body.String(), tt.expectedInBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.expectedInBody)
			}
		})
	}
}

func TestRequestJob_VPSHint(t *testing.T) {
	accountID := uuid.New()
	vpsID := uuid.New()

	mock := &mockEngine{requestJobResp: pendingJob(accountID)}
	h := New(&mockStore{}, mock)

	body := `{"vps_id": "` + vpsID.String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts/"+accountID.String()+"/jobs", strings.NewReader(body))
	req.SetPathValue("id", accountID.String())
	rr := httptest.NewRecorder()
	h.RequestJob(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusCreated)
	}
	if mock.capturedVPSHint == nil || *mock.capturedVPSHint != vpsID {
		t.Errorf("engine received hint %v, want %s", mock.capturedVPSHint, vpsID)
	}
}

func TestRequestJob_MalformedVPSHint(t *testing.T) {
	accountID := uuid.New()
	h := New(&mockStore{}, &mockEngine{})

	req := httptest.NewRequest(http.MethodPost, "/accounts/"+accountID.String()+"/jobs", strings.NewReader(`{"vps_id": "nope"}`))
	req.SetPathValue("id", accountID.String())
	rr := httptest.NewRecorder()
	h.RequestJob(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRequestJob_ConflictBodyListsJobIDs(t *testing.T) {
	accountID := uuid.New()
	blocking := []uuid.UUID{uuid.New(), uuid.New()}

	mock := &mockEngine{
		requestJobErr: &engine.AlreadyRunningError{AccountID: accountID, JobIDs: blocking},
	}
	h := New(&mockStore{}, mock)

	req := httptest.NewRequest(http.MethodPost, "/accounts/"+accountID.String()+"/jobs", strings.NewReader(`{}`))
	req.SetPathValue("id", accountID.String())
	rr := httptest.NewRecorder()
	h.RequestJob(rr, req)

	var resp api.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.ConflictingJobIDs) != 2 {
		t.Fatalf("got %d conflicting job ids, want 2", len(resp.ConflictingJobIDs))
	}
	for i, id := range blocking {
		if resp.ConflictingJobIDs[i] != id.String() {
			t.Errorf("conflicting id %d: got %s, want %s", i, resp.ConflictingJobIDs[i], id)
		}
	}
}

func TestCompleteJob(t *testing.T) {
	jobID := uuid.New()
	accountID := uuid.New()

	tests := []struct {
		name           string
		body           string
		mockSetup      func(*mockEngine)
		expectedStatus int
		expectedSwipes int
	}{
		{
			name: "Success",
			body: `{"swipes": 42}`,
			mockSetup: func(m *mockEngine) {
				m.transitionResp = pendingJob(accountID)
			},
			expectedStatus: http.StatusOK,
			expectedSwipes: 42,
		},
		{
			name:           "Negative Swipes",
			body:           `{"swipes": -1}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Not Running",
			body: `{"swipes": 5}`,
			mockSetup: func(m *mockEngine) {
				m.transitionErr = &engine.InvalidTransitionError{
					JobID: jobID,
					From:  store.JobStatusCompleted,
					Event: engine.EventComplete,
				}
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockEngine{}
			if tt.mockSetup != nil {
				tt.mockSetup(mock)
			}
			h := New(&mockStore{}, mock)

			req := httptest.NewRequest(http.MethodPost, "/jobs/"+jobID.String()+"/complete", strings.NewReader(tt.body))
			req.SetPathValue("id", jobID.String())
			rr := httptest.NewRecorder()
			h.CompleteJob(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}
			if tt.expectedSwipes > 0 && mock.capturedEvent.Swipes != tt.expectedSwipes {
				t.Errorf("engine received %d swipes, want %d", mock.capturedEvent.Swipes, tt.expectedSwipes)
			}
		})
	}
}

func TestFailJob_PassesObservedStatus(t *testing.T) {
	jobID := uuid.New()
	mock := &mockEngine{transitionResp: pendingJob(uuid.New())}
	h := New(&mockStore{}, mock)

	body := `{"reason": "login rejected", "account_status": "banned"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs/"+jobID.String()+"/fail", strings.NewReader(body))
	req.SetPathValue("id", jobID.String())
	rr := httptest.NewRecorder()
	h.FailJob(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	if mock.capturedEvent.Kind != engine.EventFail {
		t.Errorf("got event %s, want fail", mock.capturedEvent.Kind)
	}
	if mock.capturedEvent.AccountStatus != store.AccountStatusBanned {
		t.Errorf("got account status %s, want banned", mock.capturedEvent.AccountStatus)
	}
	if mock.capturedEvent.Reason != "login rejected" {
		t.Errorf("got reason %q", mock.capturedEvent.Reason)
	}
}

func TestFailJob_RejectsUnknownStatus(t *testing.T) {
	jobID := uuid.New()
	h := New(&mockStore{}, &mockEngine{})

	body := `{"reason": "x", "account_status": "sleepy"}`
	req := httptest.NewRequest(http.MethodPost, "/jobs/"+jobID.String()+"/fail", strings.NewReader(body))
	req.SetPathValue("id", jobID.String())
	rr := httptest.NewRecorder()
	h.FailJob(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestCancelJob(t *testing.T) {
	jobID := uuid.New()
	mock := &mockEngine{transitionResp: pendingJob(uuid.New())}
	h := New(&mockStore{}, mock)

	req := httptest.NewRequest(http.MethodPost, "/jobs/"+jobID.String()+"/cancel", nil)
	req.SetPathValue("id", jobID.String())
	rr := httptest.NewRecorder()
	h.CancelJob(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	if mock.capturedEvent.Kind != engine.EventCancel {
		t.Errorf("got event %s, want cancel", mock.capturedEvent.Kind)
	}
}
