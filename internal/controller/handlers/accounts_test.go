package handlers

import (
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

func activeAccount() *store.Account {
	return &store.Account{
		ID:          uuid.New(),
		Username:    "tester",
		Status:      store.AccountStatusActive,
		ProxyActive: true,
		CreatedAt:   time.Now().UTC(),
	}
}

func TestCreateAccount(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedInBody string
	}{
		{
			name:           "Success",
			body:           `{"username": "tester", "auth_token": "tok", "proxy_active": true}`,
			expectedStatus: http.StatusCreated,
			expectedInBody: `"status":"active"`,
		},
		{
			name:           "Invalid JSON",
			body:           `{invalid-json}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Invalid request body",
		},
		{
			name:           "Missing Required Fields",
			body:           `{"username": ""}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Username and AuthToken are required",
		},
		{
			name:           "Invalid Schedule ID",
			body:           `{"username": "tester", "auth_token": "tok", "schedule_id": "nope"}`,
			expectedStatus: http.StatusBadRequest,
			expectedInBody: "Invalid schedule id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockStore{}
			h := New(mock, &mockEngine{})

			req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			h.CreateAccount(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}
			if tt.expectedInBody != "" && !strings.Contains(rr.Body.String(), tt.expectedInBody) {
				t.Errorf("body %q does not contain %q", rr.Body.String(), tt.expectedInBody)
			}
		})
	}
}

func TestListAccounts_FilterQuery(t *testing.T) {
	gold := *activeAccount()
	gold.Gold = true
	regular := *activeAccount()

	mock := &mockStore{listAccountsResp: []store.Account{gold, regular}}
	h := New(mock, &mockEngine{})

	req := httptest.NewRequest(http.MethodGet, "/accounts?gold=true", nil)
	rr := httptest.NewRecorder()
	h.ListAccounts(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []api.AccountResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != gold.ID.String() {
		t.Errorf("filter returned wrong accounts: %+v", resp)
	}
}

func TestListAccounts_AliveFilter(t *testing.T) {
	live := *activeAccount()
	gone := *activeAccount()
	gone.Status = store.AccountStatusDeleted

	mock := &mockStore{listAccountsResp: []store.Account{live, gone}}
	h := New(mock, &mockEngine{})

	req := httptest.NewRequest(http.MethodGet, "/accounts?alive=true", nil)
	rr := httptest.NewRecorder()
	h.ListAccounts(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []api.AccountResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != live.ID.String() {
		t.Errorf("alive filter returned wrong accounts: %+v", resp)
	}

	// Inverted, the filter selects only the dead account.
	req = httptest.NewRequest(http.MethodGet, "/accounts?alive=false", nil)
	rr = httptest.NewRecorder()
	h.ListAccounts(rr, req)

	resp = nil
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 1 || resp[0].ID != gone.ID.String() {
		t.Errorf("alive=false filter returned wrong accounts: %+v", resp)
	}
}

func TestSetStatus(t *testing.T) {
	account := activeAccount()

	tests := []struct {
		name           string
		body           string
		mockSetup      func(*mockEngine)
		expectedStatus int
	}{
		{
			name: "Success",
			body: `{"status": "banned"}`,
			mockSetup: func(m *mockEngine) {
				banned := *account
				banned.Status = store.AccountStatusBanned
				m.setStatusResp = &banned
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Unknown Status",
			body:           `{"status": "hibernating"}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "Unknown Account",
			body: `{"status": "banned"}`,
			mockSetup: func(m *mockEngine) {
				m.setStatusErr = engine.ErrNotFound
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

			req := httptest.NewRequest(http.MethodPut, "/accounts/"+account.ID.String()+"/status", strings.NewReader(tt.body))
			req.SetPathValue("id", account.ID.String())
			rr := httptest.NewRecorder()
			h.SetStatus(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestPreviousStatus(t *testing.T) {
	accountID := uuid.New()

	mock := &mockEngine{prevStatusResp: store.AccountStatusOutOfLikes}
	h := New(&mockStore{}, mock)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/status/previous", nil)
	req.SetPathValue("id", accountID.String())
	rr := httptest.NewRecorder()
	h.PreviousStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	var resp api.PreviousStatusResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "out_of_likes" {
		t.Errorf("got status %q, want out_of_likes", resp.Status)
	}
}

func TestPreviousStatus_NoQualifyingRecord(t *testing.T) {
	accountID := uuid.New()
	mock := &mockEngine{prevStatusErr: engine.ErrNotFound}
	h := New(&mockStore{}, mock)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/status/previous", nil)
	req.SetPathValue("id", accountID.String())
	rr := httptest.NewRecorder()
	h.PreviousStatus(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestDeleteAccount(t *testing.T) {
	accountID := uuid.New()

	tests := []struct {
		name           string
		mockSetup      func(*mockEngine)
		expectedStatus int
	}{
		{
			name:           "Success",
			expectedStatus: http.StatusNoContent,
		},
		{
			name: "Unknown Account",
			mockSetup: func(m *mockEngine) {
				m.destroyAccountErr = engine.ErrNotFound
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

			req := httptest.NewRequest(http.MethodDelete, "/accounts/"+accountID.String(), nil)
			req.SetPathValue("id", accountID.String())
			rr := httptest.NewRecorder()
			h.DeleteAccount(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("got status %d, want %d", rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestListTransitions(t *testing.T) {
	accountID := uuid.New()
	mock := &mockEngine{
		historyResp: []store.StatusTransition{
			{ID: 2, AccountID: accountID, BeforeStatus: store.AccountStatusActive, AfterStatus: store.AccountStatusBanned, CreatedAt: time.Now().UTC()},
			{ID: 1, AccountID: accountID, BeforeStatus: store.AccountStatusActive, AfterStatus: store.AccountStatusActive, CreatedAt: time.Now().UTC()},
		},
	}
	h := New(&mockStore{}, mock)

	req := httptest.NewRequest(http.MethodGet, "/accounts/"+accountID.String()+"/transitions", nil)
	req.SetPathValue("id", accountID.String())
	rr := httptest.NewRecorder()
	h.ListTransitions(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
	}

	var resp []api.TransitionResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != 2 {
		t.Errorf("unexpected transitions: %+v", resp)
	}
}
