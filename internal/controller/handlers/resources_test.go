package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"swipefleet/internal/engine"
	"swipefleet/internal/store"
	"swipefleet/pkg/api"

	"github.com/google/uuid"
)

func TestCreateVPS(t *testing.T) {
	ownerID := uuid.New()
	scheduleID := uuid.New().String()

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "success",
			body:       `{"name": "fra-01", "address": "10.0.0.5", "owner_id": "` + ownerID.String() + `", "schedule_id": "` + scheduleID + `"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       `{"address": "10.0.0.5", "owner_id": "` + ownerID.String() + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing address",
			body:       `{"name": "fra-01", "owner_id": "` + ownerID.String() + `"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad owner id",
			body:       `{"name": "fra-01", "address": "10.0.0.5", "owner_id": "nope"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "bad schedule id",
			body:       `{"name": "fra-01", "address": "10.0.0.5", "owner_id": "` + ownerID.String() + `", "schedule_id": "nope"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed json",
			body:       `{`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := &mockStore{}
			h := New(ms, &mockEngine{})

			req := httptest.NewRequest(http.MethodPost, "/vps", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			h.CreateVPS(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusCreated {
				if ms.capturedResource == nil {
					t.Fatal("expected the vps to reach the store")
				}
				if ms.capturedResource.Name != "fra-01" {
					t.Errorf("stored name = %q, want %q", ms.capturedResource.Name, "fra-01")
				}
				if ms.capturedResource.ScheduleID == nil {
					t.Error("expected the schedule binding to be stored")
				}
			}
		})
	}
}

func TestListVPS(t *testing.T) {
	ms := &mockStore{
		listResourcesResp: []store.VPS{
			{ID: uuid.New(), Name: "fra-01", Address: "10.0.0.5", OwnerID: uuid.New()},
			{ID: uuid.New(), Name: "fra-02", Address: "10.0.0.6", OwnerID: uuid.New()},
		},
	}
	h := New(ms, &mockEngine{})

	req := httptest.NewRequest(http.MethodGet, "/vps", nil)
	rec := httptest.NewRecorder()
	h.ListVPS(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var resp []api.VPSResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp) != 2 {
		t.Errorf("got %d hosts, want 2", len(resp))
	}
}

func TestDeleteVPS(t *testing.T) {
	vpsID := uuid.New()

	tests := []struct {
		name       string
		id         string
		engineErr  error
		wantStatus int
	}{
		{name: "success", id: vpsID.String(), wantStatus: http.StatusNoContent},
		{name: "invalid id", id: "nope", wantStatus: http.StatusBadRequest},
		{name: "unknown vps", id: vpsID.String(), engineErr: engine.ErrNotFound, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&mockStore{}, &mockEngine{destroyResourceErr: tt.engineErr})

			req := httptest.NewRequest(http.MethodDelete, "/vps/"+tt.id, nil)
			req.SetPathValue("id", tt.id)
			rec := httptest.NewRecorder()
			h.DeleteVPS(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
