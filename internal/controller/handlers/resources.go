package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"swipefleet/internal/store"
	"swipefleet/pkg/api"

	"github.com/google/uuid"
)

// CreateVPS handles POST /vps.
// Registers an execution host. Binding a schedule makes the VPS
// eligible for the accounts sharing that schedule.
func (h *Handlers) CreateVPS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateVPSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Address == "" {
		h.httpError(w, "Name and Address are required", http.StatusBadRequest)
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		h.httpError(w, "Invalid owner id", http.StatusBadRequest)
		return
	}

	var scheduleID *uuid.UUID
	if req.ScheduleID != nil {
		parsed, err := uuid.Parse(*req.ScheduleID)
		if err != nil {
			h.httpError(w, "Invalid schedule id", http.StatusBadRequest)
			return
		}
		scheduleID = &parsed
	}

	vps := &store.VPS{
		ID:         uuid.New(),
		Name:       req.Name,
		Address:    req.Address,
		OwnerID:    ownerID,
		ScheduleID: scheduleID,
		CreatedAt:  time.Now().UTC(),
	}

	if err := h.store.CreateResource(ctx, nil, vps); err != nil {
		h.httpError(w, "Failed to create vps", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, vpsResponse(vps))
}

// ListVPS handles GET /vps.
func (h *Handlers) ListVPS(w http.ResponseWriter, r *http.Request) {
	vpsList, err := h.store.ListResources(r.Context())
	if err != nil {
		h.httpError(w, "Failed to list vps", http.StatusInternalServerError)
		return
	}

	resp := make([]api.VPSResponse, 0, len(vpsList))
	for i := range vpsList {
		resp = append(resp, vpsResponse(&vpsList[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// DeleteVPS handles DELETE /vps/{id}.
// Cancels every unfinished job bound to the host, then removes it.
// Terminal jobs keep their history with the binding cleared.
func (h *Handlers) DeleteVPS(w http.ResponseWriter, r *http.Request) {
	vpsID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid vps id", http.StatusBadRequest)
		return
	}

	if err := h.engine.DestroyResource(r.Context(), vpsID); err != nil {
		h.engineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
