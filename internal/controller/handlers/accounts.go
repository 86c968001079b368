package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"swipefleet/internal/store"
	"swipefleet/pkg/api"

	"github.com/google/uuid"
)

// CreateAccount handles POST /accounts.
// It registers a fleet account in active status.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Username == "" || req.AuthToken == "" {
		h.httpError(w, "Username and AuthToken are required", http.StatusBadRequest)
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

	account := &store.Account{
		ID:          uuid.New(),
		Username:    req.Username,
		Status:      store.AccountStatusActive,
		ScheduleID:  scheduleID,
		WarmUp:      req.WarmUp,
		Gold:        req.Gold,
		ProxyActive: req.ProxyActive,
		AuthToken:   req.AuthToken,
		CreatedAt:   time.Now().UTC(),
	}

	if err := h.store.CreateAccount(ctx, nil, account); err != nil {
		h.httpError(w, "Failed to create account", http.StatusInternalServerError)
		return
	}

	h.respondJson(w, http.StatusCreated, accountResponse(account))
}

// ListAccounts handles GET /accounts.
// Query params map onto the selection predicates: class, alive, gold,
// warm_up, proxy_active, scheduled.
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	pred := predicateFromQuery(r)

	accounts, err := h.store.ListAccounts(ctx)
	if err != nil {
		h.httpError(w, "Failed to list accounts", http.StatusInternalServerError)
		return
	}

	filtered := store.FilterAccounts(accounts, pred)
	resp := make([]api.AccountResponse, 0, len(filtered))
	for i := range filtered {
		resp = append(resp, accountResponse(&filtered[i]))
	}
	h.respondJson(w, http.StatusOK, resp)
}

// GetAccount handles GET /accounts/{id}.
func (h *Handlers) GetAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	account, err := h.store.GetAccountByID(r.Context(), accountID)
	if err != nil {
		h.httpError(w, "Account not found", http.StatusNotFound)
		return
	}
	h.respondJson(w, http.StatusOK, accountResponse(account))
}

// SetStatus handles PUT /accounts/{id}/status.
// Operator override of the account health status; the change is recorded
// in the status ledger.
func (h *Handlers) SetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	var req api.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status := store.AccountStatus(req.Status)
	if !status.Valid() {
		h.httpError(w, "Unknown account status", http.StatusBadRequest)
		return
	}

	account, err := h.engine.SetStatus(ctx, accountID, status)
	if err != nil {
		h.engineError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, accountResponse(account))
}

// PreviousStatus handles GET /accounts/{id}/status/previous.
// Returns the most recent status that was not the transient vps_error.
func (h *Handlers) PreviousStatus(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	status, err := h.engine.PreviousNonTransientStatus(r.Context(), accountID)
	if err != nil {
		h.engineError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, api.PreviousStatusResponse{Status: status.String()})
}

// ListTransitions handles GET /accounts/{id}/transitions.
// Read-only status time series consumed by reporting.
func (h *Handlers) ListTransitions(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	transitions, err := h.engine.StatusHistory(r.Context(), accountID)
	if err != nil {
		h.engineError(w, err)
		return
	}

	resp := make([]api.TransitionResponse, 0, len(transitions))
	for _, t := range transitions {
		resp = append(resp, api.TransitionResponse{
			ID:           t.ID,
			BeforeStatus: t.BeforeStatus.String(),
			AfterStatus:  t.AfterStatus.String(),
			CreatedAt:    t.CreatedAt,
		})
	}
	h.respondJson(w, http.StatusOK, resp)
}

// DeleteAccount handles DELETE /accounts/{id}.
// Cancels every unfinished job, purges the status ledger, and removes
// the account. Fails without deleting if any job cannot be cancelled.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	if err := h.engine.DestroyAccount(r.Context(), accountID); err != nil {
		h.engineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func predicateFromQuery(r *http.Request) store.AccountPredicate {
	preds := []store.AccountPredicate{}
	q := r.URL.Query()

	if class := q.Get("class"); class != "" {
		preds = append(preds, store.InClass(store.ActivityClass(class)))
	}
	if v := q.Get("alive"); v != "" {
		preds = append(preds, boolPred(v, store.Alive))
	}
	if v := q.Get("gold"); v != "" {
		preds = append(preds, boolPred(v, store.Gold))
	}
	if v := q.Get("warm_up"); v != "" {
		preds = append(preds, boolPred(v, store.WarmingUp))
	}
	if v := q.Get("proxy_active"); v != "" {
		preds = append(preds, boolPred(v, store.ProxyHealthy))
	}
	if v := q.Get("scheduled"); v != "" {
		preds = append(preds, boolPred(v, store.HasSchedule))
	}

	return store.And(preds...)
}

func boolPred(value string, pred store.AccountPredicate) store.AccountPredicate {
	if value == "false" {
		return store.Not(pred)
	}
	return pred
}
