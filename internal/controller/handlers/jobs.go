package handlers

import (
	"encoding/json"
	"net/http"

	"swipefleet/internal/engine"
	"swipefleet/internal/store"
	"swipefleet/pkg/api"

	"github.com/google/uuid"
)

// RequestJob handles POST /accounts/{id}/jobs.
// Admits a job on the account if it has no unfinished work; a conflict
// returns 409 with the blocking job IDs, a fleet without capacity 503.
func (h *Handlers) RequestJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	var req api.RequestJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobType := store.JobTypeSwipe
	if req.Type != "" {
		jobType = store.JobType(req.Type)
		if jobType != store.JobTypeSwipe && jobType != store.JobTypeStatusCheck {
			h.httpError(w, "Unknown job type", http.StatusBadRequest)
			return
		}
	}

	var job *store.SwipeJob
	if req.VPSID != nil {
		vpsID, err := uuid.Parse(*req.VPSID)
		if err != nil {
			h.httpError(w, "Invalid vps id", http.StatusBadRequest)
			return
		}
		job, err = h.engine.RequestJobOn(ctx, accountID, jobType, store.CreatedByUser, vpsID)
		if err != nil {
			h.engineError(w, err)
			return
		}
	} else {
		var err error
		job, err = h.engine.RequestJob(ctx, accountID, jobType, store.CreatedByUser)
		if err != nil {
			h.engineError(w, err)
			return
		}
	}
	h.respondJson(w, http.StatusCreated, jobResponse(job))
}

// GetJob handles GET /jobs/{id}.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.store.GetJobByID(r.Context(), jobID)
	if err != nil {
		h.httpError(w, "Job not found", http.StatusNotFound)
		return
	}
	h.respondJson(w, http.StatusOK, jobResponse(job))
}

// StartJob handles POST /jobs/{id}/start.
// The executor calls this when the run begins on its VPS.
func (h *Handlers) StartJob(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, engine.Start())
}

// CompleteJob handles POST /jobs/{id}/complete.
// The swipe count is accumulated into the account's lifetime counter.
func (h *Handlers) CompleteJob(w http.ResponseWriter, r *http.Request) {
	var req api.CompleteJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Swipes < 0 {
		h.httpError(w, "Swipes must not be negative", http.StatusBadRequest)
		return
	}
	h.transition(w, r, engine.Complete(req.Swipes))
}

// FailJob handles POST /jobs/{id}/fail.
// When the executor diagnosed the account itself, the observed status is
// applied to the account and recorded in the ledger.
func (h *Handlers) FailJob(w http.ResponseWriter, r *http.Request) {
	var req api.FailJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.httpError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status := store.AccountStatus(req.AccountStatus)
	if req.AccountStatus != "" && !status.Valid() {
		h.httpError(w, "Unknown account status", http.StatusBadRequest)
		return
	}
	h.transition(w, r, engine.Fail(req.Reason, status))
}

// CancelJob handles POST /jobs/{id}/cancel.
// Cancelling an already-finished job is a no-op success.
func (h *Handlers) CancelJob(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, engine.Cancel())
}

func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, event engine.Event) {
	jobID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		h.httpError(w, "Invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.engine.TransitionJob(r.Context(), jobID, event)
	if err != nil {
		h.engineError(w, err)
		return
	}
	h.respondJson(w, http.StatusOK, jobResponse(job))
}
