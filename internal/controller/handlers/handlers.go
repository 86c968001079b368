// Package handlers contains HTTP handlers for the controller API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"swipefleet/internal/collab/geo"
	"swipefleet/internal/collab/profilesync"
	"swipefleet/internal/engine"
	"swipefleet/internal/store"
	"swipefleet/pkg/api"

	"github.com/google/uuid"
)

// StoreFactory combines the store reads the controller needs directly.
// Everything that mutates state goes through the Engine.
type StoreFactory interface {
	Ping(ctx context.Context) error
	CreateAccount(ctx context.Context, tx store.DBTransaction, account *store.Account) error
	GetAccountByID(ctx context.Context, id uuid.UUID) (*store.Account, error)
	ListAccounts(ctx context.Context) ([]store.Account, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*store.SwipeJob, error)
	CreateResource(ctx context.Context, tx store.DBTransaction, vps *store.VPS) error
	GetResourceByID(ctx context.Context, id uuid.UUID) (*store.VPS, error)
	ListResources(ctx context.Context) ([]store.VPS, error)
}

// ProfileDirectory reads automation-profile metadata held by the external
// profile service.
type ProfileDirectory interface {
	Fetch(ctx context.Context, account *store.Account) (*profilesync.Profile, error)
}

// GeoResolver resolves a network address to location metadata.
type GeoResolver interface {
	Lookup(ctx context.Context, address string) (*geo.Location, error)
}

// Engine is the coordination surface the handlers drive.
type Engine interface {
	RequestJob(ctx context.Context, accountID uuid.UUID, jobType store.JobType, createdBy store.CreatedBy) (*store.SwipeJob, error)
	RequestJobOn(ctx context.Context, accountID uuid.UUID, jobType store.JobType, createdBy store.CreatedBy, vpsID uuid.UUID) (*store.SwipeJob, error)
	TransitionJob(ctx context.Context, jobID uuid.UUID, event engine.Event) (*store.SwipeJob, error)
	SetStatus(ctx context.Context, accountID uuid.UUID, status store.AccountStatus) (*store.Account, error)
	PreviousNonTransientStatus(ctx context.Context, accountID uuid.UUID) (store.AccountStatus, error)
	StatusHistory(ctx context.Context, accountID uuid.UUID) ([]store.StatusTransition, error)
	DestroyAccount(ctx context.Context, accountID uuid.UUID) error
	DestroyResource(ctx context.Context, vpsID uuid.UUID) error
}

// Handlers holds all HTTP handlers and their dependencies. The collab
// clients are optional; their endpoints answer 501 when unconfigured.
type Handlers struct {
	store    StoreFactory
	engine   Engine
	profiles ProfileDirectory
	geo      GeoResolver
}

// Option configures optional handler dependencies.
type Option func(*Handlers)

// WithProfileSync enables the account-profile endpoint.
func WithProfileSync(p ProfileDirectory) Option {
	return func(h *Handlers) { h.profiles = p }
}

// WithGeo enables the VPS location endpoint.
func WithGeo(g GeoResolver) Option {
	return func(h *Handlers) { h.geo = g }
}

// New creates a new Handlers instance with the given dependencies.
func New(s StoreFactory, e Engine, opts ...Option) *Handlers {
	h := &Handlers{store: s, engine: e}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// A helper function to write standard JSON responses.
func (h *Handlers) respondJson(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// A helper function to return consistent error messages.
func (h *Handlers) httpError(w http.ResponseWriter, message string, code int) {
	h.respondJson(w, code, api.ErrorResponse{
		Error: message,
		Code:  strconv.Itoa(code),
	})
}

// engineError maps the engine's error taxonomy onto HTTP statuses.
func (h *Handlers) engineError(w http.ResponseWriter, err error) {
	var conflict *engine.AlreadyRunningError
	var invalid *engine.InvalidTransitionError

	switch {
	case errors.As(err, &conflict):
		ids := make([]string, len(conflict.JobIDs))
		for i, id := range conflict.JobIDs {
			ids[i] = id.String()
		}
		h.respondJson(w, http.StatusConflict, api.ErrorResponse{
			Error:             "Account has unfinished jobs",
			Code:              "409",
			ConflictingJobIDs: ids,
		})
	case errors.Is(err, engine.ErrNoResourceAvailable):
		h.httpError(w, "No VPS available", http.StatusServiceUnavailable)
	case errors.Is(err, engine.ErrNotFound):
		h.httpError(w, "Not found", http.StatusNotFound)
	case errors.As(err, &invalid):
		h.respondJson(w, http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:   "Transition not permitted",
			Code:    "422",
			Details: err.Error(),
		})
	default:
		h.httpError(w, "Internal error", http.StatusInternalServerError)
	}
}

func accountResponse(a *store.Account) api.AccountResponse {
	resp := api.AccountResponse{
		ID:          a.ID.String(),
		Username:    a.Username,
		Status:      a.Status.String(),
		WarmUp:      a.WarmUp,
		Gold:        a.Gold,
		ProxyActive: a.ProxyActive,
		TotalSwipes: a.TotalSwipes,
		CreatedAt:   a.CreatedAt,
	}
	if a.ScheduleID != nil {
		s := a.ScheduleID.String()
		resp.ScheduleID = &s
	}
	return resp
}

func jobResponse(j *store.SwipeJob) api.JobResponse {
	resp := api.JobResponse{
		ID:         j.ID.String(),
		AccountID:  j.AccountID.String(),
		Status:     string(j.Status),
		Type:       string(j.Type),
		CreatedBy:  string(j.CreatedBy),
		Swipes:     j.Swipes,
		Error:      j.ErrorMessage,
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}
	if j.VPSID != nil {
		v := j.VPSID.String()
		resp.VPSID = &v
	}
	return resp
}

func vpsResponse(v *store.VPS) api.VPSResponse {
	resp := api.VPSResponse{
		ID:        v.ID.String(),
		Name:      v.Name,
		Address:   v.Address,
		OwnerID:   v.OwnerID.String(),
		CreatedAt: v.CreatedAt,
	}
	if v.ScheduleID != nil {
		s := v.ScheduleID.String()
		resp.ScheduleID = &s
	}
	return resp
}
