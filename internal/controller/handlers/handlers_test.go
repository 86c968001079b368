package handlers

import (
	"context"

	"swipefleet/internal/engine"
	"swipefleet/internal/store"

	"github.com/google/uuid"
)

// Mock Store
type mockStore struct {
	pingErr           error
	createAccountErr  error
	getAccountResp    *store.Account
	getAccountErr     error
	listAccountsResp  []store.Account
	listAccountsErr   error
	getJobResp        *store.SwipeJob
	getJobErr         error
	createResourceErr error
	getResourceResp   *store.VPS
	getResourceErr    error
	listResourcesResp []store.VPS
	listResourcesErr  error

	// Spies (to verify arguments passed by handlers)
	capturedAccount  *store.Account
	capturedResource *store.VPS
}

func (m *mockStore) Ping(ctx context.Context) error { return m.pingErr }

func (m *mockStore) CreateAccount(ctx context.Context, tx store.DBTransaction, account *store.Account) error {
	m.capturedAccount = account
	return m.createAccountErr
}

func (m *mockStore) GetAccountByID(ctx context.Context, id uuid.UUID) (*store.Account, error) {
	return m.getAccountResp, m.getAccountErr
}

func (m *mockStore) ListAccounts(ctx context.Context) ([]store.Account, error) {
	return m.listAccountsResp, m.listAccountsErr
}

func (m *mockStore) GetJobByID(ctx context.Context, id uuid.UUID) (*store.SwipeJob, error) {
	return m.getJobResp, m.getJobErr
}

func (m *mockStore) CreateResource(ctx context.Context, tx store.DBTransaction, vps *store.VPS) error {
	m.capturedResource = vps
	return m.createResourceErr
}

func (m *mockStore) GetResourceByID(ctx context.Context, id uuid.UUID) (*store.VPS, error) {
	return m.getResourceResp, m.getResourceErr
}

func (m *mockStore) ListResources(ctx context.Context) ([]store.VPS, error) {
	return m.listResourcesResp, m.listResourcesErr
}

// Mock Engine
type mockEngine struct {
	requestJobResp     *store.SwipeJob
	requestJobErr      error
	transitionResp     *store.SwipeJob
	transitionErr      error
	setStatusResp      *store.Account
	setStatusErr       error
	prevStatusResp     store.AccountStatus
	prevStatusErr      error
	historyResp        []store.StatusTransition
	historyErr         error
	destroyAccountErr  error
	destroyResourceErr error

	// Spies
	capturedJobType store.JobType
	capturedVPSHint *uuid.UUID
	capturedEvent   engine.Event
	capturedStatus  store.AccountStatus
}

func (m *mockEngine) RequestJob(ctx context.Context, accountID uuid.UUID, jobType store.JobType, createdBy store.CreatedBy) (*store.SwipeJob, error) {
	m.capturedJobType = jobType
	return m.requestJobResp, m.requestJobErr
}

func (m *mockEngine) RequestJobOn(ctx context.Context, accountID uuid.UUID, jobType store.JobType, createdBy store.CreatedBy, vpsID uuid.UUID) (*store.SwipeJob, error) {
	m.capturedJobType = jobType
	m.capturedVPSHint = &vpsID
	return m.requestJobResp, m.requestJobErr
}

func (m *mockEngine) TransitionJob(ctx context.Context, jobID uuid.UUID, event engine.Event) (*store.SwipeJob, error) {
	m.capturedEvent = event
	return m.transitionResp, m.transitionErr
}

func (m *mockEngine) SetStatus(ctx context.Context, accountID uuid.UUID, status store.AccountStatus) (*store.Account, error) {
	m.capturedStatus = status
	return m.setStatusResp, m.setStatusErr
}

func (m *mockEngine) PreviousNonTransientStatus(ctx context.Context, accountID uuid.UUID) (store.AccountStatus, error) {
	return m.prevStatusResp, m.prevStatusErr
}

func (m *mockEngine) StatusHistory(ctx context.Context, accountID uuid.UUID) ([]store.StatusTransition, error) {
	return m.historyResp, m.historyErr
}

func (m *mockEngine) DestroyAccount(ctx context.Context, accountID uuid.UUID) error {
	return m.destroyAccountErr
}

func (m *mockEngine) DestroyResource(ctx context.Context, vpsID uuid.UUID) error {
	return m.destroyResourceErr
}
