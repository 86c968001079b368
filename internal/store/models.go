// Package store contains the database layer for swipefleet.
package store

import (
	"time"

	"github.com/google/uuid"
)

// Account represents one managed automation identity.
type Account struct {
	ID          uuid.UUID
	Username    string
	Status      AccountStatus
	ScheduleID  *uuid.UUID // grouping unit the account runs under, if any
	WarmUp      bool
	Gold        bool
	ProxyActive bool
	TotalSwipes int
	AuthToken   string // bearer credential consumed by the profile-sync collaborator
	CreatedAt   time.Time
}

// VPS represents a remote host capable of running swipe jobs.
type VPS struct {
	ID         uuid.UUID
	Name       string
	Address    string
	OwnerID    uuid.UUID
	ScheduleID *uuid.UUID
	CreatedAt  time.Time
}

// SwipeJob represents one unit of scheduled work bound to an account
// and an execution resource.
type SwipeJob struct {
	ID           uuid.UUID
	AccountID    uuid.UUID
	VPSID        *uuid.UUID
	Status       JobStatus
	Type         JobType
	CreatedBy    CreatedBy
	Swipes       int // result reported by the executor on completion
	ErrorMessage *string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// StatusTransition is an audit entry capturing a single account status change.
// Rows are append-only and ordered by CreatedAt.
type StatusTransition struct {
	ID           int64
	AccountID    uuid.UUID
	BeforeStatus AccountStatus
	AfterStatus  AccountStatus
	CreatedAt    time.Time
}

// AccountStatus is the closed set of account health states.
type AccountStatus string

const (
	AccountStatusActive         AccountStatus = "active"
	AccountStatusOutOfLikes     AccountStatus = "out_of_likes"
	AccountStatusLikesLimited   AccountStatus = "likes_limited"
	AccountStatusBanned         AccountStatus = "banned"
	AccountStatusShadowbanned   AccountStatus = "shadowbanned"
	AccountStatusCaptcha        AccountStatus = "captcha_required"
	AccountStatusLoggedOut      AccountStatus = "logged_out"
	AccountStatusUnderReview    AccountStatus = "under_review"
	AccountStatusProfileDeleted AccountStatus = "profile_deleted"
	AccountStatusVPSError       AccountStatus = "vps_error"
	AccountStatusDeleted        AccountStatus = "deleted"
)

// accountStatuses is the membership set backing Valid.
var accountStatuses = map[AccountStatus]struct{}{
	AccountStatusActive:         {},
	AccountStatusOutOfLikes:     {},
	AccountStatusLikesLimited:   {},
	AccountStatusBanned:         {},
	AccountStatusShadowbanned:   {},
	AccountStatusCaptcha:        {},
	AccountStatusLoggedOut:      {},
	AccountStatusUnderReview:    {},
	AccountStatusProfileDeleted: {},
	AccountStatusVPSError:       {},
	AccountStatusDeleted:        {},
}

// Valid returns true if s is a member of the fixed enumeration.
func (s AccountStatus) Valid() bool {
	_, ok := accountStatuses[s]
	return ok
}

func (s AccountStatus) String() string {
	return string(s)
}

// ActivityClass groups account statuses for scheduler selection.
type ActivityClass string

const (
	// ClassSwipeable covers accounts the scheduler may admit jobs for.
	ClassSwipeable ActivityClass = "swipeable"
	// ClassBanned covers accounts permanently lost to enforcement.
	ClassBanned ActivityClass = "banned"
	// ClassAttention covers accounts needing operator intervention.
	ClassAttention ActivityClass = "attention"
	// ClassTransient covers the resource-error status.
	ClassTransient ActivityClass = "transient"
	// ClassGone covers soft-deleted accounts.
	ClassGone ActivityClass = "gone"
)

// Class classifies an account status into its activity class.
// This is the single source of truth consumed by all filter predicates.
func (s AccountStatus) Class() ActivityClass {
	switch s {
	case AccountStatusActive, AccountStatusOutOfLikes, AccountStatusLikesLimited:
		return ClassSwipeable
	case AccountStatusBanned, AccountStatusShadowbanned, AccountStatusProfileDeleted:
		return ClassBanned
	case AccountStatusCaptcha, AccountStatusLoggedOut, AccountStatusUnderReview:
		return ClassAttention
	case AccountStatusVPSError:
		return ClassTransient
	default:
		return ClassGone
	}
}

// Alive returns false only for the terminal deleted status.
func (s AccountStatus) Alive() bool {
	return s != AccountStatusDeleted
}

// JobStatus represents the state of a swipe job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusCancelled JobStatus = "cancelled"
	JobStatusFailed    JobStatus = "failed"
)

// NonTerminalJobStatuses is the set of statuses counted by the
// one-job-per-account admission check.
var NonTerminalJobStatuses = []JobStatus{
	JobStatusPending,
	JobStatusQueued,
	JobStatusRunning,
}

// IsTerminal returns true if no transition may leave the status.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusCancelled, JobStatusFailed:
		return true
	}
	return false
}

// validJobTransitions defines the allowed job state machine moves.
// cancelled is reachable from every non-terminal state.
var validJobTransitions = map[JobStatus][]JobStatus{
	JobStatusPending: {JobStatusQueued, JobStatusRunning, JobStatusCancelled},
	JobStatusQueued:  {JobStatusRunning, JobStatusCancelled},
	JobStatusRunning: {JobStatusCompleted, JobStatusFailed, JobStatusCancelled},
}

// CanTransitionTo returns true if moving from s to next is a legal move.
func (s JobStatus) CanTransitionTo(next JobStatus) bool {
	for _, allowed := range validJobTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// JobType distinguishes a normal swipe run from a lightweight status probe.
type JobType string

const (
	JobTypeSwipe       JobType = "swipe"
	JobTypeStatusCheck JobType = "status_check"
)

// CreatedBy records who admitted the job.
type CreatedBy string

const (
	CreatedByUser   CreatedBy = "user"
	CreatedBySystem CreatedBy = "system"
)
