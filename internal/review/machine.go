// Package review implements the profile-change workflow: a member submits a
// change, a tier 1-2 reviewer recommends or rejects it, and a tier 3+ finalizer
// applies or discards it. The package is storage free; callers load a member and
// its pending slot, run one operation, and persist the result.
package review

import (
	"errors"
	"fmt"
	"time"

	"github.com/staffsync/staffsync-api/internal/domain"
)

var (
	ErrUnauthorized  = errors.New("action not permitted")
	ErrNoPending     = errors.New("no pending profile change")
	ErrPendingExists = errors.New("a profile change is already pending")
	ErrInvalidState  = errors.New("operation not valid in current state")
	ErrInvalidUpdate = errors.New("invalid profile update")
)

// State is the position of a member's pending slot in the workflow.
type State string

const (
	StateNone        State = "NONE"
	StatePending     State = "PENDING"
	StateRecommended State = "RECOMMENDED"
	StateRejected    State = "REJECTED"
)

var allowedTransitions = map[State][]State{
	StateNone:        {StatePending},
	StatePending:     {StateRecommended, StateRejected, StateNone},
	StateRecommended: {StateNone},
	StateRejected:    {StateNone},
}

func isValidTransition(current, next State) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Actor is the user invoking a workflow operation.
type Actor struct {
	ID   string
	Tier domain.Tier
}

// ActorFromUser builds an Actor from a loaded user.
func ActorFromUser(u *domain.User) Actor {
	return Actor{ID: u.ID, Tier: u.Tier}
}

// Outcome describes a finalized request.
type Outcome struct {
	Request domain.ProfileChangeRequest
	Applied []domain.FieldChange
}

// Workflow holds one member and its optional pending request.
type Workflow struct {
	member  domain.User
	pending *domain.ProfileChangeRequest
	now     func() time.Time
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithClock overrides the time source used for submission and review stamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) {
		if now != nil {
			w.now = now
		}
	}
}

// New builds a workflow for member. A nil pending means the slot is empty.
func New(member domain.User, pending *domain.ProfileChangeRequest, opts ...Option) *Workflow {
	w := &Workflow{member: member, now: time.Now}
	if pending != nil {
		req := pending.Clone()
		w.pending = &req
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Member returns a copy of the member record as it stands in the workflow.
func (w *Workflow) Member() domain.User {
	return w.member
}

// Pending returns the outstanding request, if any.
func (w *Workflow) Pending() (domain.ProfileChangeRequest, bool) {
	if w.pending == nil {
		return domain.ProfileChangeRequest{}, false
	}
	return w.pending.Clone(), true
}

// State reports the current state of the slot.
func (w *Workflow) State() State {
	if w.pending == nil {
		return StateNone
	}
	switch w.pending.Status {
	case domain.ChangeStatusRecommended:
		return StateRecommended
	case domain.ChangeStatusRejected:
		return StateRejected
	default:
		return StatePending
	}
}

// Submit stages updates for review. Only the member may submit a change to
// their own record, and only while the slot is empty.
func (w *Workflow) Submit(actor Actor, updates domain.ProfileUpdates) (domain.ProfileChangeRequest, error) {
	if !actor.Tier.Allows(domain.ActionSubmit) {
		return domain.ProfileChangeRequest{}, ErrUnauthorized
	}
	if actor.ID != w.member.ID {
		return domain.ProfileChangeRequest{}, fmt.Errorf("%w: members may only submit changes to their own record", ErrUnauthorized)
	}
	if w.pending != nil {
		return domain.ProfileChangeRequest{}, ErrPendingExists
	}
	if err := updates.Validate(); err != nil {
		return domain.ProfileChangeRequest{}, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	if err := w.transition(StatePending); err != nil {
		return domain.ProfileChangeRequest{}, err
	}

	w.pending = &domain.ProfileChangeRequest{
		MemberID:    w.member.ID,
		Updates:     updates.Clone(),
		SubmittedBy: actor.ID,
		SubmittedAt: w.now(),
		Status:      domain.ChangeStatusPending,
	}
	return w.pending.Clone(), nil
}

// Recommend records a reviewer's verdict on the pending request.
func (w *Workflow) Recommend(actor Actor, approve bool) (domain.ProfileChangeRequest, error) {
	if !actor.Tier.Allows(domain.ActionRecommend) {
		return domain.ProfileChangeRequest{}, ErrUnauthorized
	}
	if w.pending == nil {
		return domain.ProfileChangeRequest{}, ErrNoPending
	}

	next, status := StateRejected, domain.ChangeStatusRejected
	if approve {
		next, status = StateRecommended, domain.ChangeStatusRecommended
	}
	if err := w.transition(next); err != nil {
		return domain.ProfileChangeRequest{}, err
	}

	now := w.now()
	reviewer := actor.ID
	w.pending.Status = status
	w.pending.RecommendedBy = &reviewer
	w.pending.RecommendedAt = &now
	return w.pending.Clone(), nil
}

// Finalize applies (approve) or discards the pending request. The slot is
// cleared in both cases.
func (w *Workflow) Finalize(actor Actor, approve bool) (Outcome, error) {
	if !actor.Tier.Allows(domain.ActionFinalize) {
		return Outcome{}, ErrUnauthorized
	}
	if w.pending == nil {
		return Outcome{}, ErrNoPending
	}
	if err := w.transition(StateNone); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Request: w.pending.Clone()}
	if approve {
		outcome.Applied = w.member.ApplyUpdates(w.pending.Updates)
		outcome.Request.Status = domain.ChangeStatusApproved
	} else {
		outcome.Request.Status = domain.ChangeStatusRejected
	}
	w.pending = nil
	return outcome, nil
}

// UpdateDirect lets a finalizer edit the member immediately without staging a
// request. Any outstanding request is left untouched.
func (w *Workflow) UpdateDirect(actor Actor, updates domain.ProfileUpdates) ([]domain.FieldChange, error) {
	if !actor.Tier.Allows(domain.ActionDirectUpdate) {
		return nil, ErrUnauthorized
	}
	if err := updates.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	return w.member.ApplyUpdates(updates), nil
}

func (w *Workflow) transition(next State) error {
	current := w.State()
	if !isValidTransition(current, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidState, current, next)
	}
	return nil
}
