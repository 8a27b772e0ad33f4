package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/events"
	"github.com/staffsync/staffsync-api/internal/observability"
	"github.com/staffsync/staffsync-api/internal/repository"
	"github.com/staffsync/staffsync-api/internal/review"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

const (
	entityProfileChange = "profile_change"
	entityUser          = "user"
)

// ProfileService persists the profile-change workflow.
type ProfileService struct {
	users      repository.UserRepository
	changes    repository.ProfileChangeRepository
	tx         repository.Transactor
	audit      *AuditService
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// ProfileDependencies bundles collaborators for the profile service.
type ProfileDependencies struct {
	UserRepo          repository.UserRepository
	ProfileChangeRepo repository.ProfileChangeRepository
	Transactor        repository.Transactor
	Audit             *AuditService
	Dispatcher        events.Dispatcher
	Metrics           *observability.Metrics
	Logger            *zap.Logger
	Now               func() time.Time
}

// FinalizeResult is the outcome of a finalization plus the member as stored.
type FinalizeResult struct {
	Outcome review.Outcome
	Member  domain.User
}

// NewProfileService constructs the service.
func NewProfileService(deps ProfileDependencies) *ProfileService {
	s := &ProfileService{
		users:      deps.UserRepo,
		changes:    deps.ProfileChangeRepo,
		tx:         deps.Transactor,
		audit:      deps.Audit,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// SubmitChange stages updates to the actor's own record.
func (s *ProfileService) SubmitChange(ctx context.Context, actor *domain.User, updates domain.ProfileUpdates, justification string) (*domain.ProfileChangeRequest, error) {
	var req domain.ProfileChangeRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		wf, err := s.load(ctx, actor.ID)
		if err != nil {
			return err
		}
		req, err = wf.Submit(review.ActorFromUser(actor), updates)
		if err != nil {
			return err
		}
		req.Justification = justification
		if err := s.changes.Save(ctx, &req); err != nil {
			return fmt.Errorf("save profile change: %w", err)
		}
		return s.audit.Record(ctx, &domain.AuditLog{
			ActorID:       &actor.ID,
			TargetUserID:  &req.MemberID,
			Action:        domain.AuditActionFlag,
			Entity:        entityProfileChange,
			Field:         "status",
			OldValue:      string(review.StateNone),
			NewValue:      map[string]any{"status": req.Status, "updates": req.Updates},
			Justification: justification,
			IPAddress:     ClientIP(ctx),
		})
	})
	if err != nil {
		return nil, mapReviewError(err)
	}

	s.metrics.RecordTransition("submit")
	s.publishEvent(ctx, events.Event{
		Type:     events.EventProfileChangeSubmitted,
		MemberID: req.MemberID,
		Actor:    eventActor(actor),
		Payload:  events.ProfileChangeSubmittedPayload{Fields: req.Updates.Fields()},
	})
	return &req, nil
}

// RecommendChange records a reviewer's verdict on a member's pending request.
func (s *ProfileService) RecommendChange(ctx context.Context, actor *domain.User, memberID string, approve bool, justification string) (*domain.ProfileChangeRequest, error) {
	var req domain.ProfileChangeRequest
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		wf, err := s.load(ctx, memberID)
		if err != nil {
			return err
		}
		before := wf.State()
		req, err = wf.Recommend(review.ActorFromUser(actor), approve)
		if err != nil {
			return err
		}
		if justification != "" {
			req.Justification = justification
		}
		if err := s.changes.Save(ctx, &req); err != nil {
			return fmt.Errorf("save profile change: %w", err)
		}
		return s.audit.Record(ctx, &domain.AuditLog{
			ActorID:       &actor.ID,
			TargetUserID:  &memberID,
			Action:        domain.AuditActionFlag,
			Entity:        entityProfileChange,
			Field:         "status",
			OldValue:      string(before),
			NewValue:      string(wf.State()),
			Justification: justification,
			IPAddress:     ClientIP(ctx),
		})
	})
	if err != nil {
		return nil, mapReviewError(err)
	}

	s.metrics.RecordTransition("recommend")
	s.publishEvent(ctx, events.Event{
		Type:     events.EventProfileChangeRecommended,
		MemberID: memberID,
		Actor:    eventActor(actor),
		Payload:  events.ProfileChangeRecommendedPayload{Approved: approve, Status: req.Status},
	})
	return &req, nil
}

// FinalizeChange applies or discards a member's pending request and clears the slot.
func (s *ProfileService) FinalizeChange(ctx context.Context, actor *domain.User, memberID string, approve bool, justification string) (*FinalizeResult, error) {
	var result FinalizeResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		wf, err := s.load(ctx, memberID)
		if err != nil {
			return err
		}
		before := wf.State()
		outcome, err := wf.Finalize(review.ActorFromUser(actor), approve)
		if err != nil {
			return err
		}
		member := wf.Member()
		if len(outcome.Applied) > 0 {
			if err := s.users.Update(ctx, &member); err != nil {
				return fmt.Errorf("apply profile change: %w", err)
			}
		}
		if err := s.changes.Delete(ctx, memberID); err != nil {
			return fmt.Errorf("clear profile change: %w", err)
		}
		result = FinalizeResult{Outcome: outcome, Member: member}

		if err := s.audit.Record(ctx, &domain.AuditLog{
			ActorID:       &actor.ID,
			TargetUserID:  &memberID,
			Action:        domain.AuditActionDelete,
			Entity:        entityProfileChange,
			Field:         "status",
			OldValue:      string(before),
			NewValue:      string(outcome.Request.Status),
			Justification: justification,
			IPAddress:     ClientIP(ctx),
		}); err != nil {
			return err
		}
		return s.recordFieldChanges(ctx, actor.ID, memberID, outcome.Applied, justification)
	})
	if err != nil {
		return nil, mapReviewError(err)
	}

	s.metrics.RecordTransition("finalize")
	s.publishEvent(ctx, events.Event{
		Type:     events.EventProfileChangeFinalized,
		MemberID: memberID,
		Actor:    eventActor(actor),
		Payload:  events.ProfileChangeFinalizedPayload{Approved: approve, Applied: result.Outcome.Applied},
	})
	return &result, nil
}

// UpdateProfile edits a member's record directly, bypassing review.
func (s *ProfileService) UpdateProfile(ctx context.Context, actor *domain.User, memberID string, updates domain.ProfileUpdates, justification string) (*domain.User, []domain.FieldChange, error) {
	var (
		member  domain.User
		changes []domain.FieldChange
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		wf, err := s.load(ctx, memberID)
		if err != nil {
			return err
		}
		changes, err = wf.UpdateDirect(review.ActorFromUser(actor), updates)
		if err != nil {
			return err
		}
		member = wf.Member()
		if len(changes) == 0 {
			return nil
		}
		if err := s.users.Update(ctx, &member); err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		return s.recordFieldChanges(ctx, actor.ID, memberID, changes, justification)
	})
	if err != nil {
		return nil, nil, mapReviewError(err)
	}

	s.metrics.RecordTransition("direct_update")
	if len(changes) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:     events.EventProfileUpdated,
			MemberID: memberID,
			Actor:    eventActor(actor),
			Payload:  events.ProfileUpdatedPayload{Changes: changes},
		})
	}
	return &member, changes, nil
}

// GetPending returns the outstanding request of a member. Members may read
// their own; reviewers and finalizers may read anyone's.
func (s *ProfileService) GetPending(ctx context.Context, actor *domain.User, memberID string) (*domain.ProfileChangeRequest, error) {
	if actor.ID != memberID && actor.Tier < domain.TierSysAdmin {
		return nil, apperrors.NewForbidden("cannot view another member's profile change")
	}
	req, err := s.changes.Get(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperrors.NewNotFound("pending profile change", map[string]any{"member_id": memberID})
	}
	return req, nil
}

// ListPending lists outstanding requests. Without an explicit status, reviewers
// see requests awaiting a recommendation and finalizers see every request.
func (s *ProfileService) ListPending(ctx context.Context, actor *domain.User, statuses []domain.ChangeStatus, limit, offset int) ([]domain.ProfileChangeRequest, error) {
	if !actor.Tier.Allows(domain.ActionRecommend) && !actor.Tier.Allows(domain.ActionFinalize) {
		return nil, apperrors.NewForbidden("reviewer or finalizer tier required")
	}
	if len(statuses) == 0 && actor.Tier.IsReviewer() {
		statuses = []domain.ChangeStatus{domain.ChangeStatusPending}
	}
	return s.changes.List(ctx, repository.ProfileChangeFilter{Statuses: statuses, Limit: limit, Offset: offset})
}

// load locks the member row and builds a workflow over its slot.
func (s *ProfileService) load(ctx context.Context, memberID string) (*review.Workflow, error) {
	member, err := s.users.GetByIDForUpdate(ctx, memberID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("member", map[string]any{"member_id": memberID})
		}
		return nil, fmt.Errorf("load member: %w", err)
	}
	pending, err := s.changes.Get(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("load profile change: %w", err)
	}
	return review.New(*member, pending, review.WithClock(s.now)), nil
}

func (s *ProfileService) recordFieldChanges(ctx context.Context, actorID, memberID string, changes []domain.FieldChange, justification string) error {
	for _, change := range changes {
		if err := s.audit.Record(ctx, &domain.AuditLog{
			ActorID:       &actorID,
			TargetUserID:  &memberID,
			Action:        domain.AuditActionUpdate,
			Entity:        entityUser,
			Field:         change.Field,
			OldValue:      change.OldValue,
			NewValue:      change.NewValue,
			Justification: justification,
			IPAddress:     ClientIP(ctx),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProfileService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func eventActor(u *domain.User) events.Actor {
	return events.Actor{UserID: u.ID, Tier: u.Tier}
}

// mapReviewError translates workflow sentinels into API errors.
func mapReviewError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, review.ErrUnauthorized):
		return apperrors.NewForbidden(err.Error())
	case errors.Is(err, review.ErrNoPending):
		return apperrors.NewNotFound("pending profile change", nil)
	case errors.Is(err, review.ErrPendingExists), errors.Is(err, review.ErrInvalidState):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, review.ErrInvalidUpdate):
		return apperrors.NewValidationError(err.Error(), nil)
	default:
		return err
	}
}
