package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/staffsync/staffsync-api/internal/auth"
	"github.com/staffsync/staffsync-api/internal/config"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/events"
	"github.com/staffsync/staffsync-api/internal/repository"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 12

// AuthService coordinates registration, login and session flows.
type AuthService struct {
	users       repository.UserRepository
	tx          repository.Transactor
	sessions    auth.SessionStore
	audit       *AuditService
	dispatcher  events.Dispatcher
	tokenMgr    *auth.TokenManager
	logger      *zap.Logger
	bcryptCost  int
	defaultTier domain.Tier

	resets     repository.PasswordResetRepository
	resetTTL   time.Duration
	exposeCode bool
	now        func() time.Time
}

// AuthDependencies encapsulates collaborators of the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Transactor repository.Transactor
	Sessions   auth.SessionStore
	Audit      *AuditService
	Dispatcher events.Dispatcher
	Logger     *zap.Logger

	PasswordResetRepo repository.PasswordResetRepository
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	ForceNumber   string
	Password      string
	Rank          string
	FirstName     string
	Surname       string
	Email         string
	Phone         string
	MusteringCode string
}

// AuthResult is returned by successful registration and login.
type AuthResult struct {
	User    *domain.User
	Token   string
	Session domain.Session
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		tx:          deps.Transactor,
		sessions:    deps.Sessions,
		audit:       deps.Audit,
		dispatcher:  deps.Dispatcher,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		logger:      logger,
		bcryptCost:  cfg.Auth.BcryptCost,
		defaultTier: domain.Tier(cfg.Auth.DefaultTier),
		resets:      deps.PasswordResetRepo,
		resetTTL:    cfg.Auth.PasswordResetTTL(),
		exposeCode:  cfg.Auth.ExposeResetCode,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account. A member seeded without credentials claims the
// existing record by registering with its force number.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.ForceNumber = strings.ToUpper(strings.TrimSpace(input.ForceNumber))
	input.MusteringCode = strings.ToUpper(strings.TrimSpace(input.MusteringCode))
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *domain.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.users.GetByForceNumber(ctx, input.ForceNumber)
		switch {
		case err == nil && existing.HasCredentials():
			return apperrors.NewConflict("force number already registered", map[string]any{"force_number": input.ForceNumber})
		case err == nil:
			user = existing
			applyRegistration(user, input, hash)
			if err := s.users.Update(ctx, user); err != nil {
				return fmt.Errorf("claim member: %w", err)
			}
		case apperrors.IsNotFound(err):
			user = &domain.User{ForceNumber: input.ForceNumber, Tier: s.defaultTier}
			applyRegistration(user, input, hash)
			if err := s.users.Create(ctx, user); err != nil {
				return err
			}
		default:
			return fmt.Errorf("lookup force number: %w", err)
		}
		return s.audit.Record(ctx, &domain.AuditLog{
			ActorID:      &user.ID,
			TargetUserID: &user.ID,
			Action:       domain.AuditActionCreate,
			Entity:       entityUser,
			NewValue:     map[string]any{"force_number": user.ForceNumber, "tier": user.Tier},
			IPAddress:    ClientIP(ctx),
		})
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{Type: events.EventUserRegistered, MemberID: user.ID, Actor: eventActor(user)})
	return result, nil
}

// Login authenticates by force number or email.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, apperrors.NewValidationError("identifier and password are required", nil)
	}

	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByForceNumber(ctx, strings.ToUpper(identifier))
	}
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if !user.HasCredentials() {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	result, err := s.issue(ctx, user)
	if err != nil {
		return nil, err
	}
	s.audit.RecordBestEffort(ctx, &domain.AuditLog{
		ActorID:   &user.ID,
		Action:    domain.AuditActionLogin,
		Entity:    "session",
		IPAddress: ClientIP(ctx),
	})
	return result, nil
}

// Logout revokes the session behind the token.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	if err := s.sessions.Delete(ctx, tokenID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// ChangePassword verifies the current password before storing the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength), nil)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("invalid credentials")
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// SetTier changes a member's tier. Finalizers may not grant a tier above their own.
func (s *AuthService) SetTier(ctx context.Context, actor *domain.User, forceNumber string, tier domain.Tier) (*domain.User, error) {
	if actor != nil {
		if !actor.Tier.Allows(domain.ActionManageTier) {
			return nil, apperrors.NewForbidden("tier 3 or above required")
		}
		if tier > actor.Tier {
			return nil, apperrors.NewForbidden("cannot grant a tier above your own")
		}
	}
	if !tier.Valid() {
		return nil, apperrors.NewValidationError("tier must be between 0 and 4", map[string]any{"tier": int(tier)})
	}

	var (
		user    *domain.User
		oldTier domain.Tier
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		found, err := s.users.GetByForceNumber(ctx, strings.ToUpper(strings.TrimSpace(forceNumber)))
		if err != nil {
			if apperrors.IsNotFound(err) {
				return apperrors.NewNotFound("member", map[string]any{"force_number": forceNumber})
			}
			return err
		}
		user = found
		oldTier = user.Tier
		user.Tier = tier
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("set tier: %w", err)
		}
		entry := &domain.AuditLog{
			TargetUserID: &user.ID,
			Action:       domain.AuditActionUpdate,
			Entity:       entityUser,
			Field:        "tier",
			OldValue:     int(oldTier),
			NewValue:     int(tier),
			IPAddress:    ClientIP(ctx),
		}
		if actor != nil {
			entry.ActorID = &actor.ID
		}
		return s.audit.Record(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	event := events.Event{
		Type:     events.EventTierChanged,
		MemberID: user.ID,
		Payload:  events.TierChangedPayload{OldTier: oldTier, NewTier: tier},
	}
	if actor != nil {
		event.Actor = eventActor(actor)
	}
	s.publish(ctx, event)
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issue(ctx context.Context, user *domain.User) (*AuthResult, error) {
	token, session, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, Session: session}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func validateRegistration(input RegisterInput) error {
	details := map[string]any{}
	if !domain.ValidForceNumber(input.ForceNumber) {
		details["force_number"] = "must be 8 digits followed by MC, MI, PE or PV"
	}
	if !domain.ValidMusteringCode(input.MusteringCode) {
		details["mustering_code"] = "unknown mustering code"
	}
	if len(input.Password) < MinPasswordLength {
		details["password"] = fmt.Sprintf("must be at least %d characters", MinPasswordLength)
	}
	if strings.TrimSpace(input.Surname) == "" {
		details["surname"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid registration", details)
	}
	return nil
}

func applyRegistration(user *domain.User, input RegisterInput, hash string) {
	user.PasswordHash = hash
	user.MusteringCode = input.MusteringCode
	user.Surname = strings.TrimSpace(input.Surname)
	if v := strings.TrimSpace(input.Rank); v != "" {
		user.Rank = v
	}
	if v := strings.TrimSpace(input.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(input.Email); v != "" {
		user.Email = v
	}
	if v := strings.TrimSpace(input.Phone); v != "" {
		user.Phone = v
	}
}
