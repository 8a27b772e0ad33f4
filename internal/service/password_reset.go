package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/staffsync/staffsync-api/internal/auth"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/events"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

const resetCodeDigits = 6

// PasswordResetTicket describes an issued reset code. Code is only populated
// when the service is configured to expose it.
type PasswordResetTicket struct {
	Channel     domain.ResetChannel
	Destination string
	ExpiresAt   time.Time
	Code        string
}

// RequestPasswordReset verifies a member's identity by force number and email
// and sends a one-time code to the chosen channel.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, forceNumber string, channel domain.ResetChannel) (*PasswordResetTicket, error) {
	email = strings.TrimSpace(email)
	forceNumber = strings.ToUpper(strings.TrimSpace(forceNumber))
	if channel == "" {
		channel = domain.ResetChannelEmail
	}
	if email == "" || forceNumber == "" {
		return nil, apperrors.NewValidationError("email and force number are required", nil)
	}
	if channel != domain.ResetChannelEmail && channel != domain.ResetChannelCellphone {
		return nil, apperrors.NewValidationError("unknown delivery channel", map[string]any{"channel": string(channel)})
	}

	user, err := s.users.GetByForceNumber(ctx, forceNumber)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, errIdentityUnverified()
		}
		return nil, err
	}
	if !user.HasCredentials() || !strings.EqualFold(user.Email, email) {
		return nil, errIdentityUnverified()
	}

	destination := user.Email
	if channel == domain.ResetChannelCellphone {
		if user.Phone == "" {
			return nil, apperrors.NewValidationError("no cellphone number on record", nil)
		}
		destination = user.Phone
	}

	code, err := generateResetCode()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	hash, err := auth.HashPassword(code, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	reset := &domain.PasswordReset{
		MemberID:  user.ID,
		CodeHash:  hash,
		Channel:   channel,
		ExpiresAt: s.now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, reset); err != nil {
		return nil, fmt.Errorf("store reset: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventPasswordResetRequested,
		MemberID: user.ID,
		Actor:    eventActor(user),
		Payload: events.PasswordResetRequestedPayload{
			Channel:     channel,
			Destination: destination,
			Code:        code,
		},
	})

	ticket := &PasswordResetTicket{
		Channel:     channel,
		Destination: maskDestination(destination),
		ExpiresAt:   reset.ExpiresAt,
	}
	if s.exposeCode {
		ticket.Code = code
	}
	return ticket, nil
}

// ConfirmPasswordReset redeems the member's latest reset code and stores the
// new password. Wrong codes count against the reset until it is burned.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, forceNumber, code, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperrors.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength), nil)
	}
	code = strings.TrimSpace(code)
	if len(code) != resetCodeDigits {
		return apperrors.NewValidationError(fmt.Sprintf("code must be %d digits", resetCodeDigits), nil)
	}

	var (
		badCode bool
		member  *domain.User
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByForceNumber(ctx, strings.ToUpper(strings.TrimSpace(forceNumber)))
		if err != nil {
			if apperrors.IsNotFound(err) {
				return errResetInvalid()
			}
			return err
		}
		reset, err := s.resets.GetLatest(ctx, user.ID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return errResetInvalid()
			}
			return err
		}
		if !reset.Usable(s.now()) {
			return errResetInvalid()
		}
		if err := auth.ComparePassword(reset.CodeHash, code); err != nil {
			badCode = true
			return s.resets.IncrementAttempts(ctx, reset.ID)
		}

		hash, err := auth.HashPassword(newPassword, s.bcryptCost)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
		if err := s.users.Update(ctx, user); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		if err := s.resets.MarkUsed(ctx, reset.ID); err != nil {
			return fmt.Errorf("mark reset used: %w", err)
		}
		if err := s.audit.Record(ctx, &domain.AuditLog{
			ActorID:      &user.ID,
			TargetUserID: &user.ID,
			Action:       domain.AuditActionUpdate,
			Entity:       entityUser,
			Field:        "password",
			IPAddress:    ClientIP(ctx),
		}); err != nil {
			return err
		}
		member = user
		return nil
	})
	if err != nil {
		return err
	}
	// the failed attempt is committed before reporting it
	if badCode {
		return errResetInvalid()
	}

	s.publish(ctx, events.Event{
		Type:     events.EventPasswordResetCompleted,
		MemberID: member.ID,
		Actor:    eventActor(member),
	})
	return nil
}

func errIdentityUnverified() error {
	return apperrors.NewUnauthorized("identity could not be verified")
}

func errResetInvalid() error {
	return apperrors.NewUnauthorized("reset code is invalid or expired")
}

func generateResetCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < resetCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", resetCodeDigits, n.Int64()), nil
}

// maskDestination keeps enough of an address for the member to recognise it.
func maskDestination(dest string) string {
	if at := strings.IndexByte(dest, '@'); at > 0 {
		return dest[:1] + strings.Repeat("*", at-1) + dest[at:]
	}
	if len(dest) <= 4 {
		return dest
	}
	return strings.Repeat("*", len(dest)-4) + dest[len(dest)-4:]
}
