package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/events"
	"github.com/staffsync/staffsync-api/internal/repository"
)

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}

func TestPasswordResetFlow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	registered, err := env.auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	ticket, err := env.auth.RequestPasswordReset(ctx, "Jane.Doe@saaf.mil", "90119292mi", "")
	require.NoError(t, err)
	assert.Equal(t, domain.ResetChannelEmail, ticket.Channel)
	assert.Equal(t, "j*******@saaf.mil", ticket.Destination)
	assert.Len(t, ticket.Code, 6)

	var requested *events.Event
	for i := range env.published {
		if env.published[i].Type == events.EventPasswordResetRequested {
			requested = &env.published[i]
		}
	}
	require.NotNil(t, requested)
	payload := requested.Payload.(events.PasswordResetRequestedPayload)
	assert.Equal(t, ticket.Code, payload.Code)
	assert.Equal(t, "jane.doe@saaf.mil", payload.Destination)

	err = env.auth.ConfirmPasswordReset(ctx, "90119292MI", ticket.Code, "short")
	requireDomainCode(t, err, "VALIDATION_FAILED")

	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, "90119292MI", ticket.Code, "a-brand-new-password"))
	_, err = env.auth.Login(ctx, "90119292MI", "a-brand-new-password")
	assert.NoError(t, err)
	_, err = env.auth.Login(ctx, "90119292MI", "correct-horse-battery")
	requireDomainCode(t, err, "UNAUTHORIZED")

	// codes are single use
	err = env.auth.ConfirmPasswordReset(ctx, "90119292MI", ticket.Code, "yet-another-password")
	requireDomainCode(t, err, "UNAUTHORIZED")

	var audited bool
	for _, entry := range env.auditEntries(t) {
		if entry.Field == "password" {
			audited = true
			assert.Equal(t, registered.User.ID, *entry.TargetUserID)
			assert.Nil(t, entry.OldValue)
			assert.Nil(t, entry.NewValue)
		}
	}
	assert.True(t, audited)
}

func TestPasswordResetIdentityChecks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	env.member(t, "01020033MI", "Corporal", "Mokoena", domain.TierUser)

	_, err = env.auth.RequestPasswordReset(ctx, "someone.else@saaf.mil", "90119292MI", domain.ResetChannelEmail)
	requireDomainCode(t, err, "UNAUTHORIZED")
	_, err = env.auth.RequestPasswordReset(ctx, "jane.doe@saaf.mil", "99999999MI", domain.ResetChannelEmail)
	requireDomainCode(t, err, "UNAUTHORIZED")
	// seeded members without a password register instead
	_, err = env.auth.RequestPasswordReset(ctx, "esia.mokoena@saaf.mil", "01020033MI", domain.ResetChannelEmail)
	requireDomainCode(t, err, "UNAUTHORIZED")
	_, err = env.auth.RequestPasswordReset(ctx, "", "", domain.ResetChannelEmail)
	requireDomainCode(t, err, "VALIDATION_FAILED")
	_, err = env.auth.RequestPasswordReset(ctx, "jane.doe@saaf.mil", "90119292MI", "pigeon")
	requireDomainCode(t, err, "VALIDATION_FAILED")
	// no phone on record
	_, err = env.auth.RequestPasswordReset(ctx, "jane.doe@saaf.mil", "90119292MI", domain.ResetChannelCellphone)
	requireDomainCode(t, err, "VALIDATION_FAILED")
}

func TestPasswordResetAttemptsAndExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong codes burn the reset", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.auth.Register(ctx, validRegistration())
		require.NoError(t, err)
		ticket, err := env.auth.RequestPasswordReset(ctx, "jane.doe@saaf.mil", "90119292MI", domain.ResetChannelEmail)
		require.NoError(t, err)

		for i := 0; i < domain.MaxResetAttempts; i++ {
			err := env.auth.ConfirmPasswordReset(ctx, "90119292MI", wrongCode(ticket.Code), "a-brand-new-password")
			requireDomainCode(t, err, "UNAUTHORIZED")
		}
		err = env.auth.ConfirmPasswordReset(ctx, "90119292MI", ticket.Code, "a-brand-new-password")
		requireDomainCode(t, err, "UNAUTHORIZED")
	})

	t.Run("expired", func(t *testing.T) {
		env := newTestEnv(t)
		_, err := env.auth.Register(ctx, validRegistration())
		require.NoError(t, err)
		ticket, err := env.auth.RequestPasswordReset(ctx, "jane.doe@saaf.mil", "90119292MI", domain.ResetChannelEmail)
		require.NoError(t, err)

		env.auth.now = func() time.Time { return ticket.ExpiresAt.Add(time.Second) }
		err = env.auth.ConfirmPasswordReset(ctx, "90119292MI", ticket.Code, "a-brand-new-password")
		requireDomainCode(t, err, "UNAUTHORIZED")
	})
}

// commitFailingTx runs the unit of work and then reports a failed commit.
type commitFailingTx struct {
	inner repository.Transactor
}

func (c commitFailingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := c.inner.WithinTx(ctx, fn); err != nil {
		return err
	}
	return errors.New("commit tx: connection reset")
}

func TestPasswordResetCompletedPublishedAfterCommit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	_, err := env.auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	completed := func() int {
		n := 0
		for _, e := range env.published {
			if e.Type == events.EventPasswordResetCompleted {
				n++
			}
		}
		return n
	}

	ticket, err := env.auth.RequestPasswordReset(ctx, "jane.doe@saaf.mil", "90119292MI", domain.ResetChannelEmail)
	require.NoError(t, err)
	env.auth.tx = commitFailingTx{inner: env.repos.Transactor}
	err = env.auth.ConfirmPasswordReset(ctx, "90119292MI", ticket.Code, "a-brand-new-password")
	require.EqualError(t, err, "commit tx: connection reset")
	assert.Zero(t, completed())

	env.auth.tx = env.repos.Transactor
	ticket, err = env.auth.RequestPasswordReset(ctx, "jane.doe@saaf.mil", "90119292MI", domain.ResetChannelEmail)
	require.NoError(t, err)
	require.NoError(t, env.auth.ConfirmPasswordReset(ctx, "90119292MI", ticket.Code, "another-new-password"))
	assert.Equal(t, 1, completed())
}

func TestMaskDestination(t *testing.T) {
	assert.Equal(t, "a***@saaf.mil", maskDestination("anna@saaf.mil"))
	assert.Equal(t, "********4567", maskDestination("+27821234567"))
	assert.Equal(t, "123", maskDestination("123"))
}
