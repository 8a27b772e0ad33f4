package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/staffsync/staffsync-api/internal/auth"
	"github.com/staffsync/staffsync-api/internal/config"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/events"
	"github.com/staffsync/staffsync-api/internal/observability"
	"github.com/staffsync/staffsync-api/internal/repository"
	"github.com/staffsync/staffsync-api/internal/repository/memory"
	apperrors "github.com/staffsync/staffsync-api/pkg/util"
)

var testNow = time.Date(2025, 6, 9, 9, 15, 0, 0, time.UTC)

type testEnv struct {
	repos     memory.Repositories
	sessions  *auth.MemorySessionStore
	audit     *AuditService
	profiles  *ProfileService
	auth      *AuthService
	personnel *PersonnelService
	metrics   *observability.Metrics
	published []events.Event
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		repos:    memory.NewStore().Repositories(),
		sessions: auth.NewMemorySessionStore(),
		metrics:  observability.NewMetrics(),
	}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range []events.EventType{
		events.EventProfileChangeSubmitted,
		events.EventProfileChangeRecommended,
		events.EventProfileChangeFinalized,
		events.EventProfileUpdated,
		events.EventUserRegistered,
		events.EventTierChanged,
		events.EventPasswordResetRequested,
		events.EventPasswordResetCompleted,
	} {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			env.published = append(env.published, e)
			return nil
		})
	}

	env.audit = NewAuditService(env.repos.AuditLogs, nil)
	env.profiles = NewProfileService(ProfileDependencies{
		UserRepo:          env.repos.Users,
		ProfileChangeRepo: env.repos.ProfileChanges,
		Transactor:        env.repos.Transactor,
		Audit:             env.audit,
		Dispatcher:        dispatcher,
		Metrics:           env.metrics,
		Now:               func() time.Time { return testNow },
	})

	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test", BcryptCost: 4, DefaultTier: 1, ExposeResetCode: true}}
	env.auth = NewAuthService(cfg, AuthDependencies{
		UserRepo:   env.repos.Users,
		Transactor: env.repos.Transactor,
		Sessions:   env.sessions,
		Audit:      env.audit,
		Dispatcher: dispatcher,

		PasswordResetRepo: env.repos.PasswordResets,
	})
	env.personnel = NewPersonnelService(env.repos.Personnel, 0)
	return env
}

func (env *testEnv) member(t *testing.T, forceNumber, rank, surname string, tier domain.Tier) *domain.User {
	t.Helper()
	u := &domain.User{ForceNumber: forceNumber, Rank: rank, Surname: surname, Tier: tier}
	require.NoError(t, env.repos.Users.Create(context.Background(), u))
	return u
}

func (env *testEnv) reload(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := env.repos.Users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (env *testEnv) auditEntries(t *testing.T) []domain.AuditLog {
	t.Helper()
	entries, err := env.repos.AuditLogs.List(context.Background(), repositoryAll)
	require.NoError(t, err)
	return entries
}

func requireDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	require.Equal(t, code, de.Code, de.Message)
}

var repositoryAll = repository.AuditLogFilter{Limit: 1000}
