// Package memory provides in-process implementations of the repository
// interfaces. The server falls back to it when no Postgres DSN is configured,
// and service tests use it as a fake.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/repository"
)

// Store holds all tables behind one lock.
type Store struct {
	mu sync.RWMutex
	tx sync.Mutex

	users      map[string]domain.User
	changes    map[string]domain.ProfileChangeRequest
	audit      []domain.AuditLog
	musterings map[string]domain.Mustering
	bases      map[int64]domain.Base
	units      map[int64]domain.Unit
	readiness  map[string]domain.Readiness
	resets     []domain.PasswordReset

	now func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:      map[string]domain.User{},
		changes:    map[string]domain.ProfileChangeRequest{},
		musterings: map[string]domain.Mustering{},
		bases:      map[int64]domain.Base{},
		units:      map[int64]domain.Unit{},
		readiness:  map[string]domain.Readiness{},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Repositories bundles the store's repository views.
type Repositories struct {
	Users          repository.UserRepository
	ProfileChanges repository.ProfileChangeRepository
	AuditLogs      repository.AuditLogRepository
	Personnel      repository.PersonnelRepository
	PasswordResets repository.PasswordResetRepository
	Transactor     repository.Transactor
}

// Repositories returns every repository backed by s.
func (s *Store) Repositories() Repositories {
	return Repositories{
		Users:          &userRepository{s: s},
		ProfileChanges: &profileChangeRepository{s: s},
		AuditLogs:      &auditLogRepository{s: s},
		Personnel:      &personnelRepository{s: s},
		PasswordResets: &passwordResetRepository{s: s},
		Transactor:     &transactor{s: s},
	}
}

type txKey struct{}

// transactor serialises units of work. Writes are not rolled back on error.
type transactor struct {
	s *Store
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	t.s.tx.Lock()
	defer t.s.tx.Unlock()
	return fn(context.WithValue(ctx, txKey{}, true))
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}
