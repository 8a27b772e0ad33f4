package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/staffsync/staffsync-api/internal/config"
	"github.com/staffsync/staffsync-api/internal/repository"
	"github.com/staffsync/staffsync-api/internal/repository/memory"
)

// Repositories is the set of stores the services run on, backed either by
// Postgres or by the in-memory store.
type Repositories struct {
	Users          repository.UserRepository
	ProfileChanges repository.ProfileChangeRepository
	AuditLogs      repository.AuditLogRepository
	Personnel      repository.PersonnelRepository
	PasswordResets repository.PasswordResetRepository
	Transactor     repository.Transactor

	Postgres *Postgres
	InMemory bool
}

// OpenRepositories connects to Postgres when a DSN is configured, applying
// migrations if enabled, and falls back to in-memory repositories otherwise.
func OpenRepositories(ctx context.Context, cfg config.PostgresConfig, logger *zap.Logger) (*Repositories, error) {
	pg, err := NewPostgres(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if !pg.Enabled() {
		mem := memory.NewStore().Repositories()
		return &Repositories{
			Users:          mem.Users,
			ProfileChanges: mem.ProfileChanges,
			AuditLogs:      mem.AuditLogs,
			Personnel:      mem.Personnel,
			PasswordResets: mem.PasswordResets,
			Transactor:     mem.Transactor,
			Postgres:       pg,
			InMemory:       true,
		}, nil
	}

	if cfg.RunMigrations {
		if err := RunMigrations(ctx, pg.PoolHandle(), cfg.MigrationsDir, logger); err != nil {
			pg.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
	}

	pool := pg.PoolHandle()
	return &Repositories{
		Users:          repository.NewUserRepository(pool),
		ProfileChanges: repository.NewProfileChangeRepository(pool),
		AuditLogs:      repository.NewAuditLogRepository(pool),
		Personnel:      repository.NewPersonnelRepository(pool),
		PasswordResets: repository.NewPasswordResetRepository(pool),
		Transactor:     repository.NewTransactor(pool),
		Postgres:       pg,
	}, nil
}

// Close releases the database pool, if any.
func (r *Repositories) Close() {
	if r != nil {
		r.Postgres.Close()
	}
}
