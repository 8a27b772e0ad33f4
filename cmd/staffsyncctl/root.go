package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/staffsync/staffsync-api/internal/config"
	"github.com/staffsync/staffsync-api/internal/observability"
	"github.com/staffsync/staffsync-api/internal/persistence"
	"github.com/staffsync/staffsync-api/internal/seed"
)

type rootOptions struct {
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "staffsyncctl",
		Short: "Administer StaffSync personnel data",
		Long: `staffsyncctl runs maintenance tasks against the StaffSync database:
migrations, reference data seeding, personnel listings and tier changes.

It reads the same environment variables as the API server. Without
POSTGRES_DSN it works on an in-memory store seeded from SEED_FILE.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable structured logging")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newSeedCmd(opts),
		newPersonnelCmd(opts),
		newTierCmd(opts),
	)
	return cmd
}

// env is the runtime shared by subcommands.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	repos  *persistence.Repositories
}

func (o *rootOptions) open(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := zap.NewNop()
	if o.verbose {
		if logger, err = observability.NewLogger(cfg.Logger, cfg.App); err != nil {
			return nil, err
		}
	}
	repos, err := persistence.OpenRepositories(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, repos: repos}
	if repos.InMemory {
		if err := e.seedMemory(ctx); err != nil {
			repos.Close()
			return nil, err
		}
	}
	return e, nil
}

func (e *env) seedMemory(ctx context.Context) error {
	ref, err := seed.LoadFile(e.cfg.Seed.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	_, err = seed.Apply(ctx, e.seedDeps(), ref)
	return err
}

func (e *env) seedDeps() seed.Dependencies {
	return seed.Dependencies{
		Users:      e.repos.Users,
		Personnel:  e.repos.Personnel,
		Transactor: e.repos.Transactor,
		Logger:     e.logger,
	}
}

func (e *env) close() {
	e.repos.Close()
	_ = e.logger.Sync()
}

var errNeedsDatabase = errors.New("POSTGRES_DSN is required for this command")
