package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/staffsync/staffsync-api/internal/auth"
	"github.com/staffsync/staffsync-api/internal/cli"
	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/events"
	"github.com/staffsync/staffsync-api/internal/persistence"
	"github.com/staffsync/staffsync-api/internal/seed"
	"github.com/staffsync/staffsync-api/internal/service"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			if e.repos.InMemory {
				return errNeedsDatabase
			}
			// OpenRepositories skips migrations when they are disabled for the server.
			if !e.cfg.Postgres.RunMigrations {
				if err := persistence.RunMigrations(cmd.Context(), e.repos.Postgres.PoolHandle(), e.cfg.Postgres.MigrationsDir, e.logger); err != nil {
					return err
				}
			}
			files, err := persistence.MigrationFiles(e.cfg.Postgres.MigrationsDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migrations\n", len(files))
			return nil
		},
	}
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load reference data from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			if e.repos.InMemory {
				return errNeedsDatabase
			}
			if file == "" {
				file = e.cfg.Seed.File
			}
			ref, err := seed.LoadFile(file)
			if err != nil {
				return err
			}
			result, err := seed.Apply(cmd.Context(), e.seedDeps(), ref)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "musterings: %d, bases: %d, units: %d, members created: %d, skipped: %d\n",
				result.Musterings, result.Bases, result.Units, result.MembersCreated, result.MembersSkipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file (defaults to SEED_FILE)")
	return cmd
}

type personnelFlags struct {
	search     string
	musterings []string
	ranks      []string
	readiness  []string
	page       int
	pageSize   int
}

func (f *personnelFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.search, "search", "s", "", "Free-text search")
	cmd.Flags().StringSliceVar(&f.musterings, "mustering", nil, "Mustering codes to include")
	cmd.Flags().StringSliceVar(&f.ranks, "rank", nil, "Ranks to include")
	cmd.Flags().StringSliceVar(&f.readiness, "readiness", nil, "Readiness statuses to include")
}

func (f *personnelFlags) filter() service.PersonnelFilter {
	filter := service.PersonnelFilter{
		Search:     f.search,
		Musterings: f.musterings,
		Ranks:      f.ranks,
		Page:       f.page,
		PageSize:   f.pageSize,
	}
	for _, status := range f.readiness {
		filter.Readiness = append(filter.Readiness, domain.ReadinessStatus(status))
	}
	return filter
}

func newPersonnelCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personnel",
		Short: "Browse the personnel directory",
	}

	listFlags := &personnelFlags{}
	list := &cobra.Command{
		Use:   "list",
		Short: "Print one page of personnel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()
			svc := service.NewPersonnelService(e.repos.Personnel, e.cfg.Personnel.PageSize)
			page, err := svc.List(cmd.Context(), listFlags.filter())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderPersonnel(page))
			return nil
		},
	}
	listFlags.bind(list)
	list.Flags().IntVarP(&listFlags.page, "page", "p", 1, "Page number")
	list.Flags().IntVar(&listFlags.pageSize, "page-size", 0, "Rows per page (defaults to PERSONNEL_PAGE_SIZE)")

	exportFlags := &personnelFlags{}
	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Export personnel as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}
			svc := service.NewPersonnelService(e.repos.Personnel, e.cfg.Personnel.PageSize)
			n, err := svc.ExportCSV(cmd.Context(), w, exportFlags.filter())
			if err != nil {
				return err
			}
			if w != cmd.OutOrStdout() {
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d members to %s\n", n, out)
			}
			return nil
		},
	}
	exportFlags.bind(export)
	export.Flags().StringVarP(&out, "out", "o", "", "Output file (defaults to stdout)")

	cmd.AddCommand(list, export)
	return cmd
}

func newTierCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tier",
		Short: "Manage authorization tiers",
	}
	set := &cobra.Command{
		Use:   "set <force-number> <tier>",
		Short: "Set a member's tier (0-4)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("tier must be a number: %w", err)
			}
			e, err := opts.open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			svc := service.NewAuthService(*e.cfg, service.AuthDependencies{
				UserRepo:   e.repos.Users,
				Transactor: e.repos.Transactor,
				Sessions:   auth.NewMemorySessionStore(),
				Audit:      service.NewAuditService(e.repos.AuditLogs, e.logger),
				Dispatcher: events.NewInMemoryDispatcher(),
				Logger:     e.logger,
			})
			user, err := svc.SetTier(cmd.Context(), nil, strings.ToUpper(args[0]), domain.Tier(tier))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s (tier %d)\n", user.ForceNumber, user.Tier.Name(), int(user.Tier))
			return nil
		},
	}
	cmd.AddCommand(set)
	return cmd
}
