package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tasklet/internal/config"
	"tasklet/internal/store"
)

func newMigrateCmd(cfg *config.Config, flags *globalFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect SQLite schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.UsesMongo() {
				return errors.New("migrate only applies to the sqlite backend; mongodb indexes are created when srv starts")
			}
			path := cfg.DBPath()

			if !dryRun {
				// Same path the server takes on start.
				st, err := store.Open(path)
				if err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				if err := st.Close(); err != nil {
					return err
				}
			}

			db, err := store.OpenRaw(path)
			if err != nil {
				return err
			}
			defer db.Close()

			plan, err := store.MigrationPlan(db)
			if err != nil {
				return fmt.Errorf("inspect migrations: %w", err)
			}
			if flags.structured() {
				return writeStructured(plan)
			}
			return writeMigrationPlan(plan, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show pending migrations without applying")
	return cmd
}

func writeMigrationPlan(plan *store.MigrationStatus, dryRun bool) error {
	if !dryRun {
		return writePlain("Migrations applied. Schema version %d.\n", plan.CurrentVersion)
	}
	if err := writePlain("Current version: %d\nAvailable version: %d\n", plan.CurrentVersion, plan.AvailableVersion); err != nil {
		return err
	}
	if len(plan.Pending) == 0 {
		return writePlain("No pending migrations.\n")
	}
	if err := writePlain("Pending migrations: %d\n", len(plan.Pending)); err != nil {
		return err
	}
	for _, m := range plan.Pending {
		if err := writePlain("  %d: %s\n", m.Version, m.Description); err != nil {
			return err
		}
	}
	return nil
}
