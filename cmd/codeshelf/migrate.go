package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/codeshelf/Codeshelf-sub002/internal/infrastructure/database"
)

func newMigrateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Manage the database schema",
		Long:      "Migrate applies pending migrations (up, the default), rolls back the latest one (down) or lists both (status).",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status"},
		RunE: func(cmd *cobra.Command, args []string) error {
			direction := "up"
			if len(args) == 1 {
				direction = args[0]
			}
			a, err := loadApp(opts)
			if err != nil {
				return err
			}
			return a.migrate(cmd.Context(), cmd.OutOrStdout(), direction)
		},
	}
}

func (a *app) migrate(ctx context.Context, out io.Writer, direction string) error {
	db, err := database.Open(a.cfg.Database)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			a.log.Error("error closing database", "error", closeErr)
		}
	}()

	switch direction {
	case "up":
		_, pending, err := db.GetMigrationStatus(ctx)
		if err != nil {
			return err
		}
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		for _, m := range pending {
			fmt.Fprintf(out, "applied %s %s\n", m.Version, m.Name)
		}
		if len(pending) == 0 {
			fmt.Fprintln(out, "schema is up to date")
		}
	case "down":
		applied, _, err := db.GetMigrationStatus(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(out, "nothing to roll back")
			return nil
		}
		if err := db.MigrateDown(ctx); err != nil {
			return fmt.Errorf("rolling back migration: %w", err)
		}
		fmt.Fprintf(out, "rolled back %s\n", applied[len(applied)-1].Version)
	case "status":
		applied, pending, err := db.GetMigrationStatus(ctx)
		if err != nil {
			return err
		}
		for _, r := range applied {
			fmt.Fprintf(out, "applied  %s  %s\n", r.Version, r.AppliedAt.Format(time.RFC3339))
		}
		for _, m := range pending {
			fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
		}
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
	return nil
}
