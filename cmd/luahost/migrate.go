// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/luahost/internal/config"
	"github.com/holomush/luahost/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL script store schema",
		Long:  `Apply, roll back or inspect the schema of the PostgreSQL script store.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				cmd.Println("Running migrations...")
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration, dropping all stored scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Down(); err != nil {
					return err
				}
				cmd.Println("Rolled back all migrations")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version and pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				pending, err := m.PendingMigrations()
				if err != nil {
					return err
				}
				cmd.Printf("Version: %d\n", version)
				if dirty {
					cmd.Println("State: dirty")
				}
				cmd.Printf("Pending: %d\n", len(pending))
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return oops.Code(config.CodeInvalid).Errorf("database-url (or DATABASE_URL) is required")
	}

	m, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := m.Close(); closeErr != nil {
			cmd.PrintErrln("closing migrator:", closeErr)
		}
	}()
	return fn(m)
}

type historyConfig struct {
	limit int
}

// NewHistoryCmd creates the history subcommand.
func NewHistoryCmd() *cobra.Command {
	hc := &historyConfig{}

	cmd := &cobra.Command{
		Use:   "history <name>",
		Short: "Show recent runs of a script",
		Long:  `Show recent runs of a script. Runs are recorded by the postgres store only.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, hc, args[0])
		},
	}

	cmd.Flags().IntVarP(&hc.limit, "limit", "n", 20, "number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, hc *historyConfig, name string) error {
	if hc.limit <= 0 {
		return oops.Code("INVALID_LIMIT").With("limit", hc.limit).Errorf("limit must be positive, got %d", hc.limit)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Store != config.StorePostgres {
		return oops.Code(config.CodeInvalid).
			Hint("set store: postgres").
			Errorf("run history needs the postgres store")
	}

	pg, err := store.Connect(cmd.Context(), cfg.DatabaseURL, store.ConnectOptions{})
	if err != nil {
		return err
	}
	defer pg.Close()

	runs, err := pg.Runs(cmd.Context(), name, hc.limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tSTARTED\tOUTCOME\tDURATION\tMESSAGE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Outcome,
			run.Duration.Round(time.Millisecond),
			run.Message)
	}
	return w.Flush()
}
