package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rentaltoll-backend/internal/app"
	"rentaltoll-backend/internal/config"
	"rentaltoll-backend/internal/migration"
)

func migrateCommand(load configLoader) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "migrate",
		Short:   "migrate the PostgreSQL schema",
		Long:    `Applies or rolls back the goose migrations and prints the resulting status.`,
		Example: `rentalctl migrate --up`,
		RunE: func(cmd *cobra.Command, args []string) error {
			up, _ := cmd.Flags().GetBool("up")
			down, _ := cmd.Flags().GetBool("down")
			if up && down {
				return cmd.Help()
			}

			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate needs the postgres driver, configured %q", cfg.Database.Driver)
			}
			if dir == "" {
				dir = cfg.Database.MigrationsDir
			}

			db, err := app.OpenDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			switch {
			case down:
				fmt.Fprintln(cmd.OutOrStdout(), "Rolling back the last migration...")
				if err := migration.Down(ctx, db, dir); err != nil {
					return err
				}
			case up:
				fmt.Fprintln(cmd.OutOrStdout(), "Running 'up' migrations...")
				if err := migration.Up(ctx, db, dir); err != nil {
					return err
				}
			}
			return migration.Status(ctx, db, dir)
		},
	}

	cmd.Flags().BoolP("up", "u", true, "apply pending migrations")
	cmd.Flags().BoolP("down", "d", false, "roll back the last migration")
	cmd.Flags().StringVar(&dir, "dir", "", "migrations directory (defaults to database.migrations_dir)")
	return cmd
}
