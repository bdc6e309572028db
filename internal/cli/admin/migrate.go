package admin

import (
	"fmt"
	"log"

	"github.com/cloo-solutions/lectern/internal/config"
	"github.com/cloo-solutions/lectern/internal/database"
	"github.com/spf13/cobra"
)

const defaultMigrationsSource = "file://migrations"

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long:  "Apply, roll back or inspect database migrations",
	}

	cmd.PersistentFlags().String("migrations", defaultMigrationsSource, "Migration source URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, (*database.Migrator).Up)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, (*database.Migrator).Down)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, (*database.Migrator).Version)
		},
	})

	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*database.Migrator) (database.SchemaVersion, error)) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	source, _ := cmd.Flags().GetString("migrations")

	mg, err := database.NewMigrator(cfg.DatabaseURL, source)
	if err != nil {
		return err
	}
	defer mg.Close()

	v, err := fn(mg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema: %s\n", v)
	return nil
}

// runMigrations brings the schema up to date before the server starts.
func runMigrations(databaseURL, source string) error {
	mg, err := database.NewMigrator(databaseURL, source)
	if err != nil {
		return err
	}
	defer mg.Close()

	v, err := mg.Up()
	if err != nil {
		return err
	}

	if v.Changed {
		log.Printf("migrations: applied successfully (%s)", v)
	} else {
		log.Printf("migrations: database is up to date (%s)", v)
	}
	return nil
}
