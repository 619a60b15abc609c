package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mlapp/folio/migrations"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and print the schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close() //nolint:errcheck // No remedy for log close errors

		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o750); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
		db, err := sql.Open("sqlite3", cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close() //nolint:errcheck // No remedy for db close errors
		db.SetMaxOpenConns(1)

		if err := migrations.RunMigrations(db, logger); err != nil {
			return err
		}
		version, dirty, err := migrations.Version(db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d (dirty=%t)\n", cfg.Database.Path, version, dirty)
		return nil
	},
}
