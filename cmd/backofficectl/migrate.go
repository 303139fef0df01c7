package main

import (
	"fmt"

	"backoffice/internal/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

Tables, indexes and foreign keys are created for every model. Existing data is kept.

Example:
  backofficectl migrate`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, log, err := connect()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migration completed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
