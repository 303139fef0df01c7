package main

import (
	"fmt"
	"os"

	"backoffice/internal/database"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedOpts database.SeedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create default roles, menus and the admin user",
	Long: `Create default roles, menus and the admin user.

Safe to run repeatedly: existing menus and users are kept, and the permission matrices of the
default roles are reset. The admin role is granted every permission on every menu.

Example:
  ADMIN_PASSWORD=... backofficectl seed --admin-email admin@example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedOpts.AdminPassword == "" {
			seedOpts.AdminPassword = os.Getenv("ADMIN_PASSWORD")
		}
		db, log, err := connect()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if err := database.Seed(cmd.Context(), db, seedOpts); err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		log.Info("seed completed", zap.String("admin_email", seedOpts.AdminEmail))
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedOpts.AdminEmail, "admin-email", envOr("ADMIN_EMAIL", "admin@example.com"), "email of the admin user")
	seedCmd.Flags().StringVar(&seedOpts.AdminName, "admin-name", "Administrator", "display name of the admin user")
	seedCmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", "", "password of the admin user (default $ADMIN_PASSWORD)")
	rootCmd.AddCommand(seedCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
