package main

import (
	"fmt"
	"os"

	"backoffice/internal/config"
	"backoffice/internal/database"
	"backoffice/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "backofficectl",
	Short: "Administrative commands for the back office",
	Long: `Administrative commands for the back office.

Configuration is read from configs/.env and the environment, the same way the API reads it.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect loads configuration and opens the database
func connect() (*gorm.DB, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(logger.Options{Level: cfg.Log.Level, Output: "stdout"})
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewConnection(cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect %s: %w", cfg.Database.Type, err)
	}
	return db, log, nil
}
