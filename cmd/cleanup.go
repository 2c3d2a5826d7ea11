package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mssql-backup/internal/app"
	"mssql-backup/internal/config"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete artifacts older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		application, err := app.New(ctx, cfg)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer application.Shutdown()

		return application.Cleanup(ctx)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
