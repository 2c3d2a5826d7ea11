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

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run backup batches and retention cleanup on their cron schedules",
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

		return application.RunScheduled(ctx)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}
