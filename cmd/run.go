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

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backup batch over all configured databases",
	Long: `Run processes every configured database once, in order: integrity
check, transaction-log backup, database backup and verification, as enabled
per database. A failing database never aborts its siblings; the command
exits non-zero when any database recorded an error.`,
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

		return application.RunOnce(ctx)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
