package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mssql-backup/internal/adapter/engine"
	"mssql-backup/internal/config"
	"mssql-backup/internal/usecase"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <database> <backup-file>",
	Short: "Verify an existing backup file against the server catalog",
	Long: `Verify correlates the backup file's own header position with the
most recent catalog record for the database. Only when both agree is the
engine asked to verify the backup set; a stale or foreign file fails instead
of being verified at the wrong position.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		eng, err := engine.Connect(ctx, &cfg.Server)
		if err != nil {
			return fmt.Errorf("connect to %s: %w", cfg.Server.Host, err)
		}
		defer eng.Close()

		database, filePath := args[0], args[1]
		correlator := usecase.NewCorrelator(eng)

		outcome, err := correlator.Correlate(ctx, database, filePath)
		if err != nil {
			return err
		}
		switch outcome.Kind {
		case usecase.OutcomeNotFound:
			return fmt.Errorf("no catalog record or header position for %s", filePath)
		case usecase.OutcomeMismatched:
			return fmt.Errorf("catalog position %d does not match file position %d",
				outcome.Expected, outcome.Actual)
		}

		if err := eng.VerifyBackup(ctx, filePath, outcome.Expected); err != nil {
			return err
		}

		fmt.Printf("Verified %s (database %s, position %d)\n", filePath, database, outcome.Expected)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
