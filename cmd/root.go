package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "mssql-backup",
	Short: "Backup orchestration for SQL Server",
	Long: `mssql-backup drives full, differential and transaction-log backups
against a SQL Server instance, optionally preceded by an integrity check and
followed by backup verification, with combined progress across the whole
batch of databases.

Completed artifacts can be shipped to offsite targets (local mirror, S3,
Google Drive) and pruned by a retention policy.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "path to config file")
}
