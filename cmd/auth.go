package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mssql-backup/internal/app"
	"mssql-backup/internal/infrastructure/logger"
)

var (
	authClientSecret string
	authListenAddr   string
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Obtain a Google Drive refresh token for the gdrive upload target",
	Long: `Auth starts a local OAuth flow: open /auth/google/drive in a
browser, grant access, and copy the refresh token from the callback page
into the gdrive target configuration.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		log, err := logger.New("info", "")
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		defer log.Close()

		auth, err := app.NewDriveAuth(log, authClientSecret)
		if err != nil {
			return err
		}
		return auth.Serve(ctx, authListenAddr)
	},
}

func init() {
	authCmd.Flags().StringVar(&authClientSecret, "client-secret", "client_secret.json", "path to the OAuth client secret file")
	authCmd.Flags().StringVar(&authListenAddr, "listen", "localhost:8089", "address for the local OAuth server")
	rootCmd.AddCommand(authCmd)
}
