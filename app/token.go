package main

import (
	"fmt"
	"time"

	"tournamentBot/internal/config"
	"tournamentBot/internal/transport/httpServer/middleware"

	"github.com/spf13/cobra"
)

var (
	flagTokenSubject string
	flagTokenTTL     time.Duration
)

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a bearer token for the admin HTTP API",
		RunE:  runToken,
	}

	cmd.Flags().StringVar(&flagTokenSubject, "subject", "admin", "Token subject")
	cmd.Flags().DurationVar(&flagTokenTTL, "ttl", 30*24*time.Hour, "Token lifetime")

	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}

	token, err := middleware.NewToken(cfg.HttpServer.Secret, flagTokenSubject, flagTokenTTL)
	if err != nil {
		return fmt.Errorf("cannot sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
