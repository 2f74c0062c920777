package main

import (
	"fmt"
	"log/slog"
	"os"

	"tournamentBot/internal/utils/logger/handlers/slogpretty"

	"github.com/spf13/cobra"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var Version = "0.1"

var flagConfigPath string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tournamentBot",
		Short:   "Padel tournament scraper and Telegram publisher",
		Version: Version,
		Long: `Collects padel tournaments from padelteams.pt and tiepadel.com,
notifies the admin about new ones and publishes announcements to the group.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Path to YAML config (or env: CONFIG_PATH)")

	cmd.AddCommand(newServeCmd(), newCheckCmd(), newTokenCmd())

	return cmd
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog(slog.LevelDebug)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = setupPrettySlog(slog.LevelInfo)
	default: // неизвестное окружение — прод-настройки
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}

	return log
}

func setupPrettySlog(level slog.Level) *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: level,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
