package main

import (
	"fmt"
	"log/slog"

	"tournamentBot/internal/config"
	"tournamentBot/internal/metrics"
	"tournamentBot/internal/repositories"
	"tournamentBot/internal/scraper"
	"tournamentBot/internal/utils/logger/sl"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Scrape every source once and print tournaments not yet in the database",
		Long: `Runs a single dry check: extracts, canonicalizes and deduplicates tournaments
against the database without saving them or notifying anyone.`,
		RunE: runCheck,
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}

	log := setupLogger(cfg.Env)

	metricsService, err := metrics.New()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	repositoryService, err := repositories.New(log, cfg)
	if err != nil {
		return fmt.Errorf("repository: %w", err)
	}
	defer repositoryService.DB.Close()

	scraperService := scraper.New(log, cfg, repositoryService, metricsService)

	ctx := cmd.Context()

	out := cmd.OutOrStdout()
	header := color.New(color.FgCyan, color.Bold)
	total := 0

	for _, site := range cfg.ScraperConfig.Sites {
		tournaments, err := scraperService.Discover(ctx, site)
		if err != nil {
			log.Error("source failed", slog.String("site", site.Name), sl.Err(err))
			continue
		}

		header.Fprintf(out, "%s: %d new\n", site.Name, len(tournaments))
		for _, t := range tournaments {
			fmt.Fprintf(out, "  %s  %s  %s  %s\n", t.Key, t.Dates, t.Name, t.URL)
		}
		total += len(tournaments)
	}

	fmt.Fprintf(out, "total new: %d\n", total)

	return nil
}
