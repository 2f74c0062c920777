package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"tournamentBot/internal/config"
	"tournamentBot/internal/graceful"
	"tournamentBot/internal/metrics"
	"tournamentBot/internal/openrouter"
	"tournamentBot/internal/orchestrator"
	"tournamentBot/internal/poster"
	"tournamentBot/internal/publisher"
	"tournamentBot/internal/repositories"
	"tournamentBot/internal/scraper"
	telegramBot "tournamentBot/internal/telegram"
	"tournamentBot/internal/transport/httpServer"
	"tournamentBot/internal/transport/httpServer/handlers"
	"tournamentBot/internal/transport/httpServer/routers"

	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot: periodic checks, admin notifications and publishing",
		Long: `Runs the bot. Requires the Telegram token, admin id and group chat id
(bot.tgbot_apitoken/adminID/groupChatID or TGBOT_APITOKEN/ADMIN_ID/GROUP_CHAT_ID).
The check and token commands work without them.`,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return err
	}

	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	log := setupLogger(cfg.Env)

	log.Info(
		"starting tournament bot",
		slog.String("env", cfg.Env),
		slog.String("version", Version),
	)

	metricsService, err := metrics.New()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	repositoryService, err := repositories.New(log, cfg)
	if err != nil {
		return fmt.Errorf("repository: %w", err)
	}

	scraperService := scraper.New(log, cfg, repositoryService, metricsService)

	tgBot, err := telegramBot.New(log, cfg, repositoryService)
	if err != nil {
		repositoryService.DB.Close()
		return fmt.Errorf("telegram: %w", err)
	}

	var aiService *openrouter.Openrouter
	var drafter publisher.Drafter
	if cfg.BotConfig.AI.AIApiToken != "" {
		aiService = openrouter.NewClient(log, cfg)
		drafter = aiService
	}

	workflow := publisher.New(
		log,
		cfg.BotConfig.AdminID,
		repositoryService,
		poster.NewVenueFile(cfg.BotConfig.VenuesFile),
		tgBot,
		drafter,
		metricsService,
		publisher.NewSessionStore(cfg.BotConfig.SessionTTL),
	)
	tgBot.SetWorkflow(workflow, drafter != nil)

	orchestratorService := orchestrator.New(log, cfg, scraperService, tgBot, metricsService, scraperService.NewTournamentsChan)

	ops := map[string]graceful.Operation{
		"Orchestrator service": func(ctx context.Context) error {
			return orchestratorService.Shutdown(ctx)
		},
		"Scraper service": func(ctx context.Context) error {
			return scraperService.Shutdown(ctx)
		},
		"Telegram bot": func(ctx context.Context) error {
			return tgBot.Shutdown(ctx)
		},
		"Repository service": func(ctx context.Context) error {
			return repositoryService.Shutdown(ctx)
		},
	}

	if aiService != nil {
		ops["AI service"] = func(ctx context.Context) error {
			return aiService.Shutdown(ctx)
		}
	} else {
		log.Info("AI token is empty, description drafting disabled")
	}

	var httpSrv *httpServer.HttpServer
	if cfg.HttpServer.Enabled {
		tournamentHandler := handlers.NewTournamentHandler(log, repositoryService, orchestratorService)
		router := routers.NewRouter(log, cfg.HttpServer.Secret, tournamentHandler, metricsService)
		httpSrv = httpServer.NewHttpServer(log, router, cfg)

		ops["HTTP server"] = func(ctx context.Context) error {
			return httpSrv.Shutdown(ctx)
		}
	}

	maxSecond := 15 * time.Second
	waitShutdown := graceful.GracefulShutdown(cmd.Context(), maxSecond, ops, log)

	go scraperService.Start()
	go orchestratorService.Start()
	go tgBot.Start(cfg.BotConfig.UpdateTimeout)
	if httpSrv != nil {
		go httpSrv.Listen()
	}

	<-waitShutdown

	return nil
}
