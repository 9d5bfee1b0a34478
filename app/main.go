package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jasonlinpng/ai-radar/app/api"
	"github.com/jasonlinpng/ai-radar/app/cfg"
	"github.com/jasonlinpng/ai-radar/app/database"
	"github.com/jasonlinpng/ai-radar/app/digest"
	"github.com/jasonlinpng/ai-radar/app/llm"
	"github.com/jasonlinpng/ai-radar/app/radar"
	"github.com/jasonlinpng/ai-radar/app/sources"
	"github.com/jasonlinpng/ai-radar/app/tasks"
	"github.com/jasonlinpng/ai-radar/app/watchlist"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was requested
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	slog.Info("Starting AI Signal Radar", "version", cfg.GetVersion())

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	if _, err := watchlist.Load(appCfg.WatchlistPath); err != nil {
		slog.Error("Failed to load watchlist", "path", appCfg.WatchlistPath, "error", err)
		os.Exit(1)
	}
	slog.Info("Watchlist loaded", "path", appCfg.WatchlistPath)

	itemRepo := database.NewItemRepository(db)

	xClient := sources.NewXClient(appCfg.XBearerToken, appCfg.UserAgent)
	youtubeClient := sources.NewYouTubeClient(appCfg.YouTubeAPIKey, appCfg.UserAgent)
	webClient := sources.NewWebSearchClient(appCfg.GoogleCSEKey, appCfg.GoogleCSECX, appCfg.UserAgent)
	rssClient := sources.NewRSSClient(appCfg.UserAgent)
	extractor := sources.NewExtractor(appCfg.UserAgent)
	classifier := llm.NewClient(appCfg.OpenAIAPIKey, appCfg.OpenAIModel)

	policy := radar.TimePolicy{
		MinDate:    appCfg.ContentMinDate,
		MaxAgeDays: appCfg.ContentMaxAgeDays,
	}

	ingestor := radar.NewIngestor(xClient, youtubeClient, webClient, rssClient,
		extractor, classifier, itemRepo, policy, nil)
	runner := tasks.NewIngestRunner(ingestor, appCfg.WatchlistPath)

	mailer := digest.NewMailer(appCfg.SMTPHost, appCfg.SMTPPort,
		appCfg.SMTPUsername, appCfg.SMTPPassword, appCfg.SMTPSender)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount,
		"ingest_interval_minutes", appCfg.IngestInterval)
	scheduler := tasks.NewScheduler(itemRepo, runner, mailer)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(itemRepo, scheduler, runner, mailer)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
