package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekazakov/news-relay/app/api"
	"github.com/ekazakov/news-relay/app/cfg"
	"github.com/ekazakov/news-relay/app/database"
	"github.com/ekazakov/news-relay/app/enrich"
	"github.com/ekazakov/news-relay/app/imagefind"
	"github.com/ekazakov/news-relay/app/publish"
	"github.com/ekazakov/news-relay/app/relay"
	"github.com/ekazakov/news-relay/app/source"
	"github.com/ekazakov/news-relay/app/state"
	"github.com/ekazakov/news-relay/app/translate"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	log.Printf("Starting News Relay %s...", cfg.GetVersion())

	// Identity store
	log.Println("Opening identity store...")
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready (schema version %d, dirty: %v)", version, dirty)

	repository := database.NewPostRepository(db)

	// Caches and statistics
	pipelineState := state.Load(appCfg.StatePath, appCfg.BackupDir, appCfg.BackupDays)

	// Source configurations
	log.Printf("Loading source configurations from %s...", appCfg.SourcesDir)
	configCache := source.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		log.Fatal("Failed to load source configurations:", err)
	}
	log.Printf("Loaded %d source configurations", configCache.GetConfigCount())

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second,
	}

	// Transform pipeline components
	detector := translate.NewDetector(appCfg.TargetLanguage)
	translator := translate.NewTranslator(
		translate.NewGoogleProvider(httpClient),
		translate.NewMyMemoryProvider(httpClient),
		detector,
		pipelineState,
		time.Duration(appCfg.RetryDelay)*time.Second,
	)

	enrichClient := enrich.NewClient(appCfg.EnrichEndpoint, appCfg.EnrichModel, appCfg.EnrichAPIKey, httpClient)
	enricher := enrich.NewEnricher(enrichClient, pipelineState, httpClient,
		appCfg.UserAgent, appCfg.TargetLanguage, appCfg.EnrichMinLength, appCfg.EnrichMaxLength, appCfg.EnrichKeywords)
	if enrichClient.Configured() {
		log.Printf("Enrichment enabled (model %s, %d trigger keywords)", appCfg.EnrichModel, len(appCfg.EnrichKeywords))
	} else {
		log.Println("Enrichment disabled (no endpoint configured)")
	}

	finder := imagefind.NewFinder(httpClient, appCfg.UserAgent)

	// Publish gate
	sink := publish.NewTelegram(appCfg.BotToken, httpClient)
	gate := publish.NewGate(sink, repository, pipelineState,
		appCfg.PublisherChat, appCfg.AdminChat,
		time.Duration(appCfg.PublishDelay)*time.Second, appCfg.IdentityCeiling)

	// Cycle scheduler
	log.Printf("Starting relay (cycle every %ds)...", appCfg.CycleInterval)
	newsRelay := relay.NewRelay(configCache, repository, translator, enricher, finder, gate, pipelineState, httpClient)
	newsRelay.Start()
	defer newsRelay.Stop()

	// Operator HTTP surface
	apiHandler := api.NewHandler(configCache, repository, pipelineState)
	server := api.NewServer(apiHandler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("News Relay started successfully")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	log.Println("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	// Relay is stopped via defer; it flushes the state snapshot
	log.Println("News Relay shutdown complete")
}
