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

	"github.com/Snazzah/VideoEmbedFix/app/api"
	"github.com/Snazzah/VideoEmbedFix/app/cfg"
	"github.com/Snazzah/VideoEmbedFix/app/config"
	"github.com/Snazzah/VideoEmbedFix/app/database"
	"github.com/Snazzah/VideoEmbedFix/app/dispatch"
	"github.com/Snazzah/VideoEmbedFix/app/fetch"
	"github.com/Snazzah/VideoEmbedFix/app/provider"
	"github.com/Snazzah/VideoEmbedFix/app/tasks"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Load configuration from environment variables and command-line flags
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	if appCfg.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	log.Printf("Starting VideoEmbedFix server (version %s)...", appCfg.Version)

	// Database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	log.Printf("Database ready (schema version %d, dirty: %t)", version, dirty)

	// Load embed client and scrape settings
	settings, err := config.Load(appCfg.ConfigFile)
	if err != nil {
		log.Fatal("Failed to load settings:", err)
	}

	// Initialize core components
	mediaURLRepo := database.NewMediaURLRepository(db)
	client := fetch.NewClient(time.Duration(appCfg.FetchCacheTTL) * time.Second)
	stealth := fetch.NewStealth(settings.Scrape)

	registry := provider.NewRegistry(
		provider.NewCoub(client),
		provider.NewVine(client),
		provider.NewTwitter(client, appCfg.TwitterBearerToken),
		provider.NewTikTok(client, stealth, mediaURLRepo),
	)

	dispatcher := dispatch.NewDispatcher(registry, settings,
		time.Duration(appCfg.ResponseCacheTTL)*time.Second)

	// Start background maintenance
	log.Printf("Starting background scheduler with %d workers...", appCfg.WorkerCount)
	taskScheduler := tasks.NewScheduler(mediaURLRepo)
	taskScheduler.Start()
	defer taskScheduler.Stop()

	// Initialize HTTP server
	log.Println("Initializing HTTP server...")
	apiHandler := api.NewHandler(dispatcher, settings, mediaURLRepo, appCfg.BaseUrl)
	server := api.NewServer(apiHandler)

	// Create HTTP server with timeouts
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start HTTP server in a goroutine
	serverErrChan := make(chan error, 1)
	go func() {
		log.Printf("Starting HTTP server on port %s", appCfg.Port)
		log.Printf("Endpoints available:")
		log.Printf("  Embed:         http://localhost:%s/<content url>", appCfg.Port)
		log.Printf("  Debug embed:   http://localhost:%s/_d/<content url>", appCfg.Port)
		log.Printf("  Media proxy:   http://localhost:%s/proxy?l=<media url>", appCfg.Port)
		log.Printf("  Health check:  http://localhost:%s/health", appCfg.Port)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	log.Println("VideoEmbedFix server started successfully!")

	select {
	case sig := <-sigChan:
		log.Printf("Received signal: %v", sig)
	case err := <-serverErrChan:
		log.Printf("Server error: %v", err)
	}

	// Graceful shutdown
	log.Println("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	} else {
		log.Println("HTTP server stopped")
	}

	log.Println("VideoEmbedFix server shutdown complete")
}
