package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/statement-mapper/internal/config"
	"github.com/aristath/statement-mapper/internal/database"
	"github.com/aristath/statement-mapper/internal/database/repositories"
	"github.com/aristath/statement-mapper/internal/modules/dictionary"
	"github.com/aristath/statement-mapper/internal/modules/matching"
	matchingapi "github.com/aristath/statement-mapper/internal/modules/matching/api"
	"github.com/aristath/statement-mapper/internal/scheduler"
	"github.com/aristath/statement-mapper/internal/server"
	"github.com/aristath/statement-mapper/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Pretty:  cfg.DevMode,
		Service: "statement-mapper",
	})

	log.Info().Msg("Starting Statement Mapper")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Load the component dictionary and wire the engine
	loader := dictionary.NewLoader(cfg.DictionaryPath, log)
	coordinator, err := matching.NewCoordinator(loader, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize matching coordinator")
	}

	runs := repositories.NewResolutionRepository(db.Conn(), log)

	// Initialize scheduler
	sched := scheduler.New(log)
	sched.Start()
	defer sched.Stop()

	// Register background jobs
	if cfg.DictionaryReload != "" {
		job := scheduler.NewDictionaryReloadJob(coordinator, log)
		if err := sched.AddJob(cfg.DictionaryReload, job); err != nil {
			log.Fatal().Err(err).Msg("Failed to register dictionary reload job")
		}
	}

	// Initialize HTTP server
	srv := server.New(server.Config{
		Port:     cfg.Port,
		Log:      log,
		DB:       db,
		Config:   cfg,
		Matching: matchingapi.NewHandlers(coordinator, runs, log),
		DevMode:  cfg.DevMode,
	})

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
