package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/combat-tracker/internal/config"
	"github.com/jwebster45206/combat-tracker/internal/handlers"
	"github.com/jwebster45206/combat-tracker/internal/logger"
	"github.com/jwebster45206/combat-tracker/internal/middleware"
	"github.com/jwebster45206/combat-tracker/internal/services/events"
	"github.com/jwebster45206/combat-tracker/internal/storage"
	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/roster"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg)

	log.Info("Starting Combat Tracker API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"save_debounce", cfg.SaveDebounce,
		"encounter_ttl", cfg.EncounterTTL)

	client, err := storage.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	store := storage.NewRedisStorage(client, cfg.EncounterTTL, cfg.DataDir, log)

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()
	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	bus := events.NewBroadcaster(client, log)
	registry := tracker.NewRegistry(tracker.Deps{
		Store:   store,
		Bus:     bus,
		Machine: encounter.NewMachine(),
		Logger:  log,
	}, cfg.EncounterIdle, tracker.WithSaveDebounce(cfg.SaveDebounce))
	party := roster.New(store, log)

	mux := http.NewServeMux()

	mux.Handle("/health", handlers.NewHealthHandler(store, registry.Len, log))
	mux.Handle("/v1/catalog", handlers.NewCatalogHandler(log))

	pcHandler := handlers.NewPCHandler(log, store)
	mux.Handle("/v1/pcs", pcHandler)
	mux.Handle("/v1/pcs/", pcHandler)

	encountersHandler := handlers.NewEncountersHandler(registry, store, party, log)
	mux.Handle("/v1/encounters", encountersHandler)
	mux.Handle("/v1/encounters/", encountersHandler)

	mux.Handle("/v1/events/encounters/", handlers.NewEventsHandler(bus, registry, log))

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logger(log, mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE endpoint streams indefinitely
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	// Flush pending saves before the connection goes away
	if err := registry.Close(); err != nil {
		log.Error("Error closing encounters", "error", err)
	}
	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
