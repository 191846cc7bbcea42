package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/combat-tracker/internal/config"
	"github.com/jwebster45206/combat-tracker/internal/handlers"
	"github.com/jwebster45206/combat-tracker/internal/services/events"
	"github.com/jwebster45206/combat-tracker/internal/storage"
	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/showcase"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

// logFile receives the console's logs; the terminal belongs to the UI.
const logFile = "combat-console.log"

func main() {
	cfg := config.Load()

	encounterID := cfg.EncounterID
	if len(os.Args) > 1 {
		encounterID = os.Args[1]
	}
	if !handlers.ValidEncounterID(encounterID) {
		fmt.Fprintf(os.Stderr, "Invalid encounter id %q: use letters, digits, '-' or '_'\n", encounterID)
		os.Exit(1)
	}

	f, err := tea.LogToFile(logFile, "console")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = f.Close() // Ignore error in defer
	}()
	log := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: cfg.LogLevel}))

	client, err := storage.NewClient(cfg.RedisURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid REDIS_URL: %v\n", err)
		os.Exit(1)
	}
	store := storage.NewRedisStorage(client, cfg.EncounterTTL, cfg.DataDir, log)
	defer func() {
		_ = store.Close() // Ignore error in defer
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := store.Ping(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "Could not connect to Redis at %s. Please ensure it is running.\nTry: docker-compose up -d redis\n", cfg.RedisURL)
		os.Exit(1)
	}
	cancel()

	ctrl := tracker.New(tracker.Deps{
		Store:   store,
		Bus:     events.NewBroadcaster(client, log),
		Machine: encounter.NewMachine(),
		Logger:  log,
	}, tracker.WithSaveDebounce(cfg.SaveDebounce))
	defer func() {
		_ = ctrl.Close() // Flushes the pending save
	}()

	fwd := newForwarder()
	queue := showcase.New(store, log,
		showcase.WithDuration(cfg.ShowcaseDuration),
		forwardShowcases(fwd))
	defer queue.Close()

	p := tea.NewProgram(NewConsoleUI(ctrl, queue),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	fwd.Start(p)
	defer fwd.Close()

	unsubscribe := connect(ctrl, queue, encounterID, fwd)
	defer unsubscribe()

	ctrl.SetEncounter(encounterID)
	log.Info("Console started", "encounter_id", encounterID, "instance_id", ctrl.InstanceID())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
