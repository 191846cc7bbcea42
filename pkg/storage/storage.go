package storage

import (
	"context"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// Storage defines a unified interface for all storage operations.
// Encounters and death-showcase seen-sets are kept per encounter id.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Encounter operations. LoadEncounter returns nil, nil when nothing is stored.
	SaveEncounter(ctx context.Context, id string, s *encounter.State) error
	LoadEncounter(ctx context.Context, id string) (*encounter.State, error)
	DeleteEncounter(ctx context.Context, id string) error

	SeenStore
}

// SeenStore remembers which death log entries were already showcased.
type SeenStore interface {
	// SeenDeaths returns the log entry ids marked seen for an encounter.
	// The second value is false when the encounter has never been observed.
	SeenDeaths(ctx context.Context, encounterID string) (map[string]bool, bool, error)
	MarkDeathsSeen(ctx context.Context, encounterID string, entryIDs ...string) error
}
