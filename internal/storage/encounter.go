package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// Encounter operations (Redis-backed)

func encounterKey(id string) string {
	return "encounter:" + id
}

func (r *RedisStorage) SaveEncounter(ctx context.Context, id string, s *encounter.State) error {
	if s == nil {
		return errors.New("encounter cannot be nil")
	}
	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal encounter", "encounter_id", id, "error", err)
		return fmt.Errorf("failed to marshal encounter: %w", err)
	}

	if err := r.client.Set(ctx, encounterKey(id), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save encounter", "encounter_id", id, "error", err)
		return fmt.Errorf("failed to save encounter: %w", err)
	}
	return nil
}

func (r *RedisStorage) LoadEncounter(ctx context.Context, id string) (*encounter.State, error) {
	data, err := r.client.Get(ctx, encounterKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Debug("Encounter not found", "encounter_id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load encounter", "encounter_id", id, "error", err)
		return nil, fmt.Errorf("failed to load encounter: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var s encounter.State
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Error("Failed to unmarshal encounter", "encounter_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal encounter: %w", err)
	}
	return &s, nil
}

func (r *RedisStorage) DeleteEncounter(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, encounterKey(id), seenKey(id)).Err(); err != nil {
		r.logger.Error("Failed to delete encounter", "encounter_id", id, "error", err)
		return fmt.Errorf("failed to delete encounter: %w", err)
	}
	return nil
}
