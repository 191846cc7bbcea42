package storage

import (
	"context"
	"fmt"
)

// Death showcase seen-sets (Redis-backed)

// seenMarker keeps the set alive once an encounter has been observed, even
// before any death was logged.
const seenMarker = "*"

func seenKey(encounterID string) string {
	return "death-showcase:seen:" + encounterID
}

func (r *RedisStorage) SeenDeaths(ctx context.Context, encounterID string) (map[string]bool, bool, error) {
	members, err := r.client.SMembers(ctx, seenKey(encounterID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to load seen deaths: %w", err)
	}
	seen := make(map[string]bool, len(members))
	for _, m := range members {
		if m != seenMarker {
			seen[m] = true
		}
	}
	return seen, len(members) > 0, nil
}

func (r *RedisStorage) MarkDeathsSeen(ctx context.Context, encounterID string, entryIDs ...string) error {
	members := make([]any, 0, len(entryIDs)+1)
	members = append(members, seenMarker)
	for _, id := range entryIDs {
		members = append(members, id)
	}

	key := seenKey(encounterID)
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, key, members...)
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("Failed to mark deaths seen", "encounter_id", encounterID, "error", err)
		return fmt.Errorf("failed to mark deaths seen: %w", err)
	}
	return nil
}
