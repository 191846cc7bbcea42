package broadcast

import (
	"context"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// TopicPrefix is prepended to the encounter id to name its channel.
const TopicPrefix = "combat-tracker:"

// MessageTypeHydrate is the only message type viewers act on.
const MessageTypeHydrate = "hydrate"

// Topic returns the channel name for an encounter.
func Topic(encounterID string) string {
	return TopicPrefix + encounterID
}

// Message is what viewers of one encounter exchange.
type Message struct {
	Type    string           `json:"type"`
	Payload *encounter.State `json:"payload"`
	Source  string           `json:"source"`
}

// Bus publishes and subscribes to per-encounter topics. Messages from a
// single publisher are delivered in publication order.
type Bus interface {
	Publish(ctx context.Context, topic string, msg Message) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
}

// Subscription delivers messages until closed.
type Subscription interface {
	Messages() <-chan Message
	Close() error
}
