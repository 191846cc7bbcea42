package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/combat-tracker/pkg/broadcast"
)

// Broadcaster is a broadcast.Bus backed by Redis Pub/Sub, so viewers in
// separate processes share encounter updates.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ broadcast.Bus = (*Broadcaster)(nil)

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish sends msg on topic.
func (b *Broadcaster) Publish(ctx context.Context, topic string, msg broadcast.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "topic", topic)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, topic, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", topic)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", topic,
		"event_type", msg.Type,
		"source", msg.Source,
	)
	return nil
}

// Subscribe listens on topic. It returns once Redis has confirmed the
// subscription so no later publish is missed.
func (b *Broadcaster) Subscribe(ctx context.Context, topic string) (broadcast.Subscription, error) {
	pubsub := b.redisClient.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	sub := &subscription{
		pubsub: pubsub,
		out:    make(chan broadcast.Message),
		done:   make(chan struct{}),
	}
	go sub.relay(b.logger.With("channel", topic))

	b.logger.Debug("Subscribed to channel", "channel", topic)
	return sub, nil
}

type subscription struct {
	pubsub *redis.PubSub
	out    chan broadcast.Message
	done   chan struct{}
	once   sync.Once
}

// relay decodes Redis payloads into Messages, skipping anything malformed.
func (s *subscription) relay(logger *slog.Logger) {
	defer close(s.out)
	in := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case raw, ok := <-in:
			if !ok {
				return
			}
			var msg broadcast.Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				logger.Warn("Failed to unmarshal event", "error", err)
				continue
			}
			select {
			case s.out <- msg:
			case <-s.done:
				return
			}
		}
	}
}

func (s *subscription) Messages() <-chan broadcast.Message {
	return s.out
}

func (s *subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
