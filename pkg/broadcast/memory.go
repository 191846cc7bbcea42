package broadcast

import (
	"context"
	"sync"
)

// MemoryBus is an in-process Bus. Every subscriber, including the
// publisher's own, receives each message.
type MemoryBus struct {
	mu     sync.RWMutex
	topics map[string]map[*memorySub]struct{}
}

var _ Bus = (*MemoryBus)(nil)

// NewMemoryBus creates an empty in-process bus.
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{topics: make(map[string]map[*memorySub]struct{})}
}

// Publish delivers msg to every current subscriber of topic. Each
// subscriber has its own buffered queue so a slow reader does not block others.
func (b *MemoryBus) Publish(ctx context.Context, topic string, msg Message) error {
	b.mu.RLock()
	subs := make([]*memorySub, 0, len(b.topics[topic]))
	for s := range b.topics[topic] {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		s.push(msg)
	}
	return nil
}

// Subscribe registers a new subscriber on topic.
func (b *MemoryBus) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	s := &memorySub{
		bus:   b,
		topic: topic,
		out:   make(chan Message),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	b.mu.Lock()
	if b.topics[topic] == nil {
		b.topics[topic] = make(map[*memorySub]struct{})
	}
	b.topics[topic][s] = struct{}{}
	b.mu.Unlock()

	go s.pump()
	return s, nil
}

// Subscribers reports how many subscriptions topic currently has.
func (b *MemoryBus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

func (b *MemoryBus) remove(s *memorySub) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.topics[s.topic], s)
	if len(b.topics[s.topic]) == 0 {
		delete(b.topics, s.topic)
	}
}

type memorySub struct {
	bus   *MemoryBus
	topic string

	mu      sync.Mutex
	pending []Message

	out  chan Message
	wake chan struct{}
	done chan struct{}
	once sync.Once
}

func (s *memorySub) push(msg Message) {
	s.mu.Lock()
	s.pending = append(s.pending, msg)
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// pump moves queued messages to out in order.
func (s *memorySub) pump() {
	defer close(s.out)
	for {
		s.mu.Lock()
		var next *Message
		if len(s.pending) > 0 {
			msg := s.pending[0]
			s.pending = s.pending[1:]
			next = &msg
		}
		s.mu.Unlock()

		if next == nil {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.out <- *next:
		case <-s.done:
			return
		}
	}
}

func (s *memorySub) Messages() <-chan Message {
	return s.out
}

func (s *memorySub) Close() error {
	s.once.Do(func() {
		s.bus.remove(s)
		close(s.done)
	})
	return nil
}
