package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry keeps one hydrated Controller per encounter for servers that
// serve many encounters at once. Controllers not requested for the idle
// period are closed, which flushes their save and drops their subscription.
type Registry struct {
	deps Deps
	opts []Option
	idle   time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu          sync.Mutex
	controllers map[string]*registryEntry
	closed      bool

	stop chan struct{}
	done chan struct{}
}

type registryEntry struct {
	c        *Controller
	lastUsed time.Time
}

// NewRegistry creates a Registry whose controllers share deps and opts.
// idle <= 0 keeps controllers until Close.
func NewRegistry(deps Deps, idle time.Duration, opts ...Option) *Registry {
	r := &Registry{
		deps:        deps,
		opts:        opts,
		idle:        idle,
		now:         time.Now,
		logger:      deps.Logger,
		controllers: make(map[string]*registryEntry),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if idle > 0 {
		go r.janitor()
	} else {
		close(r.done)
	}
	return r
}

// Get returns the controller for id, creating and hydrating it on first use.
func (r *Registry) Get(ctx context.Context, id string) (*Controller, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	e, ok := r.controllers[id]
	if !ok {
		c := New(r.deps, r.opts...)
		c.SetEncounter(id)
		e = &registryEntry{c: c}
		r.controllers[id] = e
	}
	e.lastUsed = r.now()
	c := e.c
	r.mu.Unlock()

	if err := c.WaitHydrated(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Len reports how many encounters are open.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// Sweep closes every controller unused since before now minus the idle
// period and returns how many were closed.
func (r *Registry) Sweep(now time.Time) int {
	if r.idle <= 0 {
		return 0
	}
	r.mu.Lock()
	var stale []*Controller
	for id, e := range r.controllers {
		if now.Sub(e.lastUsed) >= r.idle {
			stale = append(stale, e.c)
			delete(r.controllers, id)
		}
	}
	r.mu.Unlock()

	for _, c := range stale {
		r.logger.Debug("Closing idle encounter", "encounter_id", c.EncounterID())
		_ = c.Close()
	}
	return len(stale)
}

func (r *Registry) janitor() {
	defer close(r.done)
	ticker := time.NewTicker(max(r.idle/2, 10*time.Millisecond))
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep(r.now())
		}
	}
}

// Close flushes and closes every controller.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	controllers := r.controllers
	r.controllers = make(map[string]*registryEntry)
	r.mu.Unlock()

	close(r.stop)
	<-r.done
	for _, e := range controllers {
		_ = e.c.Close()
	}
	return nil
}
