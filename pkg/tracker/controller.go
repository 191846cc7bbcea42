package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/combat-tracker/pkg/broadcast"
	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// DefaultSaveDebounce is how long the controller waits for further changes
// before persisting.
const DefaultSaveDebounce = 250 * time.Millisecond

// ErrClosed is returned by WaitHydrated once the controller is closed.
var ErrClosed = errors.New("controller closed")

// Store is the persistence the controller needs. LoadEncounter returns
// nil, nil when nothing is stored.
type Store interface {
	LoadEncounter(ctx context.Context, id string) (*encounter.State, error)
	SaveEncounter(ctx context.Context, id string, s *encounter.State) error
}

// Deps are the collaborators of a Controller. Bus may be nil for a viewer
// that does not share its changes.
type Deps struct {
	Store   Store
	Bus     broadcast.Bus
	Machine *encounter.Machine
	Logger  *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithSaveDebounce sets the persistence delay. Zero saves on every change.
func WithSaveDebounce(d time.Duration) Option {
	return func(c *Controller) {
		c.debounce = max(0, d)
	}
}

// Controller owns the encounter state for one viewer. It hydrates from the
// store, applies commands through the Machine, persists changes with a
// debounce and shares them with sibling viewers over the Bus.
type Controller struct {
	store      Store
	bus        broadcast.Bus
	machine    *encounter.Machine
	logger     *slog.Logger
	debounce   time.Duration
	instanceID string

	ctx    context.Context
	cancel context.CancelFunc

	mu            sync.Mutex
	state         *encounter.State
	encounterID   string
	gen           uint64
	hydrated      bool
	hydratedCh    chan struct{}
	loadCancel    context.CancelFunc
	sub           broadcast.Subscription
	skipSave      bool
	skipBroadcast bool
	closed        bool

	obsMu     sync.Mutex
	observers map[int]func(*encounter.State)
	nextObs   int

	effects *effectQueue
	wg      sync.WaitGroup
}

// New creates a Controller with a fresh empty encounter. Call SetEncounter
// to load one.
func New(deps Deps, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		store:      deps.Store,
		bus:        deps.Bus,
		machine:    deps.Machine,
		logger:     deps.Logger,
		debounce:   DefaultSaveDebounce,
		instanceID: uuid.NewString(),
		ctx:        ctx,
		cancel:     cancel,
		state:      encounter.NewState(),
		hydratedCh: make(chan struct{}),
		observers:  make(map[int]func(*encounter.State)),
	}
	if c.machine == nil {
		c.machine = encounter.NewMachine()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	for _, opt := range opts {
		opt(c)
	}
	c.effects = newEffectQueue()

	c.wg.Add(2)
	saves := make(chan saveJob, 1)
	go c.runEffects(saves)
	go c.runSaves(saves)
	return c
}

// InstanceID is the id this controller tags its broadcasts with.
func (c *Controller) InstanceID() string {
	return c.instanceID
}

// EncounterID is the encounter currently shown.
func (c *Controller) EncounterID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encounterID
}

// State returns the current state. It must not be modified.
func (c *Controller) State() *encounter.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetEncounter switches to another encounter. Any load still in flight is
// cancelled and its result discarded. The new state arrives asynchronously;
// use WaitHydrated or OnChange to observe it.
func (c *Controller) SetEncounter(id string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	if c.loadCancel != nil {
		c.loadCancel()
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.loadCancel = cancel
	c.encounterID = id
	if c.hydrated {
		c.hydrated = false
		c.hydratedCh = make(chan struct{})
	}
	oldSub := c.sub
	c.sub = nil
	c.mu.Unlock()

	if oldSub != nil {
		_ = oldSub.Close()
	}

	go c.load(ctx, gen, id)
}

func (c *Controller) load(ctx context.Context, gen uint64, id string) {
	logger := c.logger.With("encounter_id", id)
	c.subscribe(ctx, gen, id)

	var loaded *encounter.State
	if c.store != nil {
		s, err := c.store.LoadEncounter(ctx, id)
		if ctx.Err() != nil {
			logger.Debug("Encounter load superseded")
			return
		}
		if err != nil {
			logger.Warn("Failed to load encounter, starting fresh", "error", err)
		}
		loaded = s
	}
	if loaded == nil {
		loaded = encounter.NewState()
	}

	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		logger.Debug("Discarding stale encounter load")
		return
	}
	c.state = c.machine.Reduce(c.state, encounter.Hydrate{State: loaded})
	c.skipSave, c.skipBroadcast = false, false
	c.hydrated = true
	close(c.hydratedCh)
	state := c.state
	c.mu.Unlock()

	logger.Info("Encounter hydrated", "combatants", len(state.Combatants), "round", state.Round)
	c.notify(state)
}

func (c *Controller) subscribe(ctx context.Context, gen uint64, id string) {
	if c.bus == nil {
		return
	}
	sub, err := c.bus.Subscribe(ctx, broadcast.Topic(id))
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error("Failed to subscribe to encounter updates", "encounter_id", id, "error", err)
		}
		return
	}

	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		_ = sub.Close()
		return
	}
	c.sub = sub
	c.mu.Unlock()

	go c.listen(sub, gen)
}

func (c *Controller) listen(sub broadcast.Subscription, gen uint64) {
	for msg := range sub.Messages() {
		c.receive(msg, gen)
	}
}

// receive applies a sibling's broadcast without saving or re-broadcasting it.
func (c *Controller) receive(msg broadcast.Message, gen uint64) {
	if msg.Type != broadcast.MessageTypeHydrate || msg.Source == c.instanceID {
		return
	}
	c.mu.Lock()
	if gen != c.gen || c.closed {
		c.mu.Unlock()
		return
	}
	c.skipSave = true
	c.skipBroadcast = true
	state, changed := c.dispatchLocked(encounter.Hydrate{State: msg.Payload})
	c.mu.Unlock()

	c.logger.Debug("Applied remote update", "encounter_id", c.EncounterID(), "source", msg.Source)
	if changed {
		c.notify(state)
	}
}

// Dispatch applies a to the current state. It returns immediately;
// persistence and broadcast happen in the background.
func (c *Controller) Dispatch(a encounter.Action) bool {
	c.mu.Lock()
	state, changed := c.dispatchLocked(a)
	c.mu.Unlock()

	if changed {
		c.notify(state)
	}
	return changed
}

func (c *Controller) dispatchLocked(a encounter.Action) (*encounter.State, bool) {
	skipSave, skipBroadcast := c.skipSave, c.skipBroadcast
	c.skipSave, c.skipBroadcast = false, false

	if c.closed {
		return c.state, false
	}
	next := c.machine.Reduce(c.state, a)
	if next == c.state {
		return next, false
	}
	c.state = next

	if c.hydrated && c.encounterID != "" && (!skipSave || !skipBroadcast) {
		c.effects.push(effect{
			encounterID: c.encounterID,
			state:       next,
			save:        !skipSave,
			broadcast:   !skipBroadcast,
		})
	}
	return next, true
}

// OnChange registers fn to be called with every new state. The returned
// func unregisters it.
func (c *Controller) OnChange(fn func(*encounter.State)) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

func (c *Controller) notify(s *encounter.State) {
	c.obsMu.Lock()
	fns := make([]func(*encounter.State), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// WaitHydrated blocks until the current encounter has been loaded.
func (c *Controller) WaitHydrated(ctx context.Context) error {
	c.mu.Lock()
	ch, closed := c.hydratedCh, c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	select {
	case <-ch:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops listening for remote updates and flushes any pending save.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sub := c.sub
	c.sub = nil
	if c.loadCancel != nil {
		c.loadCancel()
	}
	c.mu.Unlock()

	if sub != nil {
		_ = sub.Close()
	}
	c.effects.close()
	c.wg.Wait()
	c.cancel()
	return nil
}
