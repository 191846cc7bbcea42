package showcase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/storage"
)

// DefaultDuration is how long each death stays on screen.
const DefaultDuration = 4 * time.Second

// Showcase is one death being announced.
type Showcase struct {
	EntryID     string                  `json:"entryId"`
	CombatantID string                  `json:"combatantId"`
	Name        string                  `json:"name"`
	Type        encounter.CombatantType `json:"type"`
	Icon        string                  `json:"icon,omitempty"`
	Message     string                  `json:"message"`
	Round       int                     `json:"round"`
}

// Option configures a Queue.
type Option func(*Queue)

// WithDuration sets how long each showcase is displayed.
func WithDuration(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.duration = d
		}
	}
}

// WithOnChange registers fn to be called whenever the displayed showcase
// changes; nil means nothing is displayed.
func WithOnChange(fn func(*Showcase)) Option {
	return func(q *Queue) {
		q.onChange = fn
	}
}

// Queue turns new death log entries into a FIFO of announcements shown one
// at a time.
type Queue struct {
	store    storage.SeenStore
	logger   *slog.Logger
	duration time.Duration
	onChange func(*Showcase)

	mu          sync.Mutex
	encounterID string
	observed    bool
	seen        map[string]bool
	pending     []Showcase
	current     *Showcase
	timer       *time.Timer
	epoch       uint64
}

// New creates a Queue. store may be nil to keep the seen-set in memory only.
func New(store storage.SeenStore, logger *slog.Logger, opts ...Option) *Queue {
	q := &Queue{
		store:    store,
		logger:   logger,
		duration: DefaultDuration,
		seen:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Observe inspects s for deaths not yet seen. The first observation of an
// encounter marks every existing death as seen without announcing it. With a
// store, an encounter observed earlier by any queue is not first.
func (q *Queue) Observe(ctx context.Context, encounterID string, s *encounter.State) {
	if s == nil {
		return
	}

	q.mu.Lock()
	switchedAway := false
	first := false
	if encounterID != q.encounterID || !q.observed {
		switchedAway = q.current != nil
		q.resetLocked(encounterID)
		first = !q.loadSeenLocked(ctx)
	}
	q.observed = true

	var fresh []string
	for _, e := range s.Log {
		if e.Type != encounter.LogDeath || q.seen[e.ID] {
			continue
		}
		q.seen[e.ID] = true
		fresh = append(fresh, e.ID)
		if first {
			continue
		}
		if sc, ok := qualify(s, e); ok {
			q.pending = append(q.pending, sc)
		}
	}

	changed := switchedAway
	if q.current == nil && len(q.pending) > 0 {
		q.showNextLocked()
		changed = true
	}
	current := q.current
	q.mu.Unlock()

	if len(fresh) > 0 || first {
		q.persist(ctx, encounterID, fresh)
	}
	if changed {
		q.notify(current)
	}
}

// qualify decides whether a death entry should be announced: the combatant
// must still be at 0 HP and, for party members, actually dead rather than
// unconscious.
func qualify(s *encounter.State, e encounter.LogEntry) (Showcase, bool) {
	c, ok := s.Combatant(e.CombatantID)
	if !ok || c.HP.Current > 0 {
		return Showcase{}, false
	}
	if c.Type.IsParty() && (c.DeathSaves == nil || c.DeathSaves.Status != encounter.DeathSaveDead) {
		return Showcase{}, false
	}
	return Showcase{
		EntryID:     e.ID,
		CombatantID: c.ID,
		Name:        c.Name,
		Type:        c.Type,
		Icon:        c.Icon,
		Message:     e.Message,
		Round:       e.Round,
	}, true
}

// Current returns the showcase on display, if any.
func (q *Queue) Current() (Showcase, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.current == nil {
		return Showcase{}, false
	}
	return *q.current, true
}

// Pending reports how many showcases are waiting behind the current one.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Dismiss ends the current showcase early and moves to the next.
func (q *Queue) Dismiss() {
	q.mu.Lock()
	if q.current == nil {
		q.mu.Unlock()
		return
	}
	q.advanceLocked()
	current := q.current
	q.mu.Unlock()

	q.notify(current)
}

// Close stops the display timer and drops anything queued.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resetLocked("")
}

func (q *Queue) resetLocked(encounterID string) {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.epoch++
	q.encounterID = encounterID
	q.observed = false
	q.seen = make(map[string]bool)
	q.pending = nil
	q.current = nil
}

// loadSeenLocked fills the seen-set from the store and reports whether the
// encounter was observed before.
func (q *Queue) loadSeenLocked(ctx context.Context) bool {
	if q.store == nil || q.encounterID == "" {
		return false
	}
	seen, observed, err := q.store.SeenDeaths(ctx, q.encounterID)
	if err != nil {
		q.logger.Warn("Failed to load seen deaths", "encounter_id", q.encounterID, "error", err)
		return false
	}
	for id := range seen {
		q.seen[id] = true
	}
	return observed
}

func (q *Queue) showNextLocked() {
	next := q.pending[0]
	q.pending = q.pending[1:]
	q.current = &next

	epoch := q.epoch
	q.timer = time.AfterFunc(q.duration, func() {
		q.expire(epoch)
	})
}

func (q *Queue) advanceLocked() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.epoch++
	q.current = nil
	if len(q.pending) > 0 {
		q.showNextLocked()
	}
}

func (q *Queue) expire(epoch uint64) {
	q.mu.Lock()
	if epoch != q.epoch {
		q.mu.Unlock()
		return
	}
	q.advanceLocked()
	current := q.current
	q.mu.Unlock()

	q.notify(current)
}

func (q *Queue) persist(ctx context.Context, encounterID string, ids []string) {
	if q.store == nil || encounterID == "" {
		return
	}
	if err := q.store.MarkDeathsSeen(ctx, encounterID, ids...); err != nil {
		q.logger.Warn("Failed to persist seen deaths", "encounter_id", encounterID, "error", err)
	}
}

func (q *Queue) notify(current *Showcase) {
	if q.onChange == nil {
		return
	}
	if current == nil {
		q.onChange(nil)
		return
	}
	sc := *current
	q.onChange(&sc)
}
