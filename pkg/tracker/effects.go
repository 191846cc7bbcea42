package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/jwebster45206/combat-tracker/pkg/broadcast"
	"github.com/jwebster45206/combat-tracker/pkg/encounter"
)

// effect is the side work owed for one state change.
type effect struct {
	encounterID string
	state       *encounter.State
	save        bool
	broadcast   bool
}

type saveJob struct {
	encounterID string
	state       *encounter.State
}

// effectQueue is an unbounded FIFO so Dispatch never blocks on I/O.
type effectQueue struct {
	mu      sync.Mutex
	items   []effect
	closed  bool
	wake    chan struct{}
	closing chan struct{}
}

func newEffectQueue() *effectQueue {
	return &effectQueue{
		wake:    make(chan struct{}, 1),
		closing: make(chan struct{}),
	}
}

func (q *effectQueue) push(e effect) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *effectQueue) drain() []effect {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

func (q *effectQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.closing)
	}
}

// runEffects publishes broadcasts in dispatch order and debounces saves,
// handing the latest state for each quiet period to runSaves.
func (c *Controller) runEffects(saves chan saveJob) {
	defer c.wg.Done()
	defer close(saves)

	var (
		pending *saveJob
		timer   *time.Timer
		timerC  <-chan time.Time
	)
	stopTimer := func() {
		if timer != nil {
			timer.Stop()
		}
		timerC = nil
	}
	flush := func() {
		if pending != nil {
			offerSave(saves, *pending)
			pending = nil
		}
		stopTimer()
	}
	process := func(items []effect) {
		for _, e := range items {
			if e.broadcast {
				c.publish(e)
			}
			if !e.save {
				continue
			}
			if pending != nil && pending.encounterID != e.encounterID {
				flush()
			}
			pending = &saveJob{encounterID: e.encounterID, state: e.state}
			if c.debounce <= 0 {
				flush()
				continue
			}
			if timer == nil {
				timer = time.NewTimer(c.debounce)
			} else {
				timer.Reset(c.debounce)
			}
			timerC = timer.C
		}
	}

	for {
		select {
		case <-c.effects.wake:
			process(c.effects.drain())
		case <-timerC:
			timerC = nil
			flush()
		case <-c.effects.closing:
			process(c.effects.drain())
			flush()
			return
		}
	}
}

// offerSave replaces any save still waiting for the saver, keeping the latest.
// runEffects is the only sender.
func offerSave(saves chan saveJob, job saveJob) {
	for {
		select {
		case saves <- job:
			return
		default:
		}
		select {
		case old := <-saves:
			if old.encounterID != job.encounterID {
				// Different encounter: it must still be written.
				saves <- old
				saves <- job
				return
			}
		default:
		}
	}
}

func (c *Controller) runSaves(saves <-chan saveJob) {
	defer c.wg.Done()
	for job := range saves {
		if c.store == nil {
			continue
		}
		if err := c.store.SaveEncounter(context.Background(), job.encounterID, job.state); err != nil {
			c.logger.Error("Failed to persist encounter", "encounter_id", job.encounterID, "error", err)
			continue
		}
		c.logger.Debug("Encounter persisted", "encounter_id", job.encounterID, "round", job.state.Round)
	}
}

func (c *Controller) publish(e effect) {
	if c.bus == nil {
		return
	}
	msg := broadcast.Message{
		Type:    broadcast.MessageTypeHydrate,
		Payload: e.state,
		Source:  c.instanceID,
	}
	if err := c.bus.Publish(context.Background(), broadcast.Topic(e.encounterID), msg); err != nil {
		c.logger.Error("Failed to broadcast encounter", "encounter_id", e.encounterID, "error", err)
	}
}
