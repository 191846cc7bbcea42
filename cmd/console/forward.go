package main

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwebster45206/combat-tracker/pkg/encounter"
	"github.com/jwebster45206/combat-tracker/pkg/showcase"
	"github.com/jwebster45206/combat-tracker/pkg/tracker"
)

// sender is the part of *tea.Program the forwarder delivers to.
type sender interface {
	Send(msg tea.Msg)
}

// forwarder hands messages to the program from its own goroutine, in order.
// Controller observers and showcase callbacks run inside Update whenever the
// UI dispatches or dismisses, and tea.Program.Send blocks until Update
// returns, so they must never call Send directly.
type forwarder struct {
	mu      sync.Mutex
	queue   []tea.Msg
	wake    chan struct{}
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	started bool
	closed  bool
}

func newForwarder() *forwarder {
	return &forwarder{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Send queues msg and returns immediately.
func (f *forwarder) Send(msg tea.Msg) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.queue = append(f.queue, msg)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Start delivers queued messages to p until Close.
func (f *forwarder) Start(p sender) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started || f.closed {
		return
	}
	f.started = true
	go f.run(p)
}

func (f *forwarder) run(p sender) {
	defer close(f.done)
	for {
		select {
		case <-f.stop:
			return
		case <-f.wake:
		}
		for {
			f.mu.Lock()
			if len(f.queue) == 0 {
				f.mu.Unlock()
				break
			}
			msg := f.queue[0]
			f.queue = f.queue[1:]
			f.mu.Unlock()
			p.Send(msg)
		}
	}
}

// Close drops undelivered messages and waits for the delivery goroutine.
// The program must have exited or still be reading messages.
func (f *forwarder) Close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.queue = nil
		started := f.started
		f.mu.Unlock()
		close(f.stop)
		if started {
			<-f.done
		}
	})
}

// connect feeds controller changes to the showcase queue and both to the
// UI through fwd. The returned func unregisters the observer.
func connect(ctrl *tracker.Controller, queue *showcase.Queue, encounterID string, fwd *forwarder) func() {
	return ctrl.OnChange(func(s *encounter.State) {
		queue.Observe(context.Background(), encounterID, s)
		fwd.Send(stateMsg{})
	})
}

// forwardShowcases is the showcase option that routes banner changes to fwd.
func forwardShowcases(fwd *forwarder) showcase.Option {
	return showcase.WithOnChange(func(sc *showcase.Showcase) {
		fwd.Send(showcaseMsg{showcase: sc})
	})
}
