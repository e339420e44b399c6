// Package eventloop runs every callback belonging to one connection on a single goroutine.
// Readable bytes, timer expiry and disconnects are all posted to the loop as closures, so
// the protocol engine, renderer and editor never need locks of their own.
package eventloop

import (
	"context"
	"sync"
	"time"
)

// Timer is a re-armable one-shot timer. Arming an armed timer moves its deadline; the
// expiry callback runs at most once per arming.
type Timer interface {
	// Arm schedules the expiry callback to run after d, cancelling any earlier arming
	Arm(d time.Duration)
	// Disable cancels the pending expiry, if any
	Disable()
	// Armed reports whether an expiry is pending
	Armed() bool
}

// Clock creates timers. Loop is the production clock, ManualClock is used by tests.
type Clock interface {
	NewTimer(fire func()) Timer
}

// Loop serializes closures onto the goroutine that calls Run
type Loop struct {
	events   chan func()
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

var _ Clock = &Loop{}

// New creates a loop whose event channel holds up to backlog pending closures before
// Post starts blocking
func New(backlog int) *Loop {
	return &Loop{
		events: make(chan func(), backlog),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Post queues f to run on the loop goroutine. It returns false if the loop has exited
// and f will never run.
func (l *Loop) Post(f func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.events <- f:
		return true
	case <-l.done:
		return false
	}
}

// Run processes posted closures until the context is cancelled or Stop is called
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case f := <-l.events:
			f()
		case <-l.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends Run after the closure currently executing returns
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stop)
	})
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// NewTimer creates a timer whose expiry callback is posted to the loop. Arm, Disable
// and Armed must only be called from the loop goroutine.
func (l *Loop) NewTimer(fire func()) Timer {
	return &loopTimer{loop: l, fire: fire}
}

type loopTimer struct {
	loop       *Loop
	fire       func()
	timer      *time.Timer
	generation uint64
	armed      bool
}

func (t *loopTimer) Arm(d time.Duration) {
	t.Disable()

	t.armed = true
	generation := t.generation
	t.timer = time.AfterFunc(d, func() {
		t.loop.Post(func() {
			// A stale expiry from an earlier arming is dropped
			if t.generation != generation || !t.armed {
				return
			}

			t.armed = false
			t.fire()
		})
	})
}

func (t *loopTimer) Disable() {
	t.generation++
	t.armed = false

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *loopTimer) Armed() bool {
	return t.armed
}
