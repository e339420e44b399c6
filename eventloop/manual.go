package eventloop

import "time"

// ManualClock is a Clock whose time only moves when Advance is called. Expired timers
// fire synchronously inside Advance, in deadline order.
type ManualClock struct {
	now    time.Duration
	timers []*manualTimer
}

var _ Clock = &ManualClock{}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Now returns the time elapsed since the clock was created
func (c *ManualClock) Now() time.Duration {
	return c.now
}

func (c *ManualClock) NewTimer(fire func()) Timer {
	timer := &manualTimer{clock: c, fire: fire}
	c.timers = append(c.timers, timer)
	return timer
}

// Advance moves the clock forward by d, firing every timer whose deadline is reached
func (c *ManualClock) Advance(d time.Duration) {
	target := c.now + d

	for {
		var next *manualTimer
		for _, timer := range c.timers {
			if !timer.armed || timer.deadline > target {
				continue
			}

			if next == nil || timer.deadline < next.deadline {
				next = timer
			}
		}

		if next == nil {
			break
		}

		c.now = next.deadline
		next.armed = false
		next.fire()
	}

	c.now = target
}

type manualTimer struct {
	clock    *ManualClock
	fire     func()
	deadline time.Duration
	armed    bool
}

func (t *manualTimer) Arm(d time.Duration) {
	t.deadline = t.clock.now + d
	t.armed = true
}

func (t *manualTimer) Disable() {
	t.armed = false
}

func (t *manualTimer) Armed() bool {
	return t.armed
}
