package eventloop

import (
	"context"
	"testing"
	"time"
)

func TestManualClockFiresInDeadlineOrder(t *testing.T) {
	clock := NewManualClock()

	var fired []string
	first := clock.NewTimer(func() { fired = append(fired, "first") })
	second := clock.NewTimer(func() { fired = append(fired, "second") })

	second.Arm(300 * time.Millisecond)
	first.Arm(100 * time.Millisecond)

	clock.Advance(99 * time.Millisecond)
	if len(fired) != 0 {
		t.Fatalf("expect nothing fired before the deadline, got %v", fired)
	}

	clock.Advance(time.Second)
	if len(fired) != 2 || fired[0] != "first" || fired[1] != "second" {
		t.Errorf("expect [first second], got %v", fired)
	}

	if first.Armed() || second.Armed() {
		t.Errorf("expired timers should be disarmed")
	}
}

func TestManualClockRearmAndDisable(t *testing.T) {
	clock := NewManualClock()

	count := 0
	timer := clock.NewTimer(func() { count++ })

	timer.Arm(500 * time.Millisecond)
	clock.Advance(400 * time.Millisecond)
	timer.Arm(500 * time.Millisecond)
	clock.Advance(400 * time.Millisecond)
	if count != 0 {
		t.Fatalf("rearmed timer fired early")
	}

	clock.Advance(100 * time.Millisecond)
	if count != 1 {
		t.Fatalf("expect one expiry, got %d", count)
	}

	timer.Arm(time.Millisecond)
	timer.Disable()
	clock.Advance(time.Second)
	if count != 1 {
		t.Errorf("disabled timer fired")
	}
}

func TestLoopTimerRunsOnLoop(t *testing.T) {
	loop := New(10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go loop.Run(ctx)

	fired := make(chan bool, 1)
	loop.Post(func() {
		var timer Timer
		timer = loop.NewTimer(func() {
			fired <- timer.Armed()
		})
		timer.Arm(10 * time.Millisecond)
	})

	select {
	case armed := <-fired:
		if armed {
			t.Errorf("timer should be disarmed while its callback runs")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timer never fired")
	}

	loop.Stop()
	<-loop.Done()

	if loop.Post(func() {}) {
		t.Errorf("Post after exit should report false")
	}
}
