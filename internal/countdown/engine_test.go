package countdown

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock is a settable clock shared between the test and the engine
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{now: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestEngine(clock *fakeClock) *Engine {
	return NewEngine(Options{
		Interval: 2 * time.Millisecond,
		Now:      clock.Now,
		Buffer:   4,
	})
}

func nextEvent(t *testing.T, e *Engine) Event {
	t.Helper()
	select {
	case ev := <-e.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for countdown event")
		return Event{}
	}
}

func TestEngineStartRejectsPastTarget(t *testing.T) {
	base := time.UnixMilli(1_000_000)
	clock := newFakeClock(base)
	e := newTestEngine(clock)
	defer e.Close()

	_, err := e.Start(base.Add(-time.Millisecond))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Start(past) = %v, want ErrInvalidInput", err)
	}
	if _, err := e.Start(base); !errors.Is(err, ErrNotFuture) {
		t.Fatalf("Start(now) = %v, want ErrNotFuture", err)
	}
	if e.Running() || e.Current().Valid() {
		t.Fatal("failed start left a run behind")
	}
}

func TestEngineEmitsImmediatelyThenExpiresOnce(t *testing.T) {
	base := time.UnixMilli(10_000_000)
	clock := newFakeClock(base)
	e := newTestEngine(clock)
	defer e.Close()

	target := base.Add(90 * time.Second)
	h, err := e.Start(target)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ev := nextEvent(t, e)
	if ev.Run != h.ID || ev.State.Expired {
		t.Fatalf("first event = %+v, want remaining for run %d", ev, h.ID)
	}
	if ev.State.Remaining != (Remaining{Minutes: 1, Seconds: 30}) {
		t.Fatalf("first remaining = %+v", ev.State.Remaining)
	}

	clock.Set(target)

	var expired int
	deadline := time.After(2 * time.Second)
	for expired == 0 {
		select {
		case ev := <-e.Events():
			if ev.State.Expired {
				expired++
			}
		case <-deadline:
			t.Fatal("never expired")
		}
	}

	// No further events once expired
	select {
	case ev := <-e.Events():
		t.Fatalf("unexpected event after expiry: %+v", ev)
	case <-time.After(30 * time.Millisecond):
	}

	if e.Running() {
		t.Fatal("engine still running after expiry")
	}
	if got := e.Current(); got.ID != h.ID {
		t.Fatalf("Current() = %+v, want expired run %d", got, h.ID)
	}
}

func TestEngineRestartCancelsPreviousRun(t *testing.T) {
	base := time.UnixMilli(50_000_000)
	clock := newFakeClock(base)
	e := newTestEngine(clock)
	defer e.Close()

	first, err := e.Start(base.Add(time.Hour))
	if err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	second, err := e.Start(base.Add(2 * time.Hour))
	if err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("runs share an id")
	}

	for i := 0; i < 5; i++ {
		ev := nextEvent(t, e)
		if ev.Run != second.ID {
			t.Fatalf("event from cancelled run %d after restart", ev.Run)
		}
		if !e.IsCurrent(ev) {
			t.Fatal("event from live run not reported current")
		}
	}
}

func TestEngineStopIsIdempotent(t *testing.T) {
	clock := newFakeClock(time.UnixMilli(1))
	e := newTestEngine(clock)
	defer e.Close()

	e.Stop()
	e.Stop()

	if _, err := e.Start(time.UnixMilli(1).Add(time.Minute)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	nextEvent(t, e)

	e.Stop()
	e.Stop()

	if e.Running() || e.Current().Valid() {
		t.Fatal("engine still holds a run after Stop")
	}
	select {
	case ev := <-e.Events():
		t.Fatalf("event delivered after Stop: %+v", ev)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestEngineCloseRejectsStart(t *testing.T) {
	clock := newFakeClock(time.UnixMilli(1))
	e := newTestEngine(clock)
	e.Close()
	e.Close()

	if _, err := e.Start(time.UnixMilli(1).Add(time.Minute)); !errors.Is(err, ErrEngineClosed) {
		t.Fatalf("Start after Close = %v, want ErrEngineClosed", err)
	}
	if _, ok := <-e.Events(); ok {
		t.Fatal("event channel still open after Close")
	}
}
