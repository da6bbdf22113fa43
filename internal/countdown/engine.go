package countdown

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is how often a running countdown is recomputed
const DefaultInterval = time.Second

// Handle identifies one run of the engine. The zero Handle means no run.
type Handle struct {
	ID     uint64
	Target time.Time
}

// Valid returns true if the handle refers to a run
func (h Handle) Valid() bool {
	return h.ID != 0
}

// Event is one tick delivered by a run
type Event struct {
	Run    uint64
	Target time.Time
	At     time.Time
	State  State
}

// Options configures an Engine
type Options struct {
	Interval time.Duration    // Defaults to DefaultInterval
	Now      func() time.Time // Defaults to time.Now
	Buffer   int              // Event channel capacity, defaults to 1
}

// run is the owned handle to the single live periodic task
type run struct {
	handle   Handle
	cancel   context.CancelFunc
	done     chan struct{}
	finished atomic.Bool
}

// Engine drives at most one countdown at a time. Starting a new countdown
// cancels and waits for the previous one before the new run begins.
type Engine struct {
	interval time.Duration
	now      func() time.Time
	events   chan Event

	mu     sync.Mutex
	seq    uint64
	run    *run
	closed bool
}

// NewEngine creates an idle engine
func NewEngine(opts Options) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 1
	}
	return &Engine{
		interval: opts.Interval,
		now:      opts.Now,
		events:   make(chan Event, opts.Buffer),
	}
}

// Events returns the channel runs deliver ticks on. It is closed by Close.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Now returns the engine clock reading
func (e *Engine) Now() time.Time {
	return e.now()
}

// Start begins counting down to target. It fails with ErrNotFuture if the
// target is not after the engine clock, leaving any current run untouched.
func (e *Engine) Start(target time.Time) (Handle, error) {
	if err := Validate(target, e.now()); err != nil {
		return Handle{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return Handle{}, ErrEngineClosed
	}

	e.stopLocked()

	e.seq++
	ctx, cancel := context.WithCancel(context.Background())
	r := &run{
		handle: Handle{ID: e.seq, Target: target},
		cancel: cancel,
		done:   make(chan struct{}),
	}
	e.run = r

	go e.loop(ctx, r)

	log.Printf("countdown: run %d started, target %s", r.handle.ID, target.Format(time.RFC3339))
	return r.handle, nil
}

// Stop cancels the current run, if any. Safe to call when idle.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked()
}

// stopLocked cancels the run and waits for its goroutine to exit
func (e *Engine) stopLocked() {
	if e.run == nil {
		return
	}
	e.run.cancel()
	<-e.run.done
	log.Printf("countdown: run %d stopped", e.run.handle.ID)
	e.run = nil

	// Drop anything the cancelled run left in the buffer
	for {
		select {
		case <-e.events:
		default:
			return
		}
	}
}

// Current returns the handle of the latest run, including one that has
// just expired, or the zero Handle after Stop
func (e *Engine) Current() Handle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == nil {
		return Handle{}
	}
	return e.run.handle
}

// IsCurrent returns true if ev belongs to the latest run
func (e *Engine) IsCurrent(ev Event) bool {
	h := e.Current()
	return h.Valid() && h.ID == ev.Run
}

// Running returns true while a run is ticking and has not expired
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run != nil && !e.run.finished.Load()
}

// Close stops the engine and closes the event channel
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.stopLocked()
	e.closed = true
	close(e.events)
}

func (e *Engine) loop(ctx context.Context, r *run) {
	defer close(r.done)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		now := e.now()
		state := Tick(r.handle.Target, now)
		if state.Expired {
			r.finished.Store(true)
		}

		ev := Event{Run: r.handle.ID, Target: r.handle.Target, At: now, State: state}
		select {
		case e.events <- ev:
		case <-ctx.Done():
			return
		}

		if state.Expired {
			log.Printf("countdown: run %d expired", r.handle.ID)
			return
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
