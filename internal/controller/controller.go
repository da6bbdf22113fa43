// Package controller owns the saved-timer store and the countdown engine
// and applies user actions to both.
package controller

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/dori/tminus/internal/countdown"
	"github.com/dori/tminus/internal/model"
	"github.com/dori/tminus/internal/store"
)

// ErrBadFormat is shown when the date or time field does not parse
var ErrBadFormat = countdown.NewInputError("Please enter the date as YYYY-MM-DD and the time as HH:MM")

// Recorder stores countdowns that reached zero
type Recorder interface {
	RecordCompletion(name string, target int64, completedAt time.Time) (*model.Completion, error)
}

// Announcer tells the user a countdown finished
type Announcer interface {
	SendTimeUp(label string, target time.Time) error
}

// Ringer plays and silences the alarm tone
type Ringer interface {
	Ring()
	Stop()
}

// Deps are the collaborators a Controller drives. Only Store and Engine are
// required.
type Deps struct {
	Store     *store.Store
	Engine    *countdown.Engine
	History   Recorder
	Announcer Announcer
	Alarm     Ringer
	Location  *time.Location
}

// Controller is the single owner of countdown and saved-timer state
type Controller struct {
	deps Deps

	mu          sync.Mutex
	active      model.Timer
	lastExpired uint64
}

// New creates a controller over deps
func New(deps Deps) *Controller {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	return &Controller{deps: deps}
}

// Engine returns the countdown engine, for reading its events
func (c *Controller) Engine() *countdown.Engine {
	return c.deps.Engine
}

// Start validates the fields, starts counting down and, when name is not
// empty, saves the timer. Input errors leave everything as it was.
func (c *Controller) Start(name, date, clock string) (model.Timer, error) {
	name = strings.TrimSpace(name)
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	if date == "" || clock == "" {
		return model.Timer{}, countdown.ErrMissingDateTime
	}

	timer, err := model.NewTimer(name, date, clock, c.deps.Location)
	if err != nil {
		return model.Timer{}, ErrBadFormat
	}

	handle, err := c.deps.Engine.Start(timer.TargetTime())
	if err != nil {
		return model.Timer{}, err
	}

	c.mu.Lock()
	c.active = timer
	c.mu.Unlock()

	if c.deps.Alarm != nil {
		c.deps.Alarm.Stop()
	}

	log.Printf("controller: started %q as run %d", timer.DisplayName(), handle.ID)

	if name == "" {
		return timer, nil
	}
	if err := c.deps.Store.Upsert(timer); err != nil {
		return timer, fmt.Errorf("countdown started but not saved: %w", err)
	}
	return timer, nil
}

// Reset stops the countdown and the alarm
func (c *Controller) Reset() {
	c.deps.Engine.Stop()
	if c.deps.Alarm != nil {
		c.deps.Alarm.Stop()
	}

	c.mu.Lock()
	c.active = model.Timer{}
	c.mu.Unlock()
}

// Active returns the timer being counted down, if any
func (c *Controller) Active() (model.Timer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active, c.active.Target != 0
}

// Label returns the name shown above the countdown
func (c *Controller) Label() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active.Target == 0 {
		return ""
	}
	return c.active.DisplayName()
}

// Accept returns true if ev belongs to the current countdown
func (c *Controller) Accept(ev countdown.Event) bool {
	return c.deps.Engine.IsCurrent(ev)
}

// Expire handles the end of a run: it records the completion, notifies and
// rings. Repeated calls for the same run do nothing.
func (c *Controller) Expire(ev countdown.Event) error {
	if !ev.State.Expired {
		return nil
	}

	c.mu.Lock()
	if ev.Run == c.lastExpired {
		c.mu.Unlock()
		return nil
	}
	c.lastExpired = ev.Run
	timer := c.active
	c.mu.Unlock()

	if c.deps.Alarm != nil {
		c.deps.Alarm.Ring()
	}
	if c.deps.Announcer != nil {
		if err := c.deps.Announcer.SendTimeUp(timer.DisplayName(), ev.Target); err != nil {
			log.Printf("controller: notification failed: %v", err)
		}
	}
	if c.deps.History != nil {
		if _, err := c.deps.History.RecordCompletion(timer.Name, ev.Target.UnixMilli(), ev.At); err != nil {
			return fmt.Errorf("failed to record completion: %w", err)
		}
	}
	return nil
}

// Saved returns the saved timers that have not expired, pruning the rest
func (c *Controller) Saved() ([]model.Timer, error) {
	return c.deps.Store.List(c.deps.Engine.Now())
}

// Load returns a saved timer by name so its fields can be edited
func (c *Controller) Load(name string) (model.Timer, bool) {
	return c.deps.Store.Find(name)
}

// Save validates and stores a timer without starting it
func (c *Controller) Save(name, date, clock string) (model.Timer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Timer{}, store.ErrEmptyName
	}
	if strings.TrimSpace(date) == "" || strings.TrimSpace(clock) == "" {
		return model.Timer{}, countdown.ErrMissingDateTime
	}

	timer, err := model.NewTimer(name, strings.TrimSpace(date), strings.TrimSpace(clock), c.deps.Location)
	if err != nil {
		return model.Timer{}, ErrBadFormat
	}
	if err := countdown.Validate(timer.TargetTime(), c.deps.Engine.Now()); err != nil {
		return model.Timer{}, err
	}
	if err := c.deps.Store.Upsert(timer); err != nil {
		return model.Timer{}, err
	}
	return timer, nil
}

// Delete removes a saved timer
func (c *Controller) Delete(name string) error {
	return c.deps.Store.Delete(name)
}
