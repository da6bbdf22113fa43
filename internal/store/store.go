// Package store keeps the list of saved timers in a single named slot.
// The whole list is rewritten on every change.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dori/tminus/internal/model"
)

// DefaultSlot is the slot name saved timers live under
const DefaultSlot = "savedTimers"

// ErrEmptyName is returned when saving a timer without a name
var ErrEmptyName = errors.New("timer name is required")

// ErrUnreadable is returned by writes while the backend cannot be read.
// Writing then would replace timers that are still stored.
var ErrUnreadable = errors.New("saved timers could not be read")

// Store is an insertion-ordered set of timers keyed by name
type Store struct {
	backend Backend
	slot    string

	mu      sync.Mutex
	timers  []model.Timer
	loadErr error
}

// Open loads the slot from backend. A missing slot or one that is not a
// timer list yields an empty store; the next write replaces it. If the
// backend itself fails, the store starts empty but refuses writes until a
// later load succeeds.
func Open(backend Backend, slot string) *Store {
	if slot == "" {
		slot = DefaultSlot
	}
	s := &Store{backend: backend, slot: slot}
	s.timers, s.loadErr = s.load()
	if s.loadErr != nil {
		log.Printf("store: %v, writes disabled until it can be read", s.loadErr)
	}
	return s
}

// load returns an error only when the backend fails. Bad data is logged
// and treated as empty.
func (s *Store) load() ([]model.Timer, error) {
	data, err := s.backend.Load(s.slot)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot %q: %w", s.slot, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var timers []model.Timer
	if err := json.Unmarshal(data, &timers); err != nil {
		log.Printf("store: slot %q is not a timer list (%v), starting empty", s.slot, err)
		return nil, nil
	}
	return timers, nil
}

// ensureLoaded retries a failed load. Callers hold s.mu.
func (s *Store) ensureLoaded() error {
	if s.loadErr == nil {
		return nil
	}
	timers, err := s.load()
	if err != nil {
		s.loadErr = err
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	s.timers, s.loadErr = timers, nil
	return nil
}

// save writes timers to the backend. The in-memory list is only replaced
// by callers once this succeeds.
func (s *Store) save(timers []model.Timer) error {
	if timers == nil {
		timers = []model.Timer{}
	}
	data, err := json.Marshal(timers)
	if err != nil {
		return fmt.Errorf("failed to encode timers: %w", err)
	}
	if err := s.backend.Save(s.slot, data); err != nil {
		return fmt.Errorf("failed to save timers: %w", err)
	}
	return nil
}

// Upsert replaces the timer with the same name, or appends it
func (s *Store) Upsert(t model.Timer) error {
	if t.Name == "" {
		return ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}

	next := make([]model.Timer, len(s.timers), len(s.timers)+1)
	copy(next, s.timers)

	replaced := false
	for i := range next {
		if next[i].Name == t.Name {
			next[i] = t
			replaced = true
			break
		}
	}
	if !replaced {
		next = append(next, t)
	}

	if err := s.save(next); err != nil {
		return err
	}
	s.timers = next
	return nil
}

// List returns the timers whose target is after now, in insertion order.
// Expired timers are dropped from the store and the result is persisted.
func (s *Store) List(now time.Time) ([]model.Timer, error) {
	if _, err := s.Prune(now); err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Prune drops timers whose target is not after now and returns how many
// were removed
func (s *Store) Prune(now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return 0, err
	}

	live := make([]model.Timer, 0, len(s.timers))
	for _, t := range s.timers {
		if !t.IsExpired(now) {
			live = append(live, t)
		}
	}

	removed := len(s.timers) - len(live)
	if removed == 0 {
		return 0, nil
	}
	if err := s.save(live); err != nil {
		return 0, err
	}
	s.timers = live
	return removed, nil
}

// Snapshot returns a copy of the stored timers without pruning
func (s *Store) Snapshot() []model.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Timer, len(s.timers))
	copy(out, s.timers)
	return out
}

// Find returns the timer with the given name
func (s *Store) Find(name string) (model.Timer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers {
		if t.Name == name {
			return t, true
		}
	}
	return model.Timer{}, false
}

// Delete removes the timer with the given name. Deleting an unknown name
// is not an error.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(); err != nil {
		return err
	}

	next := make([]model.Timer, 0, len(s.timers))
	for _, t := range s.timers {
		if t.Name != name {
			next = append(next, t)
		}
	}

	if err := s.save(next); err != nil {
		return err
	}
	s.timers = next
	return nil
}

// Len returns the number of stored timers, expired ones included
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}
