// Package countdown turns a target timestamp into the remaining
// days/hours/minutes/seconds and drives a once-per-interval recomputation.
package countdown

import (
	"fmt"
	"time"
)

// Bucket sizes in milliseconds
const (
	MillisPerSecond = int64(1000)
	MillisPerMinute = 60 * MillisPerSecond
	MillisPerHour   = 60 * MillisPerMinute
	MillisPerDay    = 24 * MillisPerHour
)

// Remaining is a mixed-radix split of a positive millisecond delta
type Remaining struct {
	Days    int64
	Hours   int64
	Minutes int64
	Seconds int64
}

// Millis returns the whole-second portion of the delta in milliseconds
func (r Remaining) Millis() int64 {
	return r.Days*MillisPerDay + r.Hours*MillisPerHour + r.Minutes*MillisPerMinute + r.Seconds*MillisPerSecond
}

// IsZero returns true if every component is zero
func (r Remaining) IsZero() bool {
	return r == Remaining{}
}

// String renders DD:HH:MM:SS with two-digit padding (days may grow wider)
func (r Remaining) String() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", r.Days, r.Hours, r.Minutes, r.Seconds)
}

// Fields returns the zero-padded display strings, largest unit first
func (r Remaining) Fields() [4]string {
	return [4]string{
		fmt.Sprintf("%02d", r.Days),
		fmt.Sprintf("%02d", r.Hours),
		fmt.Sprintf("%02d", r.Minutes),
		fmt.Sprintf("%02d", r.Seconds),
	}
}

// State is the outcome of a single tick: either time remains or the target
// has been reached
type State struct {
	Remaining Remaining
	Expired   bool
}

// Decompose splits ms into days, hours, minutes and seconds. Each unit is
// taken from the remainder of the previous one. Negative input yields zero.
func Decompose(ms int64) Remaining {
	if ms <= 0 {
		return Remaining{}
	}
	return Remaining{
		Days:    ms / MillisPerDay,
		Hours:   (ms % MillisPerDay) / MillisPerHour,
		Minutes: (ms % MillisPerHour) / MillisPerMinute,
		Seconds: (ms % MillisPerMinute) / MillisPerSecond,
	}
}

// TickMillis computes the state for epoch-millisecond target and now.
// A delta of exactly zero is expired.
func TickMillis(target, now int64) State {
	delta := target - now
	if delta <= 0 {
		return State{Expired: true}
	}
	return State{Remaining: Decompose(delta)}
}

// Tick computes the state for target as seen at now
func Tick(target, now time.Time) State {
	return TickMillis(target.UnixMilli(), now.UnixMilli())
}

// Validate returns ErrNotFuture unless target is strictly after now
func Validate(target, now time.Time) error {
	if target.UnixMilli() <= now.UnixMilli() {
		return ErrNotFuture
	}
	return nil
}
