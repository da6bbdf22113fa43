package model

import (
	"time"
)

// Input layouts for the date and time fields of a timer
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Timer represents a named countdown saved for later
type Timer struct {
	Name   string `json:"name"`
	Date   string `json:"date"`
	Time   string `json:"time"`
	Target int64  `json:"target"` // Epoch milliseconds
}

// NewTimer builds a timer from its date and time fields, resolving the
// target in loc. An empty name is allowed here; the store refuses it.
func NewTimer(name, date, clock string, loc *time.Location) (Timer, error) {
	target, err := ParseTarget(date, clock, loc)
	if err != nil {
		return Timer{}, err
	}
	return Timer{
		Name:   name,
		Date:   date,
		Time:   clock,
		Target: target.UnixMilli(),
	}, nil
}

// ParseTarget combines a YYYY-MM-DD date and an HH:MM time in loc
func ParseTarget(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(DateLayout+"T"+TimeLayout, date+"T"+clock, loc)
}

// TargetTime returns the target as a time.Time in the local zone
func (t *Timer) TargetTime() time.Time {
	return time.UnixMilli(t.Target)
}

// IsExpired returns true if the target is not after now
func (t *Timer) IsExpired(now time.Time) bool {
	return t.Target <= now.UnixMilli()
}

// DisplayName returns the timer name, or a generic label when unnamed
func (t *Timer) DisplayName() string {
	if t.Name == "" {
		return "Countdown"
	}
	return t.Name
}

// FormatDate renders the date field as "January 2, 2006", falling back to
// the raw field when it does not parse
func (t *Timer) FormatDate() string {
	d, err := time.Parse(DateLayout, t.Date)
	if err != nil {
		return t.Date
	}
	return d.Format("January 2, 2006")
}
