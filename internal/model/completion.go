package model

import (
	"time"
)

// Completion records a countdown that ran to zero
type Completion struct {
	ID          string    `json:"id"`
	Name        string    `json:"name,omitempty"`
	Target      int64     `json:"target"` // Epoch milliseconds
	CompletedAt time.Time `json:"completed_at"`
}

// Label returns the completion name or the generic countdown label
func (c *Completion) Label() string {
	if c.Name == "" {
		return "Countdown"
	}
	return c.Name
}

// Late returns how long after the target the completion was observed
func (c *Completion) Late() time.Duration {
	d := c.CompletedAt.Sub(time.UnixMilli(c.Target))
	if d < 0 {
		return 0
	}
	return d
}
