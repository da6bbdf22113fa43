// Package alarm plays the time's-up tone. Without an audio device it runs
// silently.
package alarm

import (
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)

	// DefaultDuration is how long Ring keeps beeping unless stopped
	DefaultDuration = 10 * time.Second
)

// Alarm owns the speaker and the currently ringing tone
type Alarm struct {
	mu          sync.Mutex
	ringing     *beep.Ctrl
	initialized bool
	silent      bool
	duration    time.Duration
}

// New creates an alarm that rings for d (DefaultDuration if zero)
func New(d time.Duration) *Alarm {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Alarm{duration: d}
}

// Initialize opens the audio device. Failure switches to silent mode and
// is returned for logging only.
func (a *Alarm) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}
	a.initialized = true

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		a.silent = true
		return err
	}
	return nil
}

// Silent returns true if no audio will be produced
func (a *Alarm) Silent() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return !a.initialized || a.silent
}

// Ring starts the beeping pattern, replacing any tone already playing
func (a *Alarm) Ring() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized || a.silent {
		return
	}
	a.stopLocked()

	tone := beep.Take(sampleRate.N(a.duration), NewBeepGenerator(sampleRate, 880))
	ctrl := &beep.Ctrl{Streamer: tone}
	a.ringing = ctrl
	speaker.Play(ctrl)
}

// Stop silences the alarm. Safe to call when nothing is ringing.
func (a *Alarm) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopLocked()
}

func (a *Alarm) stopLocked() {
	if a.ringing == nil {
		return
	}
	speaker.Lock()
	a.ringing.Paused = true
	speaker.Unlock()
	a.ringing = nil
}

// Close stops the alarm and releases the speaker
func (a *Alarm) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopLocked()
	if a.initialized && !a.silent {
		speaker.Close()
	}
}

// BeepGenerator produces a classic alarm clock pattern: two short beeps
// followed by a pause, repeated forever
type BeepGenerator struct {
	sr     beep.SampleRate
	freq   float64
	pos    int
	period int
}

// NewBeepGenerator creates a beep pattern generator at freq Hz
func NewBeepGenerator(sr beep.SampleRate, freq float64) *BeepGenerator {
	return &BeepGenerator{
		sr:     sr,
		freq:   freq,
		period: sr.N(time.Second),
	}
}

// audible reports whether the sample offset within a period is inside a beep
func (g *BeepGenerator) audible(offset int) bool {
	ms := offset * 1000 / g.period
	return ms < 150 || (ms >= 250 && ms < 400)
}

func (g *BeepGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		offset := g.pos % g.period
		sample := 0.0
		if g.audible(offset) {
			t := float64(g.pos) / float64(g.sr)
			sample = 0.25 * math.Sin(2*math.Pi*g.freq*t)
		}
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BeepGenerator) Err() error {
	return nil
}
