package alarm

import (
	"math"
	"testing"

	"github.com/gopxl/beep"
)

func TestBeepGeneratorPattern(t *testing.T) {
	sr := beep.SampleRate(1000) // one sample per millisecond
	g := NewBeepGenerator(sr, 440)

	buf := make([][2]float64, 1000)
	n, ok := g.Stream(buf)
	if n != len(buf) || !ok {
		t.Fatalf("Stream = %d, %v", n, ok)
	}

	for i, s := range buf {
		if s[0] != s[1] {
			t.Fatalf("sample %d is not mono: %v", i, s)
		}
		if math.Abs(s[0]) > 0.25 {
			t.Fatalf("sample %d = %f exceeds amplitude", i, s[0])
		}
		audible := i < 150 || (i >= 250 && i < 400)
		if !audible && s[0] != 0 {
			t.Fatalf("sample %d should be silent, got %f", i, s[0])
		}
	}
	if g.Err() != nil {
		t.Fatal("generator reported an error")
	}
}

func TestUninitializedAlarmIsSilent(t *testing.T) {
	a := New(0)
	if a.duration != DefaultDuration {
		t.Fatalf("duration = %s, want default", a.duration)
	}
	if !a.Silent() {
		t.Fatal("alarm reports sound before Initialize")
	}

	// None of these may touch the speaker
	a.Ring()
	a.Stop()
	a.Stop()
	a.Close()

	if a.ringing != nil {
		t.Fatal("uninitialized alarm started ringing")
	}
}
