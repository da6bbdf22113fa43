package countdown

import (
	"errors"
	"math/rand"
	"testing"
	"time"
)

func TestDecomposeBoundsAndRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	deltas := []int64{1, 999, 1000, 59_999, 60_000, 3_599_999, 3_600_000, 86_399_999, 86_400_000, 400 * MillisPerDay}
	for i := 0; i < 2000; i++ {
		deltas = append(deltas, 1+rng.Int63n(1000*MillisPerDay))
	}

	for _, delta := range deltas {
		r := Decompose(delta)
		sum := r.Millis()
		if !(sum <= delta && delta < sum+1000) {
			t.Fatalf("Decompose(%d) = %+v: sum %d not within [delta-999, delta]", delta, r, sum)
		}
		if r.Hours < 0 || r.Hours > 23 {
			t.Fatalf("Decompose(%d): hours %d out of range", delta, r.Hours)
		}
		if r.Minutes < 0 || r.Minutes > 59 {
			t.Fatalf("Decompose(%d): minutes %d out of range", delta, r.Minutes)
		}
		if r.Seconds < 0 || r.Seconds > 59 {
			t.Fatalf("Decompose(%d): seconds %d out of range", delta, r.Seconds)
		}
	}
}

func TestDecomposeKnownValues(t *testing.T) {
	ms := 2*MillisPerDay + 3*MillisPerHour + 4*MillisPerMinute + 5*MillisPerSecond + 678
	want := Remaining{Days: 2, Hours: 3, Minutes: 4, Seconds: 5}
	if got := Decompose(ms); got != want {
		t.Fatalf("Decompose(%d) = %+v, want %+v", ms, got, want)
	}
	if got := want.String(); got != "02:03:04:05" {
		t.Fatalf("String() = %q", got)
	}
	if got := (Remaining{Days: 123}).Fields(); got[0] != "123" || got[3] != "00" {
		t.Fatalf("Fields() = %v", got)
	}
}

func TestTickExpiredIffDeltaNotPositive(t *testing.T) {
	const now = int64(1_700_000_000_000)
	cases := []struct {
		delta   int64
		expired bool
	}{
		{-MillisPerDay, true},
		{-1, true},
		{0, true},
		{1, false},
		{999, false},
		{MillisPerDay, false},
	}
	for _, c := range cases {
		state := TickMillis(now+c.delta, now)
		if state.Expired != c.expired {
			t.Errorf("TickMillis(delta=%d).Expired = %v, want %v", c.delta, state.Expired, c.expired)
		}
		if state.Expired && !state.Remaining.IsZero() {
			t.Errorf("expired state carries remaining %+v", state.Remaining)
		}
	}
}

func TestTickUsesMillisecondDelta(t *testing.T) {
	now := time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC)
	target := now.Add(25*time.Hour + 90*time.Second)

	state := Tick(target, now)
	want := Remaining{Days: 1, Hours: 1, Minutes: 1, Seconds: 30}
	if state.Expired || state.Remaining != want {
		t.Fatalf("Tick = %+v, want %+v", state, want)
	}
}

func TestValidate(t *testing.T) {
	now := time.UnixMilli(5000)

	if err := Validate(time.UnixMilli(5001), now); err != nil {
		t.Fatalf("Validate(future) = %v", err)
	}
	for _, target := range []int64{5000, 4999} {
		err := Validate(time.UnixMilli(target), now)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Validate(%d) = %v, want ErrInvalidInput", target, err)
		}
		if err.Error() != "Please select a future date and time" {
			t.Fatalf("unexpected message %q", err.Error())
		}
	}
}
