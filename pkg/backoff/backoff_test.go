package backoff

import (
	"math/rand"
	"testing"
	"time"
)

func TestExponentialJitter_GrowsAndCaps(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base, max := time.Second, time.Minute

	prevHigh := time.Duration(0)
	for attempt := 1; attempt <= 10; attempt++ {
		d := ExponentialJitter(base, max, attempt, rng)

		nominal := base << (attempt - 1)
		if nominal > max {
			nominal = max
		}
		low := time.Duration(float64(nominal) * 0.8)
		high := time.Duration(float64(nominal) * 1.2)
		if d < low || d > high {
			t.Fatalf("attempt %d: %v outside [%v, %v]", attempt, d, low, high)
		}
		if high < prevHigh {
			t.Fatalf("attempt %d: window shrank", attempt)
		}
		prevHigh = high
	}
}

func TestExponentialJitter_NonPositiveAttempt(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	d := ExponentialJitter(time.Second, time.Minute, 0, rng)
	if d < 800*time.Millisecond || d > 1200*time.Millisecond {
		t.Fatalf("attempt 0 should behave like attempt 1, got %v", d)
	}
}

func TestExponentialJitter_ZeroBase(t *testing.T) {
	if d := ExponentialJitter(0, time.Minute, 3, nil); d != 0 {
		t.Fatalf("zero base must stay zero, got %v", d)
	}
}

func TestExponentialJitter_NilRNG(t *testing.T) {
	d := ExponentialJitter(time.Second, time.Minute, 2, nil)
	if d < 1600*time.Millisecond || d > 2400*time.Millisecond {
		t.Fatalf("attempt 2 of 1s base out of range: %v", d)
	}
}
