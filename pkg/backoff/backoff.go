package backoff

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialJitter returns base * 2^(attempt-1) capped at max, with
// +/- 20% jitter. rng may be nil, in which case a time-seeded source is
// used; tests pass a fixed seed.
func ExponentialJitter(base, max time.Duration, attempt int, rng *rand.Rand) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	mul := math.Pow(2, float64(attempt-1))
	d := min(time.Duration(float64(base)*mul), max)
	if d <= 0 {
		return 0
	}

	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	j := time.Duration(float64(d) * 0.2)
	if j == 0 {
		return d
	}
	return d - j + time.Duration(rng.Int63n(int64(2*j)))
}
