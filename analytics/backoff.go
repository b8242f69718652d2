package analytics

import (
	"math"
	"math/rand/v2"
	"time"
)

// backoff computes retry delays: exponential growth from initial, capped at
// max, with up to 25% jitter to avoid synchronized retry bursts.
type backoff struct {
	initial    time.Duration
	max        time.Duration
	multiplier float64
}

func defaultBackoff() backoff {
	return backoff{
		initial:    100 * time.Millisecond,
		max:        2 * time.Second,
		multiplier: 2.0,
	}
}

// delay returns the wait before retry number attempt (1-based).
func (b backoff) delay(attempt int) time.Duration {
	d := time.Duration(float64(b.initial) * math.Pow(b.multiplier, float64(attempt-1)))
	if d > b.max {
		d = b.max
	}
	if j := int64(d / 4); j > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		d += time.Duration(rand.Int64N(j))
	}
	return d
}
