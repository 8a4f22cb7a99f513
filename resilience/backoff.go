package resilience

import (
	"math"
	"math/rand/v2"
	"time"
)

// BackoffConfig holds the parameters of the exponential backoff policy.
type BackoffConfig struct {
	// InitialDelay is the delay before the first retry.
	// Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor.
	// Default: 2.0
	Multiplier float64

	// Jitter scales each delay by a uniform random factor in [0.5, 1.0]
	// to avoid synchronized retry storms.
	Jitter bool
}

func (c BackoffConfig) withDefaults() BackoffConfig {
	if c.InitialDelay <= 0 {
		c.InitialDelay = 100 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	return c
}

// Delay computes the backoff delay for the given attempt (1-based):
// min(initial * multiplier^(attempt-1), max), optionally jittered.
// Pure apart from the jitter draw; safe for concurrent use.
func Delay(attempt int, cfg BackoffConfig) time.Duration {
	cfg = cfg.withDefaults()

	if attempt < 1 {
		attempt = 1
	}

	multiplier := math.Pow(cfg.Multiplier, float64(attempt-1))
	delay := time.Duration(float64(cfg.InitialDelay) * multiplier)

	// Overflow or cap
	if delay <= 0 || delay > cfg.MaxDelay {
		delay = cfg.MaxDelay
	}

	if cfg.Jitter {
		// Uniform factor in [0.5, 1.0).
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		factor := 0.5 + rand.Float64()/2
		delay = time.Duration(float64(delay) * factor)
	}

	return delay
}
