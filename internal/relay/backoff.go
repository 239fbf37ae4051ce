package relay

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffConfig defines reconnect backoff behaviour.
type BackoffConfig struct {
	InitialDelay time.Duration `mapstructure:"initial_delay" toml:"initial_delay"`
	Multiplier   float64       `mapstructure:"multiplier" toml:"multiplier"`
	MaxDelay     time.Duration `mapstructure:"max_delay" toml:"max_delay"`
	Jitter       bool          `mapstructure:"jitter" toml:"jitter"`
}

// DefaultBackoff starts at one second and doubles up to thirty.
func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		InitialDelay: time.Second,
		Multiplier:   2.0,
		MaxDelay:     30 * time.Second,
		Jitter:       true,
	}
}

// NextDelay returns the retry delay for attempt N (1-based).
func NextDelay(cfg BackoffConfig, attempt int, rng *rand.Rand) time.Duration {
	if cfg.InitialDelay <= 0 {
		return 0
	}
	delay := float64(cfg.InitialDelay)
	if attempt > 1 {
		m := cfg.Multiplier
		if m < 1.0 {
			m = 1.0
		}
		delay *= math.Pow(m, float64(attempt-1))
	}
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		f := 0.5
		if rng != nil {
			f = 0.5 + rng.Float64()
		}
		delay *= f
	}
	return time.Duration(delay)
}

// sleep waits d, until wake fires or until ctx is done. It reports whether
// the caller should carry on, which is false only once ctx is done.
func sleep(ctx context.Context, d time.Duration, wake <-chan struct{}) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-wake:
		return true
	}
}
