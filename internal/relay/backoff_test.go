package relay

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextDelayGrowsAndCaps(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: 100 * time.Millisecond, Multiplier: 2, MaxDelay: time.Second}

	assert.Equal(t, 100*time.Millisecond, NextDelay(cfg, 0, nil))
	assert.Equal(t, 100*time.Millisecond, NextDelay(cfg, 1, nil))
	assert.Equal(t, 200*time.Millisecond, NextDelay(cfg, 2, nil))
	assert.Equal(t, 800*time.Millisecond, NextDelay(cfg, 4, nil))
	assert.Equal(t, time.Second, NextDelay(cfg, 10, nil))
}

func TestNextDelayJitterBounds(t *testing.T) {
	cfg := BackoffConfig{InitialDelay: time.Second, Multiplier: 1, Jitter: true}
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		d := NextDelay(cfg, 3, rng)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.Less(t, d, 1500*time.Millisecond)
	}
	assert.Equal(t, 500*time.Millisecond, NextDelay(cfg, 1, nil))
}

func TestNextDelayDisabled(t *testing.T) {
	assert.Zero(t, NextDelay(BackoffConfig{}, 5, nil))
}

func TestSleepStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour, nil))
	assert.True(t, sleep(context.Background(), time.Millisecond, nil))
}

func TestSleepEndsOnWake(t *testing.T) {
	wake := make(chan struct{}, 1)
	wake <- struct{}{}
	start := time.Now()
	assert.True(t, sleep(context.Background(), time.Hour, wake))
	assert.Less(t, time.Since(start), time.Second)
}
