package relay

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeMonitorFiresOnRecovery(t *testing.T) {
	var up atomic.Bool
	up.Store(true)
	m := NewProbeMonitor(func(context.Context) bool { return up.Load() }, time.Second)

	var fired atomic.Int32
	m.OnOnline(func() { fired.Add(1) })

	m.check()
	assert.Zero(t, fired.Load(), "already online")

	up.Store(false)
	m.check()
	m.check()
	assert.Zero(t, fired.Load())

	up.Store(true)
	m.check()
	m.check()
	assert.Equal(t, int32(1), fired.Load())
}

func TestProbeMonitorSchedules(t *testing.T) {
	var calls atomic.Int32
	m := NewProbeMonitor(func(context.Context) bool { calls.Add(1); return true }, 20*time.Millisecond)
	require.NoError(t, m.Start())
	defer m.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)
}

func TestTCPProber(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()

	probe := TCPProber("http://"+addr, time.Second)
	assert.True(t, probe(context.Background()))

	require.NoError(t, ln.Close())
	assert.False(t, probe(context.Background()))
}
