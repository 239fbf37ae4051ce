package relay

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog/log"
)

// Prober reports whether the network is reachable.
type Prober func(ctx context.Context) bool

// TCPProber dials the host of bridge.
func TCPProber(bridge string, timeout time.Duration) Prober {
	addr := bridgeAddr(bridge)
	return func(ctx context.Context) bool {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}
}

// ProbeMonitor probes the network on a schedule and calls its listeners
// whenever the network comes back after being unreachable.
type ProbeMonitor struct {
	probe     Prober
	interval  time.Duration
	scheduler *gocron.Scheduler

	mu        sync.Mutex
	reachable bool
	listeners []func()
}

// NewProbeMonitor returns a stopped monitor. The network is assumed
// reachable until a probe says otherwise.
func NewProbeMonitor(probe Prober, interval time.Duration) *ProbeMonitor {
	return &ProbeMonitor{
		probe:     probe,
		interval:  interval,
		scheduler: gocron.NewScheduler(time.UTC),
		reachable: true,
	}
}

// OnOnline registers fn to run when the network returns.
func (m *ProbeMonitor) OnOnline(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

// Start schedules the probe.
func (m *ProbeMonitor) Start() error {
	if _, err := m.scheduler.Every(m.interval).SingletonMode().Do(m.check); err != nil {
		return err
	}
	m.scheduler.StartAsync()
	return nil
}

// Stop cancels the schedule.
func (m *ProbeMonitor) Stop() {
	m.scheduler.Stop()
}

func (m *ProbeMonitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), m.interval)
	defer cancel()
	up := m.probe(ctx)

	m.mu.Lock()
	back := up && !m.reachable
	m.reachable = up
	listeners := append([]func(){}, m.listeners...)
	m.mu.Unlock()

	if !back {
		return
	}
	log.Info().Str("component", "netmon").Msg("network back online")
	for _, fn := range listeners {
		fn()
	}
}

func bridgeAddr(bridge string) string {
	u, err := url.Parse(bridge)
	if err != nil {
		return bridge
	}
	if u.Port() != "" {
		return u.Host
	}
	switch u.Scheme {
	case "http", "ws":
		return net.JoinHostPort(u.Hostname(), "80")
	default:
		return net.JoinHostPort(u.Hostname(), "443")
	}
}
