package sync

import (
	"context"
	"net/http"
	"time"

	"github.com/panhaneath12/sweet-delights-pos-system/internal/logging"
)

// Probe reports whether the remote service is currently reachable.
type Probe func(ctx context.Context) bool

// Monitor is the connectivity signal: it probes the remote service on an
// interval and feeds online/offline transitions to the orchestrator.
type Monitor struct {
	orch     *Orchestrator
	probe    Probe
	interval time.Duration
	stopCh   chan struct{}
}

// NewMonitor creates a Monitor. A zero interval defaults to 30 seconds.
func NewMonitor(orch *Orchestrator, probe Probe, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Monitor{
		orch:     orch,
		probe:    probe,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start probes once immediately and then on every tick until the context is
// done or Stop is called. Runs on the caller's goroutine.
func (m *Monitor) Start(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Stop terminates the probe loop.
func (m *Monitor) Stop() {
	close(m.stopCh)
}

// Check runs one probe and pushes the result to the orchestrator. It is
// also used at startup, before the probe loop exists, so first-run
// initialization sees real connectivity instead of the offline default.
func (m *Monitor) Check(ctx context.Context) {
	online := m.probe(ctx)
	if online != m.orch.Online() {
		logging.Debug("connectivity probe", map[string]interface{}{"online": online})
	}
	m.orch.SetOnline(ctx, online)
}

// HTTPProbe builds a Probe that issues a HEAD request against healthURL and
// treats any response, even an error status, as reachability.
func HTTPProbe(healthURL string) Probe {
	client := &http.Client{Timeout: 5 * time.Second}

	return func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, healthURL, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return true
	}
}
