// Package network implements connectivity monitors.
package network

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/example/finq/internal/ports/secondary"
)

// subscribers fans a reading change out to registered callbacks.
type subscribers struct {
	mu      sync.Mutex
	next    int
	offline bool
	fns     map[int]func(offline bool)
}

func newSubscribers(offline bool) *subscribers {
	return &subscribers{offline: offline, fns: make(map[int]func(bool))}
}

func (s *subscribers) current() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offline
}

func (s *subscribers) subscribe(fn func(offline bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

// set records a reading and notifies subscribers if it changed. Callbacks
// run outside the lock.
func (s *subscribers) set(offline bool) bool {
	s.mu.Lock()
	if s.offline == offline {
		s.mu.Unlock()
		return false
	}
	s.offline = offline
	fns := make([]func(bool), 0, len(s.fns))
	for _, fn := range s.fns {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(offline)
	}
	return true
}

// ManualMonitor is a ConnectivityMonitor whose reading is set explicitly,
// for forced offline mode and tests.
type ManualMonitor struct {
	subs *subscribers
}

// NewManualMonitor creates a monitor with the given initial reading.
func NewManualMonitor(offline bool) *ManualMonitor {
	return &ManualMonitor{subs: newSubscribers(offline)}
}

// Offline returns the current reading.
func (m *ManualMonitor) Offline() bool { return m.subs.current() }

// Subscribe registers fn for reading changes.
func (m *ManualMonitor) Subscribe(fn func(offline bool)) func() { return m.subs.subscribe(fn) }

// SetOffline changes the reading.
func (m *ManualMonitor) SetOffline(offline bool) { m.subs.set(offline) }

// HealthCheck reports whether the backend is reachable. A nil error means
// online.
type HealthCheck func(ctx context.Context) error

// HealthMonitor derives reachability from periodic health checks: the
// network is online only when the check succeeds.
type HealthMonitor struct {
	check    HealthCheck
	interval time.Duration
	logger   *slog.Logger
	subs     *subscribers
}

// NewHealthMonitor creates a monitor running check. It starts offline
// until the first check succeeds.
func NewHealthMonitor(check HealthCheck, interval time.Duration, logger *slog.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthMonitor{
		check:    check,
		interval: interval,
		logger:   logger,
		subs:     newSubscribers(true),
	}
}

// Offline returns the last reading.
func (p *HealthMonitor) Offline() bool { return p.subs.current() }

// Subscribe registers fn for reading changes.
func (p *HealthMonitor) Subscribe(fn func(offline bool)) func() { return p.subs.subscribe(fn) }

// Check runs one health check and records the reading. A check cut short
// by ctx says nothing about the network, so the previous reading is kept.
func (p *HealthMonitor) Check(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	err := p.check(checkCtx)
	if ctx.Err() != nil {
		return p.subs.current()
	}
	if err != nil {
		p.logger.Debug("health check failed", "error", err)
	}

	offline := err != nil
	if p.subs.set(offline) {
		p.logger.Info("connectivity changed", "offline", offline)
	}
	return offline
}

// Start checks immediately and then on every interval in a background
// goroutine until ctx is done. It returns immediately.
func (p *HealthMonitor) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			p.Check(ctx)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

var (
	_ secondary.ConnectivityMonitor = (*ManualMonitor)(nil)
	_ secondary.ConnectivityMonitor = (*HealthMonitor)(nil)
)
