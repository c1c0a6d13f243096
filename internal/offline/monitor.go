// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// =============================================================================
// STATUS
// =============================================================================

// Status is the last observed reachability of the backend.
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
)

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// =============================================================================
// PROBERS
// =============================================================================

// Prober performs one reachability check.
type Prober interface {
	Probe(ctx context.Context) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context) error

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context) error {
	return f(ctx)
}

// DialProber checks reachability by opening a TCP connection.
type DialProber struct {
	Address string
	Timeout time.Duration
}

// NewDialProber creates a prober for the host of baseURL.
func NewDialProber(baseURL string, timeout time.Duration) (*DialProber, error) {
	addr, err := ProbeAddress(baseURL)
	if err != nil {
		return nil, err
	}
	return &DialProber{Address: addr, Timeout: timeout}, nil
}

// Probe dials the address and closes the connection immediately.
func (p *DialProber) Probe(ctx context.Context) error {
	d := net.Dialer{Timeout: p.Timeout}
	conn, err := d.DialContext(ctx, "tcp", p.Address)
	if err != nil {
		return err
	}
	return conn.Close()
}

// =============================================================================
// MONITOR
// =============================================================================

// Monitor probes periodically and reports status transitions.
//
// The first observation is reported only when it is Offline: being online at
// startup is the expected case and says nothing new. After that, every change
// between Online and Offline is reported exactly once.
type Monitor struct {
	interval time.Duration
	onChange func(Status)
	logger   zerolog.Logger

	mu     sync.Mutex
	prober Prober
	status Status
	cancel context.CancelFunc
	done   chan struct{}
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) MonitorOption {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// NewMonitor creates a monitor. onChange runs on the monitor goroutine.
func NewMonitor(prober Prober, interval time.Duration, onChange func(Status), opts ...MonitorOption) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	m := &Monitor{
		interval: interval,
		onChange: onChange,
		logger:   zerolog.Nop(),
		prober:   prober,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Status returns the last observed status.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetProber replaces the prober, e.g. after the base URL changed. The next
// check uses it; the last status is kept so only real transitions report.
func (m *Monitor) SetProber(p Prober) {
	m.mu.Lock()
	m.prober = p
	m.mu.Unlock()
}

// Check probes once and reports a transition if there is one.
func (m *Monitor) Check(ctx context.Context) Status {
	m.mu.Lock()
	prober := m.prober
	m.mu.Unlock()

	next := StatusOnline
	if prober != nil {
		if err := prober.Probe(ctx); err != nil {
			if ctx.Err() != nil {
				return m.Status()
			}
			m.logger.Debug().Err(err).Msg("backend probe failed")
			next = StatusOffline
		}
	}

	m.mu.Lock()
	prev := m.status
	m.status = next
	m.mu.Unlock()

	report := prev != next && (prev != StatusUnknown || next == StatusOffline)
	if report {
		m.logger.Info().Str("from", prev.String()).Str("to", next.String()).Msg("connectivity changed")
		if m.onChange != nil {
			m.onChange(next)
		}
	}
	return next
}

// Start checks immediately and then every interval until Stop or ctx ends.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	done := m.done
	m.mu.Unlock()

	go func() {
		defer close(done)

		m.Check(ctx)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

// Stop ends monitoring and waits for the goroutine to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
