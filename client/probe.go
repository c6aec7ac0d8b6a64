package client

import (
	"context"
	"log"
	"sync"
	"time"
)

// StatusChecker is the single capability the probe needs from the API client.
type StatusChecker interface {
	Status(ctx context.Context) (bool, error)
}

// ProbeConfig makes the polling policy explicit: how often to check, how long
// to keep blocking on a flaky health endpoint, and what to do once that budget
// is spent.
type ProbeConfig struct {
	// Interval between checks. Defaults to 10s.
	Interval time.Duration
	// GraceTimeout is the window during which failing checks keep the probe
	// not-ready. Defaults to 15s.
	GraceTimeout time.Duration
	// AssumeReadyAfterGrace flips the probe to ready (flagged degraded) once
	// the grace window elapses without a successful check. This trades a
	// possible cold model for never locking the caller out indefinitely.
	AssumeReadyAfterGrace bool
}

// DefaultProbeConfig keeps checks frequent enough to notice a model coming up
// without hammering the status endpoint.
func DefaultProbeConfig() ProbeConfig {
	return ProbeConfig{
		Interval:              10 * time.Second,
		GraceTimeout:          15 * time.Second,
		AssumeReadyAfterGrace: true,
	}
}

// ProbeState is a point-in-time snapshot. Ready and Degraded together encode
// the difference between "the backend confirmed readiness" and "we gave up
// waiting and assumed it".
type ProbeState struct {
	Ready    bool
	Degraded bool
	Checking bool
}

// ReadinessProbe polls the status endpoint until the model reports ready or
// the degraded policy kicks in.
type ReadinessProbe struct {
	checker StatusChecker
	cfg     ProbeConfig

	mu    sync.RWMutex
	state ProbeState
}

// NewReadinessProbe creates a probe; zero config fields get the defaults.
func NewReadinessProbe(checker StatusChecker, cfg ProbeConfig) *ReadinessProbe {
	if cfg.Interval <= 0 {
		cfg.Interval = 10 * time.Second
	}
	if cfg.GraceTimeout <= 0 {
		cfg.GraceTimeout = 15 * time.Second
	}
	return &ReadinessProbe{checker: checker, cfg: cfg}
}

// State returns the current snapshot.
func (p *ReadinessProbe) State() ProbeState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Run checks immediately, then on every tick, until the probe becomes ready or
// the context is cancelled. It returns the final snapshot; a cancelled context
// is the only way out while the backend stays down and the degraded policy is
// off.
func (p *ReadinessProbe) Run(ctx context.Context) ProbeState {
	p.setChecking(true)
	p.poll(ctx)
	// Clear the in-flight flag before taking the snapshot so the returned
	// state never claims a check is still running.
	p.setChecking(false)
	return p.State()
}

func (p *ReadinessProbe) poll(ctx context.Context) {
	start := time.Now()
	if p.check(ctx, start) {
		return
	}

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("PROBE: context cancelled, stopping readiness checks.")
			return
		case <-ticker.C:
			if p.check(ctx, start) {
				return
			}
		}
	}
}

// check performs one status call and applies the degraded policy. It reports
// whether polling can stop.
func (p *ReadinessProbe) check(ctx context.Context, start time.Time) bool {
	ready, err := p.checker.Status(ctx)
	if err == nil && ready {
		p.setReady(false)
		return true
	}
	if err != nil {
		log.Printf("PROBE: status check failed: %v", err)
	}

	// Not ready yet. Only assume readiness once the grace window has fully
	// elapsed, never before.
	if p.cfg.AssumeReadyAfterGrace && time.Since(start) >= p.cfg.GraceTimeout {
		log.Printf("PROBE: no successful check within %s, assuming ready (degraded).", p.cfg.GraceTimeout)
		p.setReady(true)
		return true
	}
	return false
}

func (p *ReadinessProbe) setReady(degraded bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Ready = true
	p.state.Degraded = degraded
}

func (p *ReadinessProbe) setChecking(checking bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Checking = checking
}
