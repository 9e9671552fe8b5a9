// Package resilience provides the per-downstream-service circuit breaker
// guarding the gateway's outbound calls.
package resilience

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// BreakerConfig holds circuit breaker tuning
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the circuit for a service.
	FailureThreshold int
	// BreakDuration is how long an opened circuit rejects calls before
	// allowing a half-open probe.
	BreakDuration time.Duration
}

// DefaultBreakerConfig returns the default breaker tuning
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		BreakDuration:    10 * time.Second,
	}
}

// serviceState tracks one downstream service. Each service carries its own
// lock so that callers of different services never contend.
type serviceState struct {
	mu           sync.Mutex
	failureCount int
	openUntil    time.Time
	// probing is set while the single half-open probe is in flight;
	// further calls are rejected until the probe reports its outcome.
	probing bool
}

// Breaker is a failure-counting circuit breaker keyed by service name.
// A single instance is shared process-wide; all state lives in memory and
// resets on restart.
//
// Allow is advisory: the breaker never performs calls itself, and the
// caller must pair every allowed attempt with exactly one ReportSuccess or
// ReportFailure, including on cancellation paths.
type Breaker struct {
	configMu sync.RWMutex
	config   BreakerConfig

	logger *zap.Logger
	states sync.Map // service name -> *serviceState

	// now is injectable for tests
	now func() time.Time

	onStateChange func(service string, open bool)
}

// NewBreaker creates a circuit breaker with the given tuning
func NewBreaker(config BreakerConfig, logger *zap.Logger) *Breaker {
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	if config.BreakDuration <= 0 {
		config.BreakDuration = DefaultBreakerConfig().BreakDuration
	}
	return &Breaker{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// OnStateChange registers a callback invoked whenever a service's circuit
// opens or closes. Used to keep metrics in sync; must not block.
func (b *Breaker) OnStateChange(fn func(service string, open bool)) {
	b.onStateChange = fn
}

// UpdateConfig swaps the breaker tuning at runtime. Existing open circuits
// keep their current deadline; new trips use the new values.
func (b *Breaker) UpdateConfig(config BreakerConfig) {
	if config.FailureThreshold <= 0 || config.BreakDuration <= 0 {
		return
	}
	b.configMu.Lock()
	b.config = config
	b.configMu.Unlock()
	b.logger.Info("circuit breaker tuning updated",
		zap.Int("failure_threshold", config.FailureThreshold),
		zap.Duration("break_duration", config.BreakDuration),
	)
}

func (b *Breaker) tuning() BreakerConfig {
	b.configMu.RLock()
	defer b.configMu.RUnlock()
	return b.config
}

func (b *Breaker) state(service string) *serviceState {
	if s, ok := b.states.Load(service); ok {
		return s.(*serviceState)
	}
	s, _ := b.states.LoadOrStore(service, &serviceState{})
	return s.(*serviceState)
}

// Allow reports whether a call to the service may be attempted. While the
// circuit is open it returns false. Once the break duration has elapsed the
// open deadline is cleared and the call is allowed through as the half-open
// probe; its outcome decides whether the circuit closes or re-opens.
func (b *Breaker) Allow(service string) bool {
	s := b.state(service)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.probing {
		return false
	}

	if s.openUntil.IsZero() {
		return true
	}

	if b.now().Before(s.openUntil) {
		return false
	}

	// Break duration elapsed: clear the deadline so this caller becomes
	// the single half-open probe. The failure count stays at the
	// threshold, so a failed probe re-opens the circuit immediately.
	s.openUntil = time.Time{}
	s.probing = true
	b.logger.Info("circuit half-open, allowing probe",
		zap.String("service", service),
	)
	return true
}

// ReportSuccess records a successful call, closing the circuit and
// resetting the failure count.
func (b *Breaker) ReportSuccess(service string) {
	s := b.state(service)

	cfg := b.tuning()

	s.mu.Lock()
	wasTripped := s.failureCount >= cfg.FailureThreshold
	s.failureCount = 0
	s.openUntil = time.Time{}
	s.probing = false
	s.mu.Unlock()

	if wasTripped {
		b.logger.Info("circuit closed", zap.String("service", service))
		b.notify(service, false)
	}
}

// ReportFailure records a failed call. Reaching the failure threshold opens
// the circuit for the configured break duration. The counter is left at the
// threshold so a failed half-open probe re-opens the circuit at once.
func (b *Breaker) ReportFailure(service string) {
	s := b.state(service)

	cfg := b.tuning()

	s.mu.Lock()
	s.probing = false
	if s.failureCount < cfg.FailureThreshold {
		s.failureCount++
	}
	tripped := s.failureCount >= cfg.FailureThreshold
	if tripped {
		s.openUntil = b.now().Add(cfg.BreakDuration)
	}
	openUntil := s.openUntil
	failures := s.failureCount
	s.mu.Unlock()

	if tripped {
		b.logger.Warn("circuit opened",
			zap.String("service", service),
			zap.Int("failures", failures),
			zap.Time("open_until", openUntil),
		)
		b.notify(service, true)
	}
}

func (b *Breaker) notify(service string, open bool) {
	if b.onStateChange != nil {
		b.onStateChange(service, open)
	}
}

// ServiceSnapshot is a point-in-time view of one service's breaker state,
// exposed for health reporting and metrics.
type ServiceSnapshot struct {
	Service      string    `json:"service"`
	FailureCount int       `json:"failureCount"`
	Open         bool      `json:"open"`
	OpenUntil    time.Time `json:"openUntil,omitempty"`
}

// Snapshot returns the current state of every service the breaker has seen
func (b *Breaker) Snapshot() []ServiceSnapshot {
	var out []ServiceSnapshot
	now := b.now()
	b.states.Range(func(key, value any) bool {
		s := value.(*serviceState)
		s.mu.Lock()
		out = append(out, ServiceSnapshot{
			Service:      key.(string),
			FailureCount: s.failureCount,
			Open:         !s.openUntil.IsZero() && now.Before(s.openUntil),
			OpenUntil:    s.openUntil,
		})
		s.mu.Unlock()
		return true
	})
	return out
}
