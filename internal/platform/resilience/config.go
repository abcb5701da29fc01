package resilience

import (
	"fmt"
	"time"
)

const (
	defaultFailureThreshold = 5
	defaultOpenTimeout      = 15 * time.Second
	defaultHalfOpenMaxReq   = 2
)

// CircuitBreakerConfig configures the breaker guarding one remote dependency. Unset limits take
// the package defaults.
type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

// NewCircuitBreakerFromConfig returns nil when the breaker is disabled. A nil breaker allows everything.
func NewCircuitBreakerFromConfig(cfg CircuitBreakerConfig) *CircuitBreaker {
	if !cfg.Enabled {
		return nil
	}
	cfg = cfg.withDefaults()
	return NewCircuitBreaker(cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
}

func (cfg CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaultFailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaultOpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaultHalfOpenMaxReq
	}
	return cfg
}

// String describes the effective settings for startup logs.
func (cfg CircuitBreakerConfig) String() string {
	if !cfg.Enabled {
		return "disabled"
	}
	cfg = cfg.withDefaults()
	return fmt.Sprintf("failures=%d open=%s half_open=%d", cfg.FailureThreshold, cfg.OpenTimeout, cfg.HalfOpenMaxReq)
}
