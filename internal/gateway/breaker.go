package gateway

import (
	"sync"
	"time"

	apierrors "github.com/Hamidon94/ultra.dogwalking-sub000/internal/errors"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/models"
	"github.com/Hamidon94/ultra.dogwalking-sub000/internal/monitoring"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerConfig holds configuration for the per-category circuit breakers
// guarding handler dispatch.
type BreakerConfig struct {
	// MaxRequests is the number of requests allowed through while half-open.
	MaxRequests uint32
	// Interval is the cyclic period over which closed-state counts reset.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// FailureThreshold is the consecutive-failure count that opens the circuit.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns the default breaker configuration.
func DefaultBreakerConfig() *BreakerConfig {
	return &BreakerConfig{
		MaxRequests:      5,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerManager keeps one circuit breaker per endpoint category. Handlers
// of one category share a backing resource, so they trip together.
type BreakerManager struct {
	breakers map[string]*gobreaker.CircuitBreaker
	config   *BreakerConfig
	mu       sync.RWMutex
}

// NewBreakerManager creates a breaker manager.
func NewBreakerManager(config *BreakerConfig) *BreakerManager {
	if config == nil {
		config = DefaultBreakerConfig()
	}
	return &BreakerManager{
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		config:   config,
	}
}

// Execute runs fn under the category's breaker. Domain errors from the
// handler do not count as failures; only internal faults trip the circuit.
// An open circuit surfaces as UPSTREAM_UNAVAILABLE.
func (bm *BreakerManager) Execute(category string, fn func() (*models.Envelope, *apierrors.APIError)) (*models.Envelope, *apierrors.APIError) {
	cb := bm.get(category)

	result, err := cb.Execute(func() (interface{}, error) {
		envelope, apiErr := fn()
		if apiErr != nil && apiErr.HTTPStatus >= 500 {
			return apiErr, apiErr
		}
		return dispatchResult{envelope: envelope, apiErr: apiErr}, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, apierrors.ErrUpstreamUnavailable
		}
		if apiErr, ok := err.(*apierrors.APIError); ok {
			return nil, apiErr
		}
		return nil, apierrors.NewInternal()
	}

	r := result.(dispatchResult)
	return r.envelope, r.apiErr
}

type dispatchResult struct {
	envelope *models.Envelope
	apiErr   *apierrors.APIError
}

func (bm *BreakerManager) get(category string) *gobreaker.CircuitBreaker {
	bm.mu.RLock()
	cb, exists := bm.breakers[category]
	bm.mu.RUnlock()
	if exists {
		return cb
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()
	if cb, exists = bm.breakers[category]; exists {
		return cb
	}

	settings := gobreaker.Settings{
		Name:        category,
		MaxRequests: bm.config.MaxRequests,
		Interval:    bm.config.Interval,
		Timeout:     bm.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bm.config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("category", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state change")
			monitoring.SetCircuitBreakerState(name, stateValue(to))
		},
	}

	cb = gobreaker.NewCircuitBreaker(settings)
	bm.breakers[category] = cb
	return cb
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 0.5
	default:
		return 0
	}
}
