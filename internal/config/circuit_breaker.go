package config

import (
	"time"

	"github.com/sony/gobreaker"

	"github.com/robertarktes/park-bookings/internal/observability"
)

// NewCircuitBreaker opens after three consecutive failures and probes again
// after timeout.
func NewCircuitBreaker(name string, timeout time.Duration, logger observability.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
}
