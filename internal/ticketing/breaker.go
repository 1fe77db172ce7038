// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/metrics"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

// BreakerSettings configures WithCircuitBreaker.
type BreakerSettings struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state counting window
	Timeout      time.Duration // open duration before half-open
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings opens after 60% failures over at least 10 fetches
// and probes again after 2 minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

type breakerConnector struct {
	inner Connector
	cb    *gobreaker.CircuitBreaker[[]models.LiteEventSerieWrapper]
	name  string
}

type breakerSessionConnector struct {
	*breakerConnector
	session SessionConnector
}

// WithCircuitBreaker wraps c so GetEventsSeries fails fast with a
// ConnectivityError while the vendor keeps failing. Only connectivity and
// rate-limit failures count: bad credentials or odd data do not open the
// circuit. name labels the breaker metrics, usually the connection name.
func WithCircuitBreaker(c Connector, name string, s BreakerSettings) Connector {
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]models.LiteEventSerieWrapper](gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= s.FailureRatio
			if shouldTrip {
				logging.Warn().
					Str("breaker", name).
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening circuit")
			}
			return shouldTrip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !connerr.IsRetryable(err)
		},
	})

	bc := &breakerConnector{inner: c, cb: cb, name: name}
	if sc, ok := c.(SessionConnector); ok {
		return &breakerSessionConnector{breakerConnector: bc, session: sc}
	}
	return bc
}

func (b *breakerConnector) Vendor() Vendor { return b.inner.Vendor() }

// TestConnection bypasses the breaker unless it is open, in which case the
// vendor counts as unreachable.
func (b *breakerConnector) TestConnection(ctx context.Context) (bool, error) {
	if b.cb.State() == gobreaker.StateOpen {
		logging.Ctx(ctx).Info().Str("breaker", b.name).Msg("[CIRCUIT BREAKER] Circuit open, connection reported down")
		return false, nil
	}
	return b.inner.TestConnection(ctx)
}

func (b *breakerConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	result, err := b.cb.Execute(func() ([]models.LiteEventSerieWrapper, error) {
		return b.inner.GetEventsSeries(ctx, from, to)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
			logging.Ctx(ctx).Warn().Err(err).Str("breaker", b.name).Msg("[CIRCUIT BREAKER] Request rejected")
			return nil, fail(b.Vendor(), opGetEvents, connerr.NewConnectivityError("circuit breaker open", err))
		}
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		counts := b.cb.Counts()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(float64(counts.ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(b.name).Set(0)
	return result, nil
}

// Unwrap returns the wrapped connector.
func (b *breakerConnector) Unwrap() Connector { return b.inner }

func (b *breakerSessionConnector) Login(ctx context.Context) error { return b.session.Login(ctx) }

func (b *breakerSessionConnector) Logout(ctx context.Context) error { return b.session.Logout(ctx) }

func (b *breakerSessionConnector) State() vendorapi.AuthState { return b.session.State() }

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
