// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

// stubConnector returns canned results and records how it was called.
type stubConnector struct {
	vendor Vendor
	series []models.LiteEventSerieWrapper
	err    error
	up     bool
	delay  time.Duration

	mu           sync.Mutex
	calls        int
	connections  []string
	correlations []string
}

func (s *stubConnector) Vendor() Vendor { return s.vendor }

func (s *stubConnector) TestConnection(context.Context) (bool, error) { return s.up, nil }

func (s *stubConnector) GetEventsSeries(ctx context.Context, _ time.Time, _ *time.Time) ([]models.LiteEventSerieWrapper, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	conn, _ := logging.ConnectionFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.connections = append(s.connections, conn)
	s.correlations = append(s.correlations, logging.CorrelationIDFromContext(ctx))
	if s.err != nil {
		return nil, connerr.Wrap(string(s.vendor), opGetEvents, s.err)
	}
	return s.series, nil
}

func (s *stubConnector) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubSessionConnector struct {
	stubConnector
	state vendorapi.AuthState
}

func (s *stubSessionConnector) Login(context.Context) error {
	s.state = vendorapi.StateAuthenticated
	return nil
}

func (s *stubSessionConnector) Logout(context.Context) error {
	s.state = vendorapi.StateUnauthenticated
	return nil
}

func (s *stubSessionConnector) State() vendorapi.AuthState { return s.state }

func testBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  3,
		FailureRatio: 0.5,
	}
}

func TestCircuitBreakerTripsOnConnectivityErrors(t *testing.T) {
	stub := &stubConnector{vendor: Dice, up: true, err: connerr.NewConnectivityError("dial tcp: refused", nil)}
	c := WithCircuitBreaker(stub, "test-trip", testBreakerSettings())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.GetEventsSeries(ctx, windowFrom, nil); err == nil {
			t.Fatalf("call %d: expected error", i)
		}
	}
	if stub.callCount() != 3 {
		t.Fatalf("inner calls = %d, want 3", stub.callCount())
	}

	_, err := c.GetEventsSeries(ctx, windowFrom, nil)
	checkConnectorError(t, err, Dice, connerr.KindConnectivity)
	if stub.callCount() != 3 {
		t.Error("open circuit must not reach the vendor")
	}

	up, err := c.TestConnection(ctx)
	if up || err != nil {
		t.Errorf("TestConnection() = %v, %v; want false, nil while open", up, err)
	}
}

func TestCircuitBreakerIgnoresNonRetryableErrors(t *testing.T) {
	stub := &stubConnector{vendor: Billetweb, err: connerr.NewAuthenticationError("bad key", nil)}
	c := WithCircuitBreaker(stub, "test-auth", testBreakerSettings())

	for i := 0; i < 5; i++ {
		_, err := c.GetEventsSeries(context.Background(), windowFrom, nil)
		checkConnectorError(t, err, Billetweb, connerr.KindAuthentication)
	}
	if stub.callCount() != 5 {
		t.Errorf("inner calls = %d, want 5: credential errors must not open the circuit", stub.callCount())
	}
}

func TestCircuitBreakerPassesThrough(t *testing.T) {
	series := []models.LiteEventSerieWrapper{{Serie: models.LiteEventSerie{ExternalID: "s1"}}}
	stub := &stubConnector{vendor: Mapado, up: true, series: series}
	c := WithCircuitBreaker(stub, "test-pass", testBreakerSettings())

	got, err := c.GetEventsSeries(context.Background(), windowFrom, nil)
	if err != nil {
		t.Fatalf("GetEventsSeries() error = %v", err)
	}
	checkStrings(t, "serie ids", models.SerieIDs(got), []string{"s1"})
	checkTestConnection(t, c, true)
	if c.Vendor() != Mapado {
		t.Errorf("Vendor() = %s", c.Vendor())
	}
	if _, ok := c.(SessionConnector); ok {
		t.Error("stateless connector should not gain session methods")
	}
}

func TestCircuitBreakerKeepsSessionMethods(t *testing.T) {
	stub := &stubSessionConnector{stubConnector: stubConnector{vendor: SoTicket, up: true}}
	c := WithCircuitBreaker(stub, "test-session", testBreakerSettings())

	sc, ok := c.(SessionConnector)
	if !ok {
		t.Fatal("session connector lost its session methods")
	}
	if err := sc.Login(context.Background()); err != nil {
		t.Fatal(err)
	}
	if sc.State() != vendorapi.StateAuthenticated {
		t.Errorf("State() = %s", sc.State())
	}
	if c.(interface{ Unwrap() Connector }).Unwrap() != Connector(stub) {
		t.Error("Unwrap() should return the inner connector")
	}
}
