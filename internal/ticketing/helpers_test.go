// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

// Window used across vendor tests: [2024-11-18, 2024-12-01) Paris time.
var (
	windowFrom = time.Date(2024, 11, 18, 0, 0, 0, 0, paris)
	windowTo   = time.Date(2024, 12, 1, 0, 0, 0, 0, paris)
)

// testOptions points a connector at a fake vendor without pacing and with
// millisecond backoff.
func testOptions(baseURL string) Options {
	return Options{
		BaseURL: baseURL,
		HTTP: vendorapi.Options{
			Timeout: 5 * time.Second,
			Retry: vendorapi.RetryPolicy{
				MaxRetries: 2,
				BaseDelay:  time.Millisecond,
				MaxDelay:   5 * time.Millisecond,
			},
		},
	}
}

func mustNew(t *testing.T, vendor Vendor, creds Credentials, baseURL string) Connector {
	t.Helper()
	c, err := New(vendor, creds, testOptions(baseURL))
	if err != nil {
		t.Fatalf("New(%s) error = %v", vendor, err)
	}
	return c
}

func fetchWindow(t *testing.T, c Connector) []models.LiteEventSerieWrapper {
	t.Helper()
	to := windowTo
	series, err := c.GetEventsSeries(context.Background(), windowFrom, &to)
	if err != nil {
		t.Fatalf("GetEventsSeries() error = %v", err)
	}
	return series
}

func checkConnectorError(t *testing.T, err error, vendor Vendor, kind connerr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	var tce *connerr.TicketingConnectorError
	if !errors.As(err, &tce) {
		t.Fatalf("error %v (%T) is not a TicketingConnectorError", err, err)
	}
	if tce.Vendor != string(vendor) {
		t.Errorf("Vendor = %q, want %q", tce.Vendor, vendor)
	}
	if got := connerr.KindOf(err); got != kind {
		t.Errorf("KindOf() = %q, want %q (err: %v)", got, kind, err)
	}
}

func checkTestConnection(t *testing.T, c Connector, want bool) {
	t.Helper()
	ok, err := c.TestConnection(context.Background())
	if err != nil {
		t.Fatalf("TestConnection() error = %v", err)
	}
	if ok != want {
		t.Errorf("TestConnection() = %v, want %v", ok, want)
	}
}

func findSerie(t *testing.T, series []models.LiteEventSerieWrapper, id string) *models.LiteEventSerieWrapper {
	t.Helper()
	for i := range series {
		if series[i].Serie.ExternalID == id {
			return &series[i]
		}
	}
	t.Fatalf("serie %q not found in %v", id, models.SerieIDs(series))
	return nil
}

func eventIDs(w *models.LiteEventSerieWrapper) []string {
	ids := make([]string, len(w.EventsWrappers))
	for i := range w.EventsWrappers {
		ids[i] = w.EventsWrappers[i].Event.ExternalID
	}
	return ids
}

func sortedSerieIDs(series []models.LiteEventSerieWrapper) []string {
	ids := models.SerieIDs(series)
	sort.Strings(ids)
	return ids
}

func checkStrings(t *testing.T, name string, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s[%d] = %q, want %q", name, i, got[i], want[i])
		}
	}
}

func checkFloat(t *testing.T, name string, got, want float64) {
	t.Helper()
	if diff := got - want; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func category(t *testing.T, w *models.LiteEventWrapper, name string) *models.LiteEventCategoryTickets {
	t.Helper()
	for i := range w.EventCategoryTickets {
		if w.EventCategoryTickets[i].Category == name {
			return &w.EventCategoryTickets[i]
		}
	}
	t.Fatalf("category %q not found on event %s", name, w.Event.ExternalID)
	return nil
}
