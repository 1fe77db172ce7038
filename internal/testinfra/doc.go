// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

// Package testinfra provides test infrastructure for connector tests.
//
// # Fake Vendors
//
// FakeVendor is an httptest server routed with chi. Tests register the vendor
// endpoints they need and point a connector at its URL:
//
//	func TestBilletwebFetch(t *testing.T) {
//	    fv := testinfra.NewFakeVendor(t)
//	    fv.HandleJSON(http.MethodGet, "/api/events", http.StatusOK, events)
//
//	    conn, _ := ticketing.New(ticketing.Billetweb, creds, ticketing.Options{BaseURL: fv.URL()})
//	    series, err := conn.GetEventsSeries(ctx, from, &to)
//	    // ...
//	    if fv.Count("/api/events") != 1 { ... }
//	}
//
// Every request is captured so tests can assert on auth headers, query
// parameters and call counts.
//
// # Live Vendors
//
// Tests against real vendor accounts are built with the manual tag and only
// run when TICKETING_MANUAL_TESTS=1. RequireManual and RequireEnv skip them
// otherwise, so they never run in CI by default:
//
//	go test -tags manual ./internal/ticketing/ -run Live
package testinfra
