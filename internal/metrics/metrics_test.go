// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordVendorRequest(t *testing.T) {
	before200 := testutil.ToFloat64(TicketingRequestsTotal.WithLabelValues("metrics-test", "200"))
	beforeErr := testutil.ToFloat64(TicketingRequestsTotal.WithLabelValues("metrics-test", "transport_error"))

	RecordVendorRequest("metrics-test", 200, 120*time.Millisecond)
	RecordVendorRequest("metrics-test", 0, time.Second)

	if got := testutil.ToFloat64(TicketingRequestsTotal.WithLabelValues("metrics-test", "200")); got != before200+1 {
		t.Errorf("200 counter = %v, want %v", got, before200+1)
	}
	if got := testutil.ToFloat64(TicketingRequestsTotal.WithLabelValues("metrics-test", "transport_error")); got != beforeErr+1 {
		t.Errorf("transport_error counter = %v, want %v", got, beforeErr+1)
	}
}

func TestRecordTokenRefresh(t *testing.T) {
	RecordTokenRefresh("metrics-test", nil)
	RecordTokenRefresh("metrics-test", errors.New("invalid_client"))

	if got := testutil.ToFloat64(TicketingTokenRefresh.WithLabelValues("metrics-test", "success")); got < 1 {
		t.Errorf("success counter = %v", got)
	}
	if got := testutil.ToFloat64(TicketingTokenRefresh.WithLabelValues("metrics-test", "failure")); got < 1 {
		t.Errorf("failure counter = %v", got)
	}
}

func TestRecordFetch(t *testing.T) {
	RecordFetch("metrics-test", "fetch-conn", time.Second, 12, nil)
	if got := testutil.ToFloat64(FetchEvents.WithLabelValues("fetch-conn")); got != 12 {
		t.Errorf("events gauge = %v, want 12", got)
	}

	// A failed fetch must not overwrite the last known count.
	RecordFetch("metrics-test", "fetch-conn", time.Second, 0, errors.New("boom"))
	if got := testutil.ToFloat64(FetchEvents.WithLabelValues("fetch-conn")); got != 12 {
		t.Errorf("events gauge after failure = %v, want 12", got)
	}
}

func TestRecordSync(t *testing.T) {
	RecordSync("sync-conn", 3, 1, 2)

	if got := testutil.ToFloat64(SyncChanges.WithLabelValues("sync-conn", "added")); got != 3 {
		t.Errorf("added = %v, want 3", got)
	}
	if got := testutil.ToFloat64(SyncLastSuccess.WithLabelValues("sync-conn")); got == 0 {
		t.Error("last success timestamp should be set")
	}
}

func TestRecordDeclaration(t *testing.T) {
	before := testutil.ToFloat64(SibilDeclarations.WithLabelValues("rejected"))
	RecordDeclaration("rejected")
	if got := testutil.ToFloat64(SibilDeclarations.WithLabelValues("rejected")); got != before+1 {
		t.Errorf("rejected = %v, want %v", got, before+1)
	}
}
