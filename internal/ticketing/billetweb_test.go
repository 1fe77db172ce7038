// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"net/http"
	"testing"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/testinfra"
)

func billetwebFake(t *testing.T) *testinfra.FakeVendor {
	t.Helper()
	fv := testinfra.NewFakeVendor(t)
	requireKey := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("user") != "42" || r.URL.Query().Get("key") != "secret" {
				testinfra.WriteJSON(w, http.StatusOK, `{"error":"invalid_key","description":"Unknown API key"}`)
				return
			}
			next(w, r)
		}
	}

	fv.Handle(http.MethodGet, "/api/events", requireKey(func(w http.ResponseWriter, _ *http.Request) {
		testinfra.WriteJSON(w, http.StatusOK, `[
			{"id":"1001","name":"Le Misanthrope","start":"2024-11-20 20:30:00","end":"2024-11-30 22:30:00",
			 "place":"Théâtre du Rond-Point","city":"Paris","zip":"75008","category":"Théâtre","vat":"2.1"},
			{"id":"1002","name":"Archived show","start":"2024-01-10 20:00:00","end":"2024-01-10 22:00:00"}
		]`)
	}))
	fv.Handle(http.MethodGet, "/api/event/1001/dates", requireKey(func(w http.ResponseWriter, _ *http.Request) {
		testinfra.WriteJSON(w, http.StatusOK, `[
			{"id":"d1","start":"2024-11-20 20:30:00","end":"2024-11-20 22:30:00"},
			{"id":"d2","start":"2024-11-21 20:30:00"},
			{"id":"d3","start":"2024-12-05 20:30:00"}
		]`)
	}))
	fv.Handle(http.MethodGet, "/api/event/1001/attendees", requireKey(func(w http.ResponseWriter, _ *http.Request) {
		testinfra.WriteJSON(w, http.StatusOK, `[
			{"id":"a1","ticket":"Plein tarif","price":"25.00","session_id":"d1","order_paid":"1","disabled":"0"},
			{"id":"a2","ticket":"Plein tarif","price":"25.00","session_id":"d1","order_paid":"1","disabled":"0"},
			{"id":"a3","ticket":"Tarif réduit","price":"15.50","session_id":"d1","order_paid":"1","disabled":"0"},
			{"id":"a4","ticket":"Plein tarif","price":"25.00","session_id":"d2","order_paid":"0","disabled":"0"},
			{"id":"a5","ticket":"Plein tarif","price":"25.00","session_id":"d2","order_paid":"1","disabled":"1"},
			{"id":"a6","ticket":"","price":"10","session_id":"d2","order_paid":"1","disabled":"0"}
		]`)
	}))
	return fv
}

func TestBilletwebGetEventsSeries(t *testing.T) {
	fv := billetwebFake(t)
	c := mustNew(t, Billetweb, Credentials{AccessKey: "42", SecretKey: "secret"}, fv.URL())

	series := fetchWindow(t, c)
	checkStrings(t, "serie ids", models.SerieIDs(series), []string{"1001"})

	w := &series[0]
	checkStrings(t, "event ids", eventIDs(w), []string{"d1", "d2"})
	if w.Serie.Place == nil || w.Serie.Place.PostalCode != "75008" {
		t.Errorf("place = %+v", w.Serie.Place)
	}
	if w.Serie.TaxRate == nil {
		t.Fatal("serie tax rate should be set")
	}
	checkFloat(t, "tax rate", *w.Serie.TaxRate, 0.021)

	full := category(t, &w.EventsWrappers[0], "Plein tarif")
	if full.NumberSold != 2 {
		t.Errorf("Plein tarif sold = %d, want 2", full.NumberSold)
	}
	checkFloat(t, "Plein tarif revenue", full.TotalRevenueIncludingTaxes, 50)
	checkFloat(t, "Tarif réduit revenue", category(t, &w.EventsWrappers[0], "Tarif réduit").TotalRevenueIncludingTaxes, 15.5)

	d2 := &w.EventsWrappers[1]
	if d2.TicketsSold() != 1 {
		t.Errorf("d2 tickets = %d, want 1 (unpaid and disabled skipped)", d2.TicketsSold())
	}
	category(t, d2, models.DefaultCategory)

	if fv.Count("/api/event/1002/dates") != 0 {
		t.Error("events entirely before the window should not be expanded")
	}
}

func TestBilletwebInvalidKey(t *testing.T) {
	fv := billetwebFake(t)
	c := mustNew(t, Billetweb, Credentials{AccessKey: "42", SecretKey: "wrong"}, fv.URL())

	checkTestConnection(t, c, false)

	_, err := c.GetEventsSeries(context.Background(), windowFrom, nil)
	checkConnectorError(t, err, Billetweb, connerr.KindAuthentication)
}

// Only key and user codes mean the credentials were rejected.
func TestBilletwebErrorCodes(t *testing.T) {
	tests := []struct {
		body string
		kind connerr.Kind
	}{
		{`{"error":"invalid_user","description":"Unknown user"}`, connerr.KindAuthentication},
		{`{"error":"invalid_event","description":"Unknown event"}`, connerr.KindVendorData},
		{`{"error":"rate_limit"}`, connerr.KindVendorData},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			fv := testinfra.NewFakeVendor(t)
			fv.HandleJSON(http.MethodGet, "/api/events", http.StatusOK, tt.body)
			c := mustNew(t, Billetweb, Credentials{AccessKey: "42", SecretKey: "secret"}, fv.URL())

			_, err := c.GetEventsSeries(context.Background(), windowFrom, nil)
			checkConnectorError(t, err, Billetweb, tt.kind)

			ok, err := c.TestConnection(context.Background())
			if ok {
				t.Error("TestConnection() should fail")
			}
			if tt.kind == connerr.KindAuthentication && err != nil {
				t.Errorf("TestConnection() error = %v, want false without error", err)
			}
			if tt.kind == connerr.KindVendorData && err == nil {
				t.Error("TestConnection() should surface non-credential errors")
			}
		})
	}
}

func TestBilletwebTestConnection(t *testing.T) {
	fv := billetwebFake(t)
	c := mustNew(t, Billetweb, Credentials{AccessKey: "42", SecretKey: "secret"}, fv.URL())
	checkTestConnection(t, c, true)
}

func TestBilletwebMalformedList(t *testing.T) {
	fv := testinfra.NewFakeVendor(t)
	fv.HandleJSON(http.MethodGet, "/api/events", http.StatusOK, `{"events": "nope"}`)
	c := mustNew(t, Billetweb, Credentials{AccessKey: "42", SecretKey: "secret"}, fv.URL())

	ok, err := c.TestConnection(context.Background())
	if ok {
		t.Error("TestConnection() should not succeed on malformed data")
	}
	checkConnectorError(t, err, Billetweb, connerr.KindVendorData)
}
