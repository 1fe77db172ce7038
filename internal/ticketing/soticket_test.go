// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/testinfra"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

type soTicketFake struct {
	*testinfra.FakeVendor
	token   atomic.Value
	logins  atomic.Int32
	logouts atomic.Int32
}

func newSoTicketFake(t *testing.T) *soTicketFake {
	t.Helper()
	f := &soTicketFake{FakeVendor: testinfra.NewFakeVendor(t)}
	f.token.Store("tok-1")

	f.Handle(http.MethodPost, "/api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["username"] != "billetterie" || body["password"] != "pass" {
			testinfra.WriteJSON(w, http.StatusUnprocessableEntity, `{"message":"Identifiants invalides"}`)
			return
		}
		f.logins.Add(1)
		testinfra.WriteJSON(w, http.StatusOK, map[string]interface{}{"token": f.token.Load(), "expires_in": 3600})
	})
	f.Handle(http.MethodPost, "/api/logout", func(w http.ResponseWriter, r *http.Request) {
		f.logouts.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+f.token.Load().(string) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	f.Handle(http.MethodGet, "/api/me", authed(func(w http.ResponseWriter, _ *http.Request) {
		testinfra.WriteJSON(w, http.StatusOK, `{"id":1}`)
	}))
	f.Handle(http.MethodGet, "/api/events", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			testinfra.WriteJSON(w, http.StatusOK, `{"current_page":1,"last_page":2,"data":[
				{"id":7,"title":"Festival d'hiver","genre":"Musique","tva":"5.5",
				 "venue":{"name":"Le Chabada","city":"Angers","postal_code":"49000","capacity":"900"},
				 "sessions":[
					{"id":71,"start_date":"2024-11-29 20:00:00","tickets":[
						{"category":"Plein","price":"22","quantity":"10","total_ttc":"220","total_ht":"208.53"},
						{"category":"Réduit","price":"15","quantity":"4","total_ttc":"60"}
					]}
				 ]}
			]}`)
			return
		}
		testinfra.WriteJSON(w, http.StatusOK, `{"current_page":2,"last_page":2,"data":[
			{"id":7,"title":"Festival d'hiver","tva":"5.5","sessions":[
				{"id":72,"start_date":"2024-11-30 20:00:00","tickets":[
					{"category":"Plein","price":"22","quantity":"3","total_ttc":"66"}
				]},
				{"id":73,"start_date":"2024-12-14 20:00:00","tickets":[]}
			]}
		]}`)
	}))
	return f
}

func TestSoTicketGetEventsSeries(t *testing.T) {
	for _, brand := range []Vendor{SoTicket, Supersoniks} {
		t.Run(string(brand), func(t *testing.T) {
			f := newSoTicketFake(t)
			c := mustNew(t, brand, Credentials{AccessKey: "billetterie", SecretKey: "pass"}, f.URL())

			series := fetchWindow(t, c)
			if len(series) != 1 {
				t.Fatalf("series = %d, want 1 merged serie", len(series))
			}
			w := &series[0]
			checkStrings(t, "event ids", eventIDs(w), []string{"71", "72"})
			if w.Serie.Place == nil || w.Serie.Place.Capacity != 900 {
				t.Errorf("place = %+v", w.Serie.Place)
			}
			checkFloat(t, "serie tax rate", *w.Serie.TaxRate, 0.055)
			plein := category(t, &w.EventsWrappers[0], "Plein")
			if plein.NumberSold != 10 {
				t.Errorf("Plein sold = %d", plein.NumberSold)
			}
			checkFloat(t, "Plein HT", *plein.TotalRevenueExcludingTaxes, 208.53)
			if w.TicketsSold() != 17 {
				t.Errorf("tickets sold = %d, want 17", w.TicketsSold())
			}
			if f.logins.Load() != 1 {
				t.Errorf("logins = %d, want 1", f.logins.Load())
			}
		})
	}
}

// Fetching twice over the same window returns the same series.
func TestSoTicketIdempotentRead(t *testing.T) {
	f := newSoTicketFake(t)
	c := mustNew(t, SoTicket, Credentials{AccessKey: "billetterie", SecretKey: "pass"}, f.URL())

	first := sortedSerieIDs(fetchWindow(t, c))
	second := sortedSerieIDs(fetchWindow(t, c))
	checkStrings(t, "second fetch", second, first)
}

func TestSoTicketSessionLifecycle(t *testing.T) {
	f := newSoTicketFake(t)
	c := mustNew(t, SoTicket, Credentials{AccessKey: "billetterie", SecretKey: "pass"}, f.URL())
	sc := c.(SessionConnector)
	ctx := context.Background()

	if sc.State() != vendorapi.StateUnauthenticated {
		t.Errorf("initial State() = %s", sc.State())
	}
	if err := sc.Login(ctx); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if sc.State() != vendorapi.StateAuthenticated {
		t.Errorf("State() after login = %s", sc.State())
	}

	// The vendor revokes the token: the next call logs in again once.
	f.token.Store("tok-2")
	checkTestConnection(t, c, true)
	if f.logins.Load() != 2 {
		t.Errorf("logins = %d, want 2", f.logins.Load())
	}

	if err := sc.Logout(ctx); err != nil {
		t.Errorf("Logout() error = %v", err)
	}
	if f.logouts.Load() != 1 {
		t.Errorf("logouts = %d, want 1", f.logouts.Load())
	}
	if sc.State() != vendorapi.StateUnauthenticated {
		t.Errorf("State() after logout = %s", sc.State())
	}
}

func TestSoTicketRejectedCredentials(t *testing.T) {
	f := newSoTicketFake(t)
	c := mustNew(t, Supersoniks, Credentials{AccessKey: "billetterie", SecretKey: "wrong"}, f.URL())

	checkTestConnection(t, c, false)

	err := c.(SessionConnector).Login(context.Background())
	checkConnectorError(t, err, Supersoniks, connerr.KindAuthentication)
	if c.(SessionConnector).State() != vendorapi.StateUnauthenticated {
		t.Error("rejected login must leave the session unauthenticated")
	}
}
