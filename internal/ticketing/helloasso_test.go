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
	"github.com/tomtom215/declaspectacle/internal/testinfra"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

func helloAssoFake(t *testing.T) *testinfra.FakeVendor {
	t.Helper()
	fv := testinfra.NewFakeVendor(t)

	fv.Handle(http.MethodPost, "/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if r.PostForm.Get("client_id") != "client" || r.PostForm.Get("client_secret") != "secret" {
			testinfra.WriteJSON(w, http.StatusBadRequest, `{"error":"unauthorized_client"}`)
			return
		}
		testinfra.WriteJSON(w, http.StatusOK, `{"access_token":"ha-token","token_type":"bearer","expires_in":1800}`)
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer ha-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}

	fv.Handle(http.MethodGet, "/v5/organizations/compagnie-x", authed(func(w http.ResponseWriter, _ *http.Request) {
		testinfra.WriteJSON(w, http.StatusOK, `{"organizationSlug":"compagnie-x"}`)
	}))
	fv.Handle(http.MethodGet, "/v5/organizations/compagnie-x/forms", authed(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("formTypes") != "Event" {
			t.Errorf("formTypes = %q", r.URL.Query().Get("formTypes"))
		}
		switch r.URL.Query().Get("pageIndex") {
		case "1":
			testinfra.WriteJSON(w, http.StatusOK, `{"data":[
				{"formSlug":"concert-1","title":"Concert d'automne","startDate":"2024-11-22T20:00:00+01:00",
				 "place":{"name":"Salle des fêtes","city":"Lyon","zipCode":"69001","country":"FRA"}}
			],"pagination":{"pageIndex":1,"totalPages":2}}`)
		default:
			testinfra.WriteJSON(w, http.StatusOK, `{"data":[
				{"formSlug":"gala-2023","title":"Gala","startDate":"2023-06-01T20:00:00+02:00"},
				{"formSlug":"atelier","title":"Atelier sans date"}
			],"pagination":{"pageIndex":2,"totalPages":2}}`)
		}
	}))
	fv.Handle(http.MethodGet, "/v5/organizations/compagnie-x/forms/Event/concert-1/items", authed(func(w http.ResponseWriter, _ *http.Request) {
		testinfra.WriteJSON(w, http.StatusOK, `{"data":[
			{"id":1,"name":"Adulte","type":"Registration","state":"Processed","amount":1200},
			{"id":2,"name":"Adulte","type":"Registration","state":"Processed","amount":1200},
			{"id":3,"name":"Enfant","type":"Registration","state":"Processed","amount":0},
			{"id":4,"name":"Don","type":"Donation","state":"Processed","amount":500}
		],"pagination":{"pageIndex":1,"totalPages":1}}`)
	}))
	return fv
}

func TestHelloAssoGetEventsSeries(t *testing.T) {
	fv := helloAssoFake(t)
	c := mustNew(t, HelloAsso, Credentials{AccessKey: "client", SecretKey: "secret", AccountID: "compagnie-x"}, fv.URL())

	series := fetchWindow(t, c)
	checkStrings(t, "serie ids", sortedSerieIDs(series), []string{"concert-1"})

	w := &series[0]
	if w.Serie.Place == nil || w.Serie.Place.City != "Lyon" {
		t.Errorf("place = %+v", w.Serie.Place)
	}
	ev := &w.EventsWrappers[0]
	adult := category(t, ev, "Adulte")
	if adult.NumberSold != 2 {
		t.Errorf("Adulte sold = %d, want 2", adult.NumberSold)
	}
	checkFloat(t, "Adulte price", adult.Price, 12)
	checkFloat(t, "Adulte revenue", adult.TotalRevenueIncludingTaxes, 24)
	if ev.TicketsSold() != 3 {
		t.Errorf("tickets sold = %d, want 3 (donation skipped)", ev.TicketsSold())
	}

	if fv.Count("/oauth2/token") != 1 {
		t.Errorf("token requests = %d, want 1", fv.Count("/oauth2/token"))
	}
	if fv.Count("/v5/organizations/compagnie-x/forms") != 2 {
		t.Errorf("form pages = %d, want 2", fv.Count("/v5/organizations/compagnie-x/forms"))
	}
}

func TestHelloAssoInvalidCredentials(t *testing.T) {
	fv := helloAssoFake(t)
	c := mustNew(t, HelloAsso, Credentials{AccessKey: "client", SecretKey: "wrong", AccountID: "compagnie-x"}, fv.URL())

	checkTestConnection(t, c, false)

	sc := c.(SessionConnector)
	err := sc.Login(context.Background())
	checkConnectorError(t, err, HelloAsso, connerr.KindAuthentication)
	if sc.State() != vendorapi.StateUnauthenticated {
		t.Errorf("State() = %s, want UNAUTHENTICATED", sc.State())
	}
}

func TestHelloAssoSessionLifecycle(t *testing.T) {
	fv := helloAssoFake(t)
	c := mustNew(t, HelloAsso, Credentials{AccessKey: "client", SecretKey: "secret", AccountID: "compagnie-x"}, fv.URL())
	sc := c.(SessionConnector)

	checkTestConnection(t, c, true)
	if sc.State() != vendorapi.StateAuthenticated {
		t.Errorf("State() after implicit login = %s", sc.State())
	}
	if err := sc.Logout(context.Background()); err != nil {
		t.Errorf("Logout() error = %v", err)
	}
	if sc.State() != vendorapi.StateUnauthenticated {
		t.Errorf("State() after logout = %s", sc.State())
	}
}
