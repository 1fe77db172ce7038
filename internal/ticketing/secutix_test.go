// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/testinfra"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

func secutixFake(t *testing.T) *testinfra.FakeVendor {
	t.Helper()
	fv := testinfra.NewFakeVendor(t)

	fv.Handle(http.MethodPost, "/api/v1/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "pass" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if body["institution"] != "OPERA" {
			t.Errorf("institution = %q", body["institution"])
		}
		http.SetCookie(w, &http.Cookie{Name: "tracking", Value: "x"})
		http.SetCookie(w, &http.Cookie{Name: "SESSION", Value: "sx-42", MaxAge: 1800})
		w.WriteHeader(http.StatusNoContent)
	})
	fv.Handle(http.MethodPost, "/api/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "SESSION=sx-42" {
			t.Errorf("logout cookie = %q", r.Header.Get("Cookie"))
		}
		w.WriteHeader(http.StatusNoContent)
	})

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if ck, err := r.Cookie("SESSION"); err != nil || ck.Value != "sx-42" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next(w, r)
		}
	}
	fv.Handle(http.MethodGet, "/api/v1/session", authed(func(w http.ResponseWriter, _ *http.Request) {
		testinfra.WriteJSON(w, http.StatusOK, `{"user":"caisse"}`)
	}))
	fv.Handle(http.MethodGet, "/api/v1/performances", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "0":
			testinfra.WriteJSON(w, http.StatusOK, `{"total":3,"items":[
				{"id":"P1","productId":"PR1","productName":"La Traviata","genre":"Opéra","start":"2024-11-19T19:30:00+01:00","vatRate":2.1,
				 "venue":{"name":"Opéra Bastille","city":"Paris","postalCode":"75012","capacity":2700},
				 "prices":[{"category":"Cat 1","unitPrice":120,"sold":100,"revenue":12000,"revenueExclTax":11753.18}]},
				{"id":"P2","productId":"PR1","productName":"La Traviata","start":"2024-11-21T19:30:00+01:00","vatRate":2.1,
				 "prices":[{"category":"Cat 1","unitPrice":120,"sold":80,"revenue":9600}]}
			]}`)
		case "2":
			testinfra.WriteJSON(w, http.StatusOK, `{"total":3,"items":[
				{"id":"P3","productId":"PR2","productName":"Giselle","start":"2024-11-28T20:00:00+01:00",
				 "prices":[{"category":"Cat 2","unitPrice":80,"sold":10,"revenue":800}]}
			]}`)
		default:
			t.Errorf("unexpected offset %q", r.URL.Query().Get("offset"))
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	return fv
}

func TestSecutixOffsetPagination(t *testing.T) {
	fv := secutixFake(t)
	c := mustNew(t, Secutix, Credentials{AccessKey: "caisse", SecretKey: "pass", AccountID: "OPERA"}, fv.URL())

	series := fetchWindow(t, c)
	checkStrings(t, "serie ids", models.SerieIDs(series), []string{"PR1", "PR2"})

	traviata := findSerie(t, series, "PR1")
	checkStrings(t, "event ids", eventIDs(traviata), []string{"P1", "P2"})
	checkFloat(t, "serie rate", *traviata.Serie.TaxRate, 0.021)
	if traviata.TicketsSold() != 180 {
		t.Errorf("tickets sold = %d, want 180", traviata.TicketsSold())
	}
	if fv.Count("/api/v1/login") != 1 {
		t.Errorf("logins = %d, want 1", fv.Count("/api/v1/login"))
	}
}

func TestSecutixCookieSession(t *testing.T) {
	fv := secutixFake(t)
	c := mustNew(t, Secutix, Credentials{AccessKey: "caisse", SecretKey: "pass", AccountID: "OPERA"}, fv.URL())
	sc := c.(SessionConnector)

	checkTestConnection(t, c, true)
	if sc.State() != vendorapi.StateAuthenticated {
		t.Errorf("State() = %s", sc.State())
	}
	if err := sc.Logout(context.Background()); err != nil {
		t.Errorf("Logout() error = %v", err)
	}
	if fv.Count("/api/v1/logout") != 1 {
		t.Error("logout should reach the vendor")
	}
	if sc.State() != vendorapi.StateUnauthenticated {
		t.Errorf("State() after logout = %s", sc.State())
	}
}

func TestSecutixInvalidCredentials(t *testing.T) {
	fv := secutixFake(t)
	c := mustNew(t, Secutix, Credentials{AccessKey: "caisse", SecretKey: "wrong", AccountID: "OPERA"}, fv.URL())
	checkTestConnection(t, c, false)
}

func TestSecutixLoginWithoutCookie(t *testing.T) {
	fv := testinfra.NewFakeVendor(t)
	fv.Handle(http.MethodPost, "/api/v1/login", testinfra.Status(http.StatusOK))
	c := mustNew(t, Secutix, Credentials{AccessKey: "caisse", SecretKey: "pass"}, fv.URL())

	err := c.(SessionConnector).Login(context.Background())
	checkConnectorError(t, err, Secutix, connerr.KindVendorData)
}
