// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/testinfra"
)

const siriusTestSecret = "s3cr3t"

func siriusRepresentationJSON(id int, show string, start time.Time) map[string]interface{} {
	return map[string]interface{}{
		"id":       id,
		"date":     start.Format(time.RFC3339),
		"vat_rate": 2.1,
		"show": map[string]interface{}{
			"id":    show,
			"title": "Spectacle " + show,
			"venue": map[string]interface{}{"name": "Théâtre du Rond-Point", "city": "Paris", "postal_code": "75008", "capacity": 400},
		},
		"sales": []map[string]interface{}{
			{"rate_name": "Plein", "unit_price": 30, "count": 10, "amount_incl_tax": 300},
			{"rate_name": "Abonné", "unit_price": 20, "count": 5, "amount_incl_tax": 100, "amount_excl_tax": 97.94},
		},
	}
}

// siriusFake serves two pages of representations and rejects requests whose
// signature does not match siriusTestSecret.
func siriusFake(t *testing.T) *testinfra.FakeVendor {
	t.Helper()
	fv := testinfra.NewFakeVendor(t)

	day := func(d int) time.Time { return time.Date(2024, 11, d, 20, 0, 0, 0, paris) }
	var page1, page2 []map[string]interface{}
	for i := 0; i < 7; i++ {
		page1 = append(page1, siriusRepresentationJSON(100+i, "A", day(18+i)))
	}
	for i := 0; i < 5; i++ {
		page2 = append(page2, siriusRepresentationJSON(200+i, "B", day(25+i)))
	}
	// The window end is exclusive.
	page2 = append(page2, siriusRepresentationJSON(299, "B", windowTo))

	signed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("key_id") != "key-1" || q.Get("timestamp") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if q.Get("signature") != siriusSignature([]byte(siriusTestSecret), r.Method, r.URL.Path, q) {
				testinfra.WriteJSON(w, http.StatusUnauthorized, `{"error":"bad signature"}`)
				return
			}
			next(w, r)
		}
	}
	fv.Handle(http.MethodGet, "/v1/ping", signed(func(w http.ResponseWriter, _ *http.Request) {
		testinfra.WriteJSON(w, http.StatusOK, `{"pong":true}`)
	}))
	fv.Handle(http.MethodGet, "/v1/representations", signed(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "":
			testinfra.WriteJSON(w, http.StatusOK, map[string]interface{}{"representations": page1, "next_offset": "cursor-2"})
		case "cursor-2":
			testinfra.WriteJSON(w, http.StatusOK, map[string]interface{}{"representations": page2, "next_offset": nil})
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	return fv
}

func newSiriusForTest(t *testing.T, baseURL, secret string) *siriusConnector {
	t.Helper()
	c := mustNew(t, Sirius, Credentials{AccessKey: "key-1", SecretKey: secret}, baseURL).(*siriusConnector)
	c.now = func() time.Time { return time.Date(2024, 11, 20, 9, 0, 0, 0, time.UTC) }
	return c
}

func TestSiriusTwelveEventsOverTwoPages(t *testing.T) {
	fv := siriusFake(t)
	c := newSiriusForTest(t, fv.URL(), siriusTestSecret)

	series := fetchWindow(t, c)
	if got := models.CountEvents(series); got != 12 {
		t.Fatalf("events = %d, want 12", got)
	}
	checkStrings(t, "serie ids", models.SerieIDs(series), []string{"A", "B"})
	if fv.Count("/v1/representations") != 2 {
		t.Errorf("pages = %d, want 2", fv.Count("/v1/representations"))
	}

	b := findSerie(t, series, "B")
	if b.EventCount() != 5 {
		t.Errorf("serie B events = %d, want 5", b.EventCount())
	}
	// Rates are carried per category; the serie rate is reconciled from them.
	if b.Serie.TaxRate == nil {
		t.Fatal("serie B tax rate not reconciled")
	}
	checkFloat(t, "serie B rate", *b.Serie.TaxRate, 0.021)
	if b.TicketsSold() != 75 {
		t.Errorf("serie B tickets = %d, want 75", b.TicketsSold())
	}
}

func TestSiriusSignature(t *testing.T) {
	c := newSiriusForTest(t, "http://sirius.test", siriusTestSecret)
	q := c.sign(http.MethodGet, "/v1/representations", url.Values{"limit": {"100"}})

	if q.Get("key_id") != "key-1" || q.Get("timestamp") != fmt.Sprint(c.now().Unix()) {
		t.Errorf("signed query = %v", q)
	}
	want := siriusSignature([]byte(siriusTestSecret), http.MethodGet, "/v1/representations", url.Values{
		"limit":     {"100"},
		"key_id":    {"key-1"},
		"timestamp": {q.Get("timestamp")},
	})
	if q.Get("signature") != want {
		t.Errorf("signature = %s, want %s", q.Get("signature"), want)
	}
	if siriusSignature([]byte("other"), http.MethodGet, "/v1/representations", q) == want {
		t.Error("signature must depend on the secret")
	}
	if siriusSignature([]byte(siriusTestSecret), http.MethodPost, "/v1/representations", q) == want {
		t.Error("signature must depend on the method")
	}
}

func TestSiriusTestConnection(t *testing.T) {
	fv := siriusFake(t)
	checkTestConnection(t, newSiriusForTest(t, fv.URL(), siriusTestSecret), true)
	checkTestConnection(t, newSiriusForTest(t, fv.URL(), "wrong"), false)
}
