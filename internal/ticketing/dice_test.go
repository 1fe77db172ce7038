// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/testinfra"
)

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func diceEventsPage(ids []string, hasNext bool, cursor string) string {
	edges := ""
	for i, id := range ids {
		if i > 0 {
			edges += ","
		}
		edges += fmt.Sprintf(`{"node":{"id":%q,"name":"Show %s","startDatetime":"2024-11-2%dT20:00:00+01:00",
			"genreTypes":[{"name":"Concert"}],"venues":[{"name":"La Cigale","city":"Paris","zipCode":"75018"}],
			"ticketTypes":[{"id":"tt1","name":"GA","price":2500,"soldCount":4},{"id":"tt2","name":"VIP","price":6000,"soldCount":0}]}}`,
			id, id, i)
	}
	return fmt.Sprintf(`{"data":{"viewer":{"events":{"pageInfo":{"hasNextPage":%t,"endCursor":%q},"edges":[%s]}}}}`, hasNext, cursor, edges)
}

func diceFake(t *testing.T, page2Status int) *testinfra.FakeVendor {
	t.Helper()
	fv := testinfra.NewFakeVendor(t)
	fv.Handle(http.MethodPost, "/graphql", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer dice-token" {
			testinfra.WriteJSON(w, http.StatusOK, `{"data":null,"errors":[{"message":"invalid token","extensions":{"code":"UNAUTHENTICATED"}}]}`)
			return
		}
		var req graphQLRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode graphql request: %v", err)
		}
		if req.Variables == nil {
			testinfra.WriteJSON(w, http.StatusOK, `{"data":{"viewer":{"name":"Promoteur"}}}`)
			return
		}
		switch req.Variables["after"] {
		case nil:
			testinfra.WriteJSON(w, http.StatusOK, diceEventsPage([]string{"e1", "e2"}, true, "c1"))
		case "c1":
			if page2Status != http.StatusOK {
				w.WriteHeader(page2Status)
				return
			}
			testinfra.WriteJSON(w, http.StatusOK, diceEventsPage([]string{"e3"}, true, "c2"))
		case "c2":
			testinfra.WriteJSON(w, http.StatusOK, diceEventsPage([]string{"e4"}, false, ""))
		default:
			t.Errorf("unexpected cursor %v", req.Variables["after"])
		}
	})
	return fv
}

func TestDiceCursorPagination(t *testing.T) {
	fv := diceFake(t, http.StatusOK)
	c := mustNew(t, Dice, Credentials{AccessKey: "dice-token"}, fv.URL())

	series := fetchWindow(t, c)
	checkStrings(t, "serie ids", sortedSerieIDs(series), []string{"e1", "e2", "e3", "e4"})
	if fv.Count("/graphql") != 3 {
		t.Errorf("graphql calls = %d, want 3", fv.Count("/graphql"))
	}

	w := findSerie(t, series, "e1")
	if w.Serie.PerformanceType != "Concert" {
		t.Errorf("performance type = %q", w.Serie.PerformanceType)
	}
	ev := &w.EventsWrappers[0]
	ga := category(t, ev, "GA")
	checkFloat(t, "GA price", ga.Price, 25)
	checkFloat(t, "GA revenue", ga.TotalRevenueIncludingTaxes, 100)
	if len(ev.EventCategoryTickets) != 1 {
		t.Errorf("categories = %d, want 1 (unsold VIP skipped)", len(ev.EventCategoryTickets))
	}
}

// A failure on page 2 of 3 aborts the call without a partial result.
func TestDiceTransientErrorOnSecondPage(t *testing.T) {
	fv := diceFake(t, http.StatusBadGateway)
	c := mustNew(t, Dice, Credentials{AccessKey: "dice-token"}, fv.URL())

	to := windowTo
	series, err := c.GetEventsSeries(context.Background(), windowFrom, &to)
	if series != nil {
		t.Errorf("partial result returned: %v", series)
	}
	checkConnectorError(t, err, Dice, connerr.KindConnectivity)
	if !connerr.IsRetryable(err) {
		t.Error("a 502 should be retryable")
	}
}

func TestDiceTestConnection(t *testing.T) {
	fv := diceFake(t, http.StatusOK)
	checkTestConnection(t, mustNew(t, Dice, Credentials{AccessKey: "dice-token"}, fv.URL()), true)
	checkTestConnection(t, mustNew(t, Dice, Credentials{AccessKey: "revoked"}, fv.URL()), false)
}

func TestDiceGraphQLError(t *testing.T) {
	fv := testinfra.NewFakeVendor(t)
	fv.HandleJSON(http.MethodPost, "/graphql", http.StatusOK, `{"errors":[{"message":"Cannot query field \"soldCount\""}]}`)
	c := mustNew(t, Dice, Credentials{AccessKey: "dice-token"}, fv.URL())

	_, err := c.GetEventsSeries(context.Background(), windowFrom, nil)
	checkConnectorError(t, err, Dice, connerr.KindVendorData)
}
