// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

const (
	diceBaseURL  = "https://partners-endpoint.dice.fm"
	dicePageSize = 50
)

const diceViewerQuery = `query { viewer { name } }`

const diceEventsQuery = `query Events($first: Int!, $after: String, $from: Time!, $to: Time) {
  viewer {
    events(first: $first, after: $after, where: {startDatetime: {gte: $from, lt: $to}}) {
      pageInfo { hasNextPage endCursor }
      edges {
        node {
          id
          name
          startDatetime
          endDatetime
          genreTypes { name }
          venues { name address city zipCode country }
          ticketTypes { id name price soldCount }
        }
      }
    }
  }
}`

// diceConnector queries the Dice partners GraphQL API with a static token.
// Every Dice event is its own serie. Prices are in cents.
type diceConnector struct {
	client *vendorapi.Client
	token  string
}

func newDice(creds Credentials, opts Options) (Connector, error) {
	if err := requireCredentials(Dice, map[string]string{"access key (api token)": creds.AccessKey}); err != nil {
		return nil, err
	}
	return &diceConnector{
		client: vendorapi.NewClient(string(Dice), opts.baseURL(diceBaseURL, "", false), opts.httpOptions()),
		token:  creds.AccessKey,
	}, nil
}

func (c *diceConnector) Vendor() Vendor { return Dice }

type graphQLError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type diceEvent struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	StartDatetime string `json:"startDatetime"`
	EndDatetime   string `json:"endDatetime"`
	GenreTypes    []struct {
		Name string `json:"name"`
	} `json:"genreTypes"`
	Venues []struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		ZipCode string `json:"zipCode"`
		Country string `json:"country"`
	} `json:"venues"`
	TicketTypes []struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Price     flexFloat `json:"price"`
		SoldCount flexInt   `json:"soldCount"`
	} `json:"ticketTypes"`
}

type diceEventsData struct {
	Viewer struct {
		Events struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node diceEvent `json:"node"`
			} `json:"edges"`
		} `json:"events"`
	} `json:"viewer"`
}

func (c *diceConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, Dice, func(ctx context.Context) error {
		var data struct {
			Viewer *struct {
				Name string `json:"name"`
			} `json:"viewer"`
		}
		if err := c.query(ctx, diceViewerQuery, nil, &data); err != nil {
			return err
		}
		if data.Viewer == nil {
			return connerr.NewAuthenticationError("token has no viewer", nil)
		}
		return nil
	})
}

func (c *diceConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, Dice, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		vars := map[string]interface{}{
			"first": dicePageSize,
			"from":  from.UTC().Format(time.RFC3339),
		}
		if to != nil {
			vars["to"] = to.UTC().Format(time.RFC3339)
		}

		return vendorapi.Paginate(ctx, string(Dice), func(ctx context.Context, _ int) (int, bool, error) {
			var data diceEventsData
			if err := c.query(ctx, diceEventsQuery, vars, &data); err != nil {
				return 0, false, err
			}
			events := data.Viewer.Events
			for i := range events.Edges {
				if err := addDiceEvent(acc, &events.Edges[i].Node); err != nil {
					return 0, false, err
				}
			}
			if events.PageInfo.HasNextPage && events.PageInfo.EndCursor == "" {
				return 0, false, connerr.NewVendorDataError("hasNextPage without endCursor", nil)
			}
			vars["after"] = events.PageInfo.EndCursor
			return len(events.Edges), events.PageInfo.HasNextPage, nil
		})
	})
}

func addDiceEvent(acc *models.SerieAccumulator, ev *diceEvent) error {
	if ev.ID == "" {
		return connerr.NewVendorDataError("event without id", nil)
	}
	start, err := parseTime(ev.StartDatetime)
	if err != nil {
		return err
	}
	end, err := parseOptionalTime(ev.EndDatetime)
	if err != nil {
		return err
	}

	serie := models.LiteEventSerie{ExternalID: ev.ID, Name: ev.Name}
	if len(ev.GenreTypes) > 0 {
		serie.PerformanceType = ev.GenreTypes[0].Name
	}
	if len(ev.Venues) > 0 {
		v := ev.Venues[0]
		serie.Place = &models.Place{Name: v.Name, Address: v.Address, PostalCode: v.ZipCode, City: v.City, Country: v.Country}
	}
	acc.AddSerie(serie)
	if ok, _ := acc.AddEvent(ev.ID, models.LiteEvent{ExternalID: ev.ID, StartAt: start, EndAt: end}); !ok {
		return nil
	}

	tickets := make([]models.LiteEventCategoryTickets, 0, len(ev.TicketTypes))
	for _, tt := range ev.TicketTypes {
		if tt.SoldCount <= 0 {
			continue
		}
		category := tt.Name
		if category == "" {
			category = models.DefaultCategory
		}
		price := cents(tt.Price)
		tickets = append(tickets, models.LiteEventCategoryTickets{
			Category:                   category,
			Price:                      price,
			NumberSold:                 int(tt.SoldCount),
			TotalRevenueIncludingTaxes: price * float64(tt.SoldCount),
		})
	}
	acc.SetTickets(ev.ID, ev.ID, tickets)
	return nil
}

// query posts a GraphQL document. GraphQL reports failures in the body with
// status 200; UNAUTHENTICATED and FORBIDDEN codes become authentication
// errors, anything else a vendor data error.
func (c *diceConnector) query(ctx context.Context, query string, vars map[string]interface{}, out interface{}) error {
	var resp struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	req := vendorapi.Request{
		Method: http.MethodPost,
		Path:   "/graphql",
		Header: http.Header{"Authorization": {"Bearer " + c.token}},
		JSON:   map[string]interface{}{"query": query, "variables": vars},
	}
	if _, err := c.client.DoJSON(ctx, req, &resp); err != nil {
		return err
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		auth := false
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
			if e.Extensions.Code == "UNAUTHENTICATED" || e.Extensions.Code == "FORBIDDEN" {
				auth = true
			}
		}
		msg := strings.Join(msgs, "; ")
		if auth {
			return connerr.NewAuthenticationError(msg, nil)
		}
		return connerr.NewVendorDataError("graphql: "+msg, nil)
	}
	if len(resp.Data) == 0 || string(resp.Data) == "null" {
		return connerr.NewVendorDataError("graphql answer without data", nil)
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return connerr.NewVendorDataError("graphql data", err)
	}
	return nil
}
