// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

const (
	yurplanBaseURL        = "https://api.yurplan.com"
	yurplanSandboxBaseURL = "https://api.sandbox.yurplan.com"
	yurplanPageSize       = 100
)

type yurplanConnector struct {
	client  *vendorapi.Client
	session *vendorapi.Session
}

func newYurplan(creds Credentials, opts Options) (Connector, error) {
	if err := requireCredentials(Yurplan, map[string]string{
		"access key (client id)":     creds.AccessKey,
		"secret key (client secret)": creds.SecretKey,
	}); err != nil {
		return nil, err
	}

	client := vendorapi.NewClient(string(Yurplan), opts.baseURL(yurplanBaseURL, yurplanSandboxBaseURL, creds.Sandbox), opts.httpOptions())
	login := vendorapi.OAuth2Login(client, vendorapi.OAuth2Config{
		ClientID:     creds.AccessKey,
		ClientSecret: creds.SecretKey,
		TokenURL:     client.BaseURL() + "/v1/token",
	})
	return &yurplanConnector{
		client:  client,
		session: vendorapi.NewSession(string(Yurplan), login, nil),
	}, nil
}

func (c *yurplanConnector) Vendor() Vendor { return Yurplan }

func (c *yurplanConnector) Login(ctx context.Context) error {
	return fail(Yurplan, opLogin, c.session.Login(ctx))
}

func (c *yurplanConnector) Logout(ctx context.Context) error {
	return fail(Yurplan, opLogout, c.session.Logout(ctx))
}

func (c *yurplanConnector) State() vendorapi.AuthState { return c.session.State() }

type yurplanPagination struct {
	Page  flexInt `json:"page"`
	Pages flexInt `json:"pages"`
}

type yurplanEvent struct {
	ID       flexID `json:"id"`
	Name     string `json:"name"`
	Begin    string `json:"begin"`
	End      string `json:"end"`
	Category string `json:"category"`
	Place    *struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		Zipcode string `json:"zipcode"`
		City    string `json:"city"`
		Country string `json:"country"`
	} `json:"place"`
}

type yurplanTicket struct {
	ID         flexID    `json:"id"`
	Status     string    `json:"status"`
	PricePaid  flexFloat `json:"price_paid"`
	TicketType struct {
		Name    string     `json:"name"`
		Price   flexFloat  `json:"price"`
		VATRate *flexFloat `json:"vat_rate"`
	} `json:"ticket_type"`
}

func (c *yurplanConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, Yurplan, func(ctx context.Context) error {
		var resp struct {
			Results []yurplanEvent `json:"results"`
		}
		return c.get(ctx, "/v1/events", url.Values{"page": {"1"}, "per_page": {"1"}}, &resp)
	})
}

func (c *yurplanConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, Yurplan, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		return vendorapi.Paginate(ctx, string(Yurplan), func(ctx context.Context, page int) (int, bool, error) {
			var resp struct {
				Results    []yurplanEvent    `json:"results"`
				Pagination yurplanPagination `json:"pagination"`
			}
			query := url.Values{
				"page":     {strconv.Itoa(page)},
				"per_page": {strconv.Itoa(yurplanPageSize)},
				"begin":    {formatLocal(from)},
			}
			if err := c.get(ctx, "/v1/events", query, &resp); err != nil {
				return 0, false, err
			}
			for i := range resp.Results {
				if err := c.addEvent(ctx, acc, &resp.Results[i]); err != nil {
					return 0, false, err
				}
			}
			return len(resp.Results), page < int(resp.Pagination.Pages), nil
		})
	})
}

func (c *yurplanConnector) addEvent(ctx context.Context, acc *models.SerieAccumulator, ev *yurplanEvent) error {
	if ev.ID == "" {
		return connerr.NewVendorDataError("event without id", nil)
	}
	start, err := parseTime(ev.Begin)
	if err != nil {
		return err
	}
	end, err := parseOptionalTime(ev.End)
	if err != nil {
		return err
	}

	id := string(ev.ID)
	serie := models.LiteEventSerie{ExternalID: id, Name: ev.Name, PerformanceType: ev.Category}
	if ev.Place != nil && ev.Place.Name != "" {
		serie.Place = &models.Place{
			Name:       ev.Place.Name,
			Address:    ev.Place.Address,
			PostalCode: ev.Place.Zipcode,
			City:       ev.Place.City,
			Country:    ev.Place.Country,
		}
	}
	acc.AddSerie(serie)
	// A repeated event already has its tickets.
	if ok, added := acc.AddEvent(id, models.LiteEvent{ExternalID: id, StartAt: start, EndAt: end}); !ok || !added {
		return nil
	}

	path := "/v1/events/" + url.PathEscape(id) + "/tickets"
	return vendorapi.Paginate(ctx, string(Yurplan), func(ctx context.Context, page int) (int, bool, error) {
		var resp struct {
			Results    []yurplanTicket   `json:"results"`
			Pagination yurplanPagination `json:"pagination"`
		}
		query := url.Values{"page": {strconv.Itoa(page)}, "per_page": {strconv.Itoa(yurplanPageSize)}}
		if err := c.get(ctx, path, query, &resp); err != nil {
			return 0, false, err
		}
		for _, t := range resp.Results {
			if t.Status != "" && t.Status != "valid" {
				continue
			}
			category := t.TicketType.Name
			if category == "" {
				category = models.DefaultCategory
			}
			acc.AddTickets(id, id, models.LiteEventCategoryTickets{
				Category:                   category,
				Price:                      float64(t.TicketType.Price),
				NumberSold:                 1,
				TotalRevenueIncludingTaxes: float64(t.PricePaid),
				TaxRate:                    ratePtr(t.TicketType.VATRate),
			})
		}
		return len(resp.Results), page < int(resp.Pagination.Pages), nil
	})
}

func (c *yurplanConnector) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.client.DoWithSession(ctx, c.session, vendorapi.Request{Path: path, Query: query}, vendorapi.BearerAuth, out)
	return err
}
