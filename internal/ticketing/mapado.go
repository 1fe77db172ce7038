// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

const (
	mapadoBaseURL         = "https://ticketing.mapado.net"
	mapadoSandboxBaseURL  = "https://ticketing.preprod.mapado.net"
	mapadoOAuthURL        = "https://oauth2.mapado.com/oauth/v2/token"
	mapadoSandboxOAuthURL = "https://oauth2.preprod.mapado.com/oauth/v2/token"
	mapadoPageSize        = 100
)

// mapadoConnector walks event dates, then the tickets of each date. Lists
// are JSON-LD collections chained by hydra:next.
type mapadoConnector struct {
	client  *vendorapi.Client
	session *vendorapi.Session
}

func newMapado(creds Credentials, opts Options) (Connector, error) {
	if err := requireCredentials(Mapado, map[string]string{
		"access key (client id)":     creds.AccessKey,
		"secret key (client secret)": creds.SecretKey,
	}); err != nil {
		return nil, err
	}

	client := vendorapi.NewClient(string(Mapado), opts.baseURL(mapadoBaseURL, mapadoSandboxBaseURL, creds.Sandbox), opts.httpOptions())
	tokenURL := mapadoOAuthURL
	switch {
	case opts.BaseURL != "":
		tokenURL = client.BaseURL() + "/oauth/v2/token"
	case creds.Sandbox:
		tokenURL = mapadoSandboxOAuthURL
	}
	login := vendorapi.OAuth2Login(client, vendorapi.OAuth2Config{
		ClientID:     creds.AccessKey,
		ClientSecret: creds.SecretKey,
		TokenURL:     tokenURL,
		Scopes:       []string{"ticketing:events:read", "ticketing:tickets:read"},
	})

	return &mapadoConnector{
		client:  client,
		session: vendorapi.NewSession(string(Mapado), login, nil),
	}, nil
}

func (c *mapadoConnector) Vendor() Vendor { return Mapado }

func (c *mapadoConnector) Login(ctx context.Context) error {
	return fail(Mapado, opLogin, c.session.Login(ctx))
}

func (c *mapadoConnector) Logout(ctx context.Context) error {
	return fail(Mapado, opLogout, c.session.Logout(ctx))
}

func (c *mapadoConnector) State() vendorapi.AuthState { return c.session.State() }

type hydraView struct {
	Next string `json:"hydra:next"`
}

type mapadoVenue struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"zipCode"`
	City       string `json:"city"`
	Country    string `json:"countryCode"`
}

type mapadoTicketing struct {
	ID      string       `json:"@id"`
	Title   string       `json:"title"`
	Type    string       `json:"type"`
	Venue   *mapadoVenue `json:"venue"`
	VATRate *flexFloat   `json:"vatRate"`
}

type mapadoEventDate struct {
	ID        string           `json:"@id"`
	StartDate string           `json:"startDate"`
	EndDate   string           `json:"endDate"`
	Ticketing *mapadoTicketing `json:"ticketing"`
}

type mapadoTicket struct {
	ID                 string     `json:"@id"`
	Status             string     `json:"status"`
	Amount             flexFloat  `json:"amount"`
	AmountWithoutTaxes *flexFloat `json:"amountWithoutTaxes"`
	TicketPrice        struct {
		Name        string     `json:"name"`
		FacialValue flexFloat  `json:"facialValue"`
		VATRate     *flexFloat `json:"vatRate"`
	} `json:"ticketPrice"`
}

func (c *mapadoConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, Mapado, func(ctx context.Context) error {
		var me map[string]interface{}
		return c.get(ctx, "/v1/me", nil, &me)
	})
}

func (c *mapadoConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, Mapado, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		query := url.Values{
			"itemsPerPage":     {strconv.Itoa(mapadoPageSize)},
			"startDate[after]": {from.UTC().Format(time.RFC3339)},
			"fields":           {"@id,startDate,endDate,ticketing{@id,title,type,vatRate,venue}"},
		}
		if to != nil {
			query.Set("startDate[strictly_before]", to.UTC().Format(time.RFC3339))
		}

		next := "/v1/event_dates"
		return vendorapi.Paginate(ctx, string(Mapado), func(ctx context.Context, page int) (int, bool, error) {
			var resp struct {
				Members []mapadoEventDate `json:"hydra:member"`
				View    hydraView         `json:"hydra:view"`
			}
			var q url.Values
			if page == 1 {
				q = query
			}
			if err := c.get(ctx, next, q, &resp); err != nil {
				return 0, false, err
			}
			for i := range resp.Members {
				if err := c.addEventDate(ctx, acc, &resp.Members[i]); err != nil {
					return 0, false, err
				}
			}
			next = resp.View.Next
			return len(resp.Members), next != "", nil
		})
	})
}

func (c *mapadoConnector) addEventDate(ctx context.Context, acc *models.SerieAccumulator, ed *mapadoEventDate) error {
	if ed.ID == "" || ed.Ticketing == nil || ed.Ticketing.ID == "" {
		return connerr.NewVendorDataError("event date without id or ticketing", nil)
	}
	start, err := parseTime(ed.StartDate)
	if err != nil {
		return err
	}
	end, err := parseOptionalTime(ed.EndDate)
	if err != nil {
		return err
	}

	t := ed.Ticketing
	serie := models.LiteEventSerie{
		ExternalID:      t.ID,
		Name:            t.Title,
		PerformanceType: t.Type,
		TaxRate:         ratePtr(t.VATRate),
	}
	if t.Venue != nil {
		serie.Place = &models.Place{
			Name:       t.Venue.Name,
			Address:    t.Venue.Address,
			PostalCode: t.Venue.PostalCode,
			City:       t.Venue.City,
			Country:    t.Venue.Country,
		}
	}
	acc.AddSerie(serie)
	// A repeated event already has its tickets.
	if ok, added := acc.AddEvent(t.ID, models.LiteEvent{ExternalID: ed.ID, StartAt: start, EndAt: end}); !ok || !added {
		return nil
	}

	next := "/v1/tickets"
	query := url.Values{
		"eventDate":    {ed.ID},
		"itemsPerPage": {strconv.Itoa(mapadoPageSize)},
		"fields":       {"@id,status,amount,amountWithoutTaxes,ticketPrice{name,facialValue,vatRate}"},
	}
	return vendorapi.Paginate(ctx, string(Mapado), func(ctx context.Context, page int) (int, bool, error) {
		var resp struct {
			Members []mapadoTicket `json:"hydra:member"`
			View    hydraView      `json:"hydra:view"`
		}
		var q url.Values
		if page == 1 {
			q = query
		}
		if err := c.get(ctx, next, q, &resp); err != nil {
			return 0, false, err
		}
		for i := range resp.Members {
			tk := &resp.Members[i]
			if tk.Status != "paid" && tk.Status != "" {
				continue
			}
			category := tk.TicketPrice.Name
			if category == "" {
				category = models.DefaultCategory
			}
			var excl *float64
			if tk.AmountWithoutTaxes != nil {
				excl = models.Float64(float64(*tk.AmountWithoutTaxes))
			}
			acc.AddTickets(t.ID, ed.ID, models.LiteEventCategoryTickets{
				Category:                   category,
				Price:                      float64(tk.TicketPrice.FacialValue),
				NumberSold:                 1,
				TotalRevenueIncludingTaxes: float64(tk.Amount),
				TotalRevenueExcludingTaxes: excl,
				TaxRate:                    ratePtr(tk.TicketPrice.VATRate),
			})
		}
		next = resp.View.Next
		return len(resp.Members), next != "", nil
	})
}

func (c *mapadoConnector) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	header := http.Header{"Accept": {"application/ld+json"}}
	_, err := c.client.DoWithSession(ctx, c.session, vendorapi.Request{Path: path, Query: query, Header: header}, vendorapi.BearerAuth, out)
	return err
}
