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

// soTicketHosts maps each brand of the SoTicket platform to its API host.
var soTicketHosts = map[Vendor]string{
	SoTicket:    "https://api.soticket.net",
	Supersoniks: "https://api.supersoniks.com",
}

// soTicketConnector serves SoTicket and Supersoniks: same protocol and
// schema under two brands.
type soTicketConnector struct {
	brand   Vendor
	client  *vendorapi.Client
	session *vendorapi.Session
}

func newSoTicketBrand(brand Vendor) Constructor {
	return func(creds Credentials, opts Options) (Connector, error) {
		c, err := newSoTicket(brand, creds, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func newSoTicket(brand Vendor, creds Credentials, opts Options) (*soTicketConnector, error) {
	if err := requireCredentials(brand, map[string]string{
		"access key (username)": creds.AccessKey,
		"secret key (password)": creds.SecretKey,
	}); err != nil {
		return nil, err
	}

	c := &soTicketConnector{
		brand:  brand,
		client: vendorapi.NewClient(string(brand), opts.baseURL(soTicketHosts[brand], "", false), opts.httpOptions()),
	}
	c.session = vendorapi.NewSession(string(brand), c.loginFunc(creds.AccessKey, creds.SecretKey), c.logout)
	return c, nil
}

func (c *soTicketConnector) Vendor() Vendor { return c.brand }

func (c *soTicketConnector) Login(ctx context.Context) error {
	return fail(c.brand, opLogin, c.session.Login(ctx))
}

func (c *soTicketConnector) Logout(ctx context.Context) error {
	return fail(c.brand, opLogout, c.session.Logout(ctx))
}

func (c *soTicketConnector) State() vendorapi.AuthState { return c.session.State() }

func (c *soTicketConnector) loginFunc(username, password string) vendorapi.LoginFunc {
	return func(ctx context.Context) (vendorapi.Token, error) {
		var resp struct {
			Token     string  `json:"token"`
			ExpiresIn flexInt `json:"expires_in"`
		}
		req := vendorapi.Request{
			Method: http.MethodPost,
			Path:   "/api/login",
			JSON:   map[string]string{"username": username, "password": password},
		}
		if _, err := c.client.DoJSON(ctx, req, &resp); err != nil {
			return vendorapi.Token{}, vendorapi.AuthenticationOnStatus(err, http.StatusBadRequest, http.StatusUnprocessableEntity)
		}
		tok := vendorapi.Token{Value: resp.Token}
		if resp.ExpiresIn > 0 {
			tok.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
		}
		return tok, nil
	}
}

func (c *soTicketConnector) logout(ctx context.Context, tok vendorapi.Token) error {
	_, err := c.client.Do(ctx, vendorapi.Request{
		Method: http.MethodPost,
		Path:   "/api/logout",
		Header: http.Header{"Authorization": {"Bearer " + tok.Value}},
	})
	return err
}

type soTicketTicket struct {
	Category string     `json:"category"`
	Price    flexFloat  `json:"price"`
	Quantity flexInt    `json:"quantity"`
	TotalTTC flexFloat  `json:"total_ttc"`
	TotalHT  *flexFloat `json:"total_ht"`
}

type soTicketSession struct {
	ID        flexID           `json:"id"`
	StartDate string           `json:"start_date"`
	EndDate   string           `json:"end_date"`
	Tickets   []soTicketTicket `json:"tickets"`
}

type soTicketEvent struct {
	ID    flexID     `json:"id"`
	Title string     `json:"title"`
	Genre string     `json:"genre"`
	TVA   *flexFloat `json:"tva"`
	Venue *struct {
		Name       string  `json:"name"`
		Address    string  `json:"address"`
		PostalCode string  `json:"postal_code"`
		City       string  `json:"city"`
		Capacity   flexInt `json:"capacity"`
	} `json:"venue"`
	Sessions []soTicketSession `json:"sessions"`
}

func (c *soTicketConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, c.brand, func(ctx context.Context) error {
		var me map[string]interface{}
		return c.get(ctx, "/api/me", nil, &me)
	})
}

func (c *soTicketConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, c.brand, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		return vendorapi.Paginate(ctx, string(c.brand), func(ctx context.Context, page int) (int, bool, error) {
			var resp struct {
				Data        []soTicketEvent `json:"data"`
				CurrentPage flexInt         `json:"current_page"`
				LastPage    flexInt         `json:"last_page"`
			}
			query := url.Values{
				"page":      {strconv.Itoa(page)},
				"date_from": {formatLocal(from)},
			}
			if to != nil {
				query.Set("date_to", formatLocal(*to))
			}
			if err := c.get(ctx, "/api/events", query, &resp); err != nil {
				return 0, false, err
			}
			for i := range resp.Data {
				if err := addSoTicketEvent(acc, &resp.Data[i]); err != nil {
					return 0, false, err
				}
			}
			return len(resp.Data), page < int(resp.LastPage), nil
		})
	})
}

func addSoTicketEvent(acc *models.SerieAccumulator, ev *soTicketEvent) error {
	if ev.ID == "" {
		return connerr.NewVendorDataError("event without id", nil)
	}
	serieID := string(ev.ID)
	serie := models.LiteEventSerie{
		ExternalID:      serieID,
		Name:            ev.Title,
		PerformanceType: ev.Genre,
		TaxRate:         ratePtr(ev.TVA),
	}
	if ev.Venue != nil {
		serie.Place = &models.Place{
			Name:       ev.Venue.Name,
			Address:    ev.Venue.Address,
			PostalCode: ev.Venue.PostalCode,
			City:       ev.Venue.City,
			Country:    "FR",
			Capacity:   int(ev.Venue.Capacity),
		}
	}
	acc.AddSerie(serie)

	for _, s := range ev.Sessions {
		start, err := parseTime(s.StartDate)
		if err != nil {
			return err
		}
		end, err := parseOptionalTime(s.EndDate)
		if err != nil {
			return err
		}
		eventID := string(s.ID)
		if ok, _ := acc.AddEvent(serieID, models.LiteEvent{ExternalID: eventID, StartAt: start, EndAt: end}); !ok {
			continue
		}
		tickets := make([]models.LiteEventCategoryTickets, 0, len(s.Tickets))
		for _, t := range s.Tickets {
			category := t.Category
			if category == "" {
				category = models.DefaultCategory
			}
			var excl *float64
			if t.TotalHT != nil {
				excl = models.Float64(float64(*t.TotalHT))
			}
			tickets = append(tickets, models.LiteEventCategoryTickets{
				Category:                   category,
				Price:                      float64(t.Price),
				NumberSold:                 int(t.Quantity),
				TotalRevenueIncludingTaxes: float64(t.TotalTTC),
				TotalRevenueExcludingTaxes: excl,
				TaxRate:                    ratePtr(ev.TVA),
			})
		}
		acc.SetTickets(serieID, eventID, tickets)
	}
	return nil
}

func (c *soTicketConnector) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.client.DoWithSession(ctx, c.session, vendorapi.Request{Path: path, Query: query}, vendorapi.BearerAuth, out)
	return err
}
