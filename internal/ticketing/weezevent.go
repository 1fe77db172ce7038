// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

const (
	weezeventBaseURL        = "https://api.weezevent.com"
	weezeventSandboxBaseURL = "https://api.sandbox.weezevent.com"

	// weezeventPageSize is the participant page size. A shorter page is the
	// last one: the API reports no total.
	weezeventPageSize = 500
)

// weezeventConnector authenticates with an API key plus an access token
// obtained from the account username and password. Both travel in the query
// string. Every Weezevent event is a serie with one performance.
type weezeventConnector struct {
	client  *vendorapi.Client
	session *vendorapi.Session
	apiKey  string
}

func newWeezevent(creds Credentials, opts Options) (Connector, error) {
	if err := requireCredentials(Weezevent, map[string]string{
		"access key (username)": creds.AccessKey,
		"secret key (password)": creds.SecretKey,
		"account id (api key)":  creds.AccountID,
	}); err != nil {
		return nil, err
	}

	c := &weezeventConnector{
		client: vendorapi.NewClient(string(Weezevent), opts.baseURL(weezeventBaseURL, weezeventSandboxBaseURL, creds.Sandbox), opts.httpOptions()),
		apiKey: creds.AccountID,
	}
	c.session = vendorapi.NewSession(string(Weezevent), c.loginFunc(creds.AccessKey, creds.SecretKey), nil)
	return c, nil
}

func (c *weezeventConnector) Vendor() Vendor { return Weezevent }

func (c *weezeventConnector) Login(ctx context.Context) error {
	return fail(Weezevent, opLogin, c.session.Login(ctx))
}

// Logout forgets the access token; Weezevent tokens cannot be revoked.
func (c *weezeventConnector) Logout(ctx context.Context) error {
	return fail(Weezevent, opLogout, c.session.Logout(ctx))
}

func (c *weezeventConnector) State() vendorapi.AuthState { return c.session.State() }

func (c *weezeventConnector) loginFunc(username, password string) vendorapi.LoginFunc {
	return func(ctx context.Context) (vendorapi.Token, error) {
		var resp struct {
			AccessToken string `json:"accessToken"`
		}
		req := vendorapi.Request{
			Method: http.MethodPost,
			Path:   "/auth/access_token",
			Form:   url.Values{"username": {username}, "password": {password}, "api_key": {c.apiKey}},
		}
		if _, err := c.client.DoJSON(ctx, req, &resp); err != nil {
			return vendorapi.Token{}, vendorapi.AuthenticationOnStatus(err, http.StatusBadRequest)
		}
		return vendorapi.Token{Value: resp.AccessToken}, nil
	}
}

func (c *weezeventConnector) authenticate(req *vendorapi.Request, token string) {
	req.Query.Set("api_key", c.apiKey)
	req.Query.Set("access_token", token)
}

type weezeventEvent struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
	Date struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"date"`
	Venue *struct {
		Name    string `json:"name"`
		Address string `json:"address"`
		City    string `json:"city"`
		ZipCode string `json:"zip_code"`
		Country string `json:"country"`
	} `json:"venue"`
}

type weezeventTicket struct {
	ID    flexID     `json:"id"`
	Name  string     `json:"name"`
	Price flexFloat  `json:"price"`
	VAT   *flexFloat `json:"vat"`
}

type weezeventParticipant struct {
	ID       flexID   `json:"id_participant"`
	TicketID flexID   `json:"id_ticket"`
	Paid     flexBool `json:"paid"`
	Deleted  flexBool `json:"deleted"`
}

func (c *weezeventConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, Weezevent, func(ctx context.Context) error {
		var resp struct {
			Events []weezeventEvent `json:"events"`
		}
		return c.get(ctx, "/events", nil, &resp)
	})
}

func (c *weezeventConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, Weezevent, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		var resp struct {
			Events []weezeventEvent `json:"events"`
		}
		if err := c.get(ctx, "/events", url.Values{"include_closed": {"true"}}, &resp); err != nil {
			return err
		}
		for i := range resp.Events {
			if err := c.addEvent(ctx, acc, &resp.Events[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *weezeventConnector) addEvent(ctx context.Context, acc *models.SerieAccumulator, ev *weezeventEvent) error {
	if ev.ID == "" {
		return connerr.NewVendorDataError("event without id", nil)
	}
	if ev.Date.Start == "" {
		return nil
	}
	start, err := parseTime(ev.Date.Start)
	if err != nil {
		return err
	}
	end, err := parseOptionalTime(ev.Date.End)
	if err != nil {
		return err
	}

	id := string(ev.ID)
	serie := models.LiteEventSerie{ExternalID: id, Name: ev.Name}
	if ev.Venue != nil && ev.Venue.Name != "" {
		serie.Place = &models.Place{
			Name:       ev.Venue.Name,
			Address:    ev.Venue.Address,
			PostalCode: ev.Venue.ZipCode,
			City:       ev.Venue.City,
			Country:    ev.Venue.Country,
		}
	}
	acc.AddSerie(serie)
	// A repeated event already has its tickets.
	if ok, added := acc.AddEvent(id, models.LiteEvent{ExternalID: id, StartAt: start, EndAt: end}); !ok || !added {
		return nil
	}

	tickets, err := c.tickets(ctx, id)
	if err != nil {
		return err
	}

	return vendorapi.Paginate(ctx, string(Weezevent), func(ctx context.Context, page int) (int, bool, error) {
		var resp struct {
			Participants []weezeventParticipant `json:"participants"`
		}
		query := url.Values{
			"id_event[]": {id},
			"full":       {"1"},
			"max":        {strconv.Itoa(weezeventPageSize)},
			"page":       {strconv.Itoa(page - 1)},
		}
		if err := c.get(ctx, "/participant/list", query, &resp); err != nil {
			return 0, false, err
		}
		for _, p := range resp.Participants {
			if !bool(p.Paid) || bool(p.Deleted) {
				continue
			}
			t, ok := tickets[string(p.TicketID)]
			if !ok {
				return 0, false, connerr.NewVendorDataError(fmt.Sprintf("participant %s references unknown ticket %s", p.ID, p.TicketID), nil)
			}
			category := t.Name
			if category == "" {
				category = models.DefaultCategory
			}
			acc.AddTickets(id, id, models.LiteEventCategoryTickets{
				Category:                   category,
				Price:                      float64(t.Price),
				NumberSold:                 1,
				TotalRevenueIncludingTaxes: float64(t.Price),
				TaxRate:                    ratePtr(t.VAT),
			})
		}
		return len(resp.Participants), len(resp.Participants) >= weezeventPageSize, nil
	})
}

// tickets returns the ticket types of an event by id.
func (c *weezeventConnector) tickets(ctx context.Context, eventID string) (map[string]weezeventTicket, error) {
	var resp struct {
		Events []struct {
			ID      flexID            `json:"id"`
			Tickets []weezeventTicket `json:"tickets"`
		} `json:"events"`
	}
	if err := c.get(ctx, "/tickets", url.Values{"id_event[]": {eventID}}, &resp); err != nil {
		return nil, err
	}
	out := make(map[string]weezeventTicket)
	for _, ev := range resp.Events {
		for _, t := range ev.Tickets {
			out[string(t.ID)] = t
		}
	}
	return out, nil
}

func (c *weezeventConnector) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.client.DoWithSession(ctx, c.session, vendorapi.Request{Path: path, Query: query}, c.authenticate, out)
	return err
}
