// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

const billetwebBaseURL = "https://www.billetweb.fr"

// billetwebConnector reads events, dates and attendees. Billetweb lists are
// never paginated.
type billetwebConnector struct {
	client *vendorapi.Client
	user   string
	key    string
}

func newBilletweb(creds Credentials, opts Options) (Connector, error) {
	if err := requireCredentials(Billetweb, map[string]string{
		"access key (user id)": creds.AccessKey,
		"secret key (api key)": creds.SecretKey,
	}); err != nil {
		return nil, err
	}
	return &billetwebConnector{
		client: vendorapi.NewClient(string(Billetweb), opts.baseURL(billetwebBaseURL, "", false), opts.httpOptions()),
		user:   creds.AccessKey,
		key:    creds.SecretKey,
	}, nil
}

func (c *billetwebConnector) Vendor() Vendor { return Billetweb }

type billetwebEvent struct {
	ID         flexID     `json:"id"`
	Name       string     `json:"name"`
	Start      string     `json:"start"`
	End        string     `json:"end"`
	Place      string     `json:"place"`
	Address    string     `json:"address"`
	PostalCode string     `json:"zip"`
	City       string     `json:"city"`
	Category   string     `json:"category"`
	TaxRate    *flexFloat `json:"vat"`
}

type billetwebDate struct {
	ID    flexID `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type billetwebAttendee struct {
	ID        flexID    `json:"id"`
	Ticket    string    `json:"ticket"`
	Price     flexFloat `json:"price"`
	SessionID flexID    `json:"session_id"`
	OrderPaid flexBool  `json:"order_paid"`
	Disabled  flexBool  `json:"disabled"`
}

func (c *billetwebConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, Billetweb, func(ctx context.Context) error {
		var events []billetwebEvent
		return c.get(ctx, "/api/events", nil, &events)
	})
}

func (c *billetwebConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, Billetweb, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		var events []billetwebEvent
		if err := c.get(ctx, "/api/events", url.Values{"past": {"1"}}, &events); err != nil {
			return err
		}

		for i := range events {
			ev := &events[i]
			if ev.ID == "" {
				return connerr.NewVendorDataError("event without id", nil)
			}
			if err := c.addEvent(ctx, acc, ev, from, to); err != nil {
				return err
			}
		}
		return nil
	})
}

func (c *billetwebConnector) addEvent(ctx context.Context, acc *models.SerieAccumulator, ev *billetwebEvent, from time.Time, to *time.Time) error {
	// Events entirely before the window have nothing to contribute.
	if end, err := parseOptionalTime(ev.End); err == nil && end != nil && end.Before(from) {
		return nil
	}
	if start, err := parseOptionalTime(ev.Start); err == nil && start != nil && to != nil && !start.Before(*to) {
		return nil
	}

	serieID := string(ev.ID)
	acc.AddSerie(models.LiteEventSerie{
		ExternalID:      serieID,
		Name:            ev.Name,
		PerformanceType: ev.Category,
		Place:           billetwebPlace(ev),
		TaxRate:         ratePtr(ev.TaxRate),
	})

	var dates []billetwebDate
	if err := c.get(ctx, "/api/event/"+serieID+"/dates", nil, &dates); err != nil {
		return err
	}

	// Events without dates are single performances identified by the event.
	if len(dates) == 0 {
		dates = []billetwebDate{{ID: ev.ID, Start: ev.Start, End: ev.End}}
	}
	// Only dates seen for the first time take attendees; a serie listed twice
	// is counted once.
	added := make(map[string]bool, len(dates))
	for _, d := range dates {
		start, err := parseTime(d.Start)
		if err != nil {
			return err
		}
		end, err := parseOptionalTime(d.End)
		if err != nil {
			return err
		}
		if ok, isNew := acc.AddEvent(serieID, models.LiteEvent{ExternalID: string(d.ID), StartAt: start, EndAt: end}); ok && isNew {
			added[string(d.ID)] = true
		}
	}
	if len(added) == 0 {
		return nil
	}

	var attendees []billetwebAttendee
	if err := c.get(ctx, "/api/event/"+serieID+"/attendees", nil, &attendees); err != nil {
		return err
	}
	single := len(dates) == 1
	for _, a := range attendees {
		if !bool(a.OrderPaid) || bool(a.Disabled) {
			continue
		}
		eventID := string(a.SessionID)
		if single || eventID == "" {
			eventID = string(dates[0].ID)
		}
		if !added[eventID] {
			continue
		}
		category := a.Ticket
		if category == "" {
			category = models.DefaultCategory
		}
		acc.AddTickets(serieID, eventID, models.LiteEventCategoryTickets{
			Category:                   category,
			Price:                      float64(a.Price),
			NumberSold:                 1,
			TotalRevenueIncludingTaxes: float64(a.Price),
		})
	}
	return nil
}

func billetwebPlace(ev *billetwebEvent) *models.Place {
	if ev.Place == "" && ev.City == "" {
		return nil
	}
	return &models.Place{Name: ev.Place, Address: ev.Address, PostalCode: ev.PostalCode, City: ev.City, Country: "FR"}
}

// get adds the key pair and decodes a list. Billetweb answers bad keys with
// 200 and an {"error": ...} object.
func (c *billetwebConnector) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	q := url.Values{"user": {c.user}, "key": {c.key}, "version": {"1"}}
	for k, v := range query {
		q[k] = v
	}
	resp, err := c.client.Do(ctx, vendorapi.Request{Path: path, Query: q})
	if err != nil {
		return err
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '{' {
		var e struct {
			Error       string `json:"error"`
			Description string `json:"description"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg := e.Error
			if e.Description != "" {
				msg += ": " + e.Description
			}
			if billetwebAuthErrors[e.Error] {
				return connerr.NewAuthenticationError(msg, nil)
			}
			return connerr.NewVendorDataError(msg, nil)
		}
	}
	return resp.Decode(out)
}

// billetwebAuthErrors are the error codes of a rejected user or key. Other
// codes answered with 200 describe the request itself.
var billetwebAuthErrors = map[string]bool{
	"invalid_key":  true,
	"invalid_user": true,
	"unknown_user": true,
}
