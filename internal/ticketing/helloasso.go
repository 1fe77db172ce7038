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
	helloAssoBaseURL        = "https://api.helloasso.com"
	helloAssoSandboxBaseURL = "https://api.helloasso-sandbox.com"
	helloAssoPageSize       = 100
)

// helloAssoConnector maps each event form to a serie with a single
// performance. Amounts are in cents.
type helloAssoConnector struct {
	client  *vendorapi.Client
	session *vendorapi.Session
	org     string
}

func newHelloAsso(creds Credentials, opts Options) (Connector, error) {
	if err := requireCredentials(HelloAsso, map[string]string{
		"access key (client id)":         creds.AccessKey,
		"secret key (client secret)":     creds.SecretKey,
		"account id (organization slug)": creds.AccountID,
	}); err != nil {
		return nil, err
	}

	base := opts.baseURL(helloAssoBaseURL, helloAssoSandboxBaseURL, creds.Sandbox)
	client := vendorapi.NewClient(string(HelloAsso), base, opts.httpOptions())
	login := vendorapi.OAuth2Login(client, vendorapi.OAuth2Config{
		ClientID:     creds.AccessKey,
		ClientSecret: creds.SecretKey,
		TokenURL:     client.BaseURL() + "/oauth2/token",
	})

	return &helloAssoConnector{
		client:  client,
		session: vendorapi.NewSession(string(HelloAsso), login, nil),
		org:     creds.AccountID,
	}, nil
}

func (c *helloAssoConnector) Vendor() Vendor { return HelloAsso }

func (c *helloAssoConnector) Login(ctx context.Context) error {
	return fail(HelloAsso, opLogin, c.session.Login(ctx))
}

// Logout drops the token; HelloAsso has no revocation endpoint.
func (c *helloAssoConnector) Logout(ctx context.Context) error {
	return fail(HelloAsso, opLogout, c.session.Logout(ctx))
}

func (c *helloAssoConnector) State() vendorapi.AuthState { return c.session.State() }

type helloAssoPagination struct {
	PageIndex  int `json:"pageIndex"`
	TotalPages int `json:"totalPages"`
}

type helloAssoPlace struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

type helloAssoForm struct {
	FormSlug  string          `json:"formSlug"`
	Title     string          `json:"title"`
	StartDate string          `json:"startDate"`
	EndDate   string          `json:"endDate"`
	Place     *helloAssoPlace `json:"place"`
}

type helloAssoItem struct {
	ID     flexID    `json:"id"`
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	State  string    `json:"state"`
	Amount flexFloat `json:"amount"`
}

func (c *helloAssoConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, HelloAsso, func(ctx context.Context) error {
		var org struct {
			OrganizationSlug string `json:"organizationSlug"`
		}
		return c.get(ctx, "/v5/organizations/"+url.PathEscape(c.org), nil, &org)
	})
}

func (c *helloAssoConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, HelloAsso, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		formsPath := "/v5/organizations/" + url.PathEscape(c.org) + "/forms"
		return vendorapi.Paginate(ctx, string(HelloAsso), func(ctx context.Context, page int) (int, bool, error) {
			var resp struct {
				Data       []helloAssoForm     `json:"data"`
				Pagination helloAssoPagination `json:"pagination"`
			}
			query := url.Values{
				"formTypes": {"Event"},
				"pageIndex": {strconv.Itoa(page)},
				"pageSize":  {strconv.Itoa(helloAssoPageSize)},
			}
			if err := c.get(ctx, formsPath, query, &resp); err != nil {
				return 0, false, err
			}
			for i := range resp.Data {
				if err := c.addForm(ctx, acc, &resp.Data[i]); err != nil {
					return 0, false, err
				}
			}
			return len(resp.Data), page < resp.Pagination.TotalPages, nil
		})
	})
}

func (c *helloAssoConnector) addForm(ctx context.Context, acc *models.SerieAccumulator, form *helloAssoForm) error {
	if form.FormSlug == "" {
		return connerr.NewVendorDataError("event form without slug", nil)
	}
	if form.StartDate == "" {
		return nil
	}
	start, err := parseTime(form.StartDate)
	if err != nil {
		return err
	}
	end, err := parseOptionalTime(form.EndDate)
	if err != nil {
		return err
	}

	serie := models.LiteEventSerie{ExternalID: form.FormSlug, Name: form.Title}
	if form.Place != nil && form.Place.Name != "" {
		serie.Place = &models.Place{
			Name:       form.Place.Name,
			Address:    form.Place.Address,
			PostalCode: form.Place.ZipCode,
			City:       form.Place.City,
			Country:    form.Place.Country,
		}
	}
	acc.AddSerie(serie)
	// A repeated event already has its tickets.
	if ok, added := acc.AddEvent(form.FormSlug, models.LiteEvent{ExternalID: form.FormSlug, StartAt: start, EndAt: end}); !ok || !added {
		return nil
	}

	itemsPath := "/v5/organizations/" + url.PathEscape(c.org) + "/forms/Event/" + url.PathEscape(form.FormSlug) + "/items"
	return vendorapi.Paginate(ctx, string(HelloAsso), func(ctx context.Context, page int) (int, bool, error) {
		var resp struct {
			Data       []helloAssoItem     `json:"data"`
			Pagination helloAssoPagination `json:"pagination"`
		}
		query := url.Values{
			"pageIndex":  {strconv.Itoa(page)},
			"pageSize":   {strconv.Itoa(helloAssoPageSize)},
			"itemStates": {"Processed"},
		}
		if err := c.get(ctx, itemsPath, query, &resp); err != nil {
			return 0, false, err
		}
		for _, item := range resp.Data {
			if item.Type != "" && item.Type != "Registration" {
				continue
			}
			if item.State != "" && item.State != "Processed" {
				continue
			}
			category := item.Name
			if category == "" {
				category = models.DefaultCategory
			}
			amount := cents(item.Amount)
			acc.AddTickets(form.FormSlug, form.FormSlug, models.LiteEventCategoryTickets{
				Category:                   category,
				Price:                      amount,
				NumberSold:                 1,
				TotalRevenueIncludingTaxes: amount,
			})
		}
		return len(resp.Data), page < resp.Pagination.TotalPages, nil
	})
}

func (c *helloAssoConnector) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.client.DoWithSession(ctx, c.session, vendorapi.Request{Path: path, Query: query}, vendorapi.BearerAuth, out)
	return err
}
