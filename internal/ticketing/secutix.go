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
	"strings"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

const (
	secutixBaseURL  = "https://api.secutix.com"
	secutixPageSize = 100
)

// secutixConnector logs in with a username and password and carries the
// session cookie the login sets. Self-hosted institutions point BaseURL at
// their own instance.
type secutixConnector struct {
	client  *vendorapi.Client
	session *vendorapi.Session
}

func newSecutix(creds Credentials, opts Options) (Connector, error) {
	if err := requireCredentials(Secutix, map[string]string{
		"access key (username)": creds.AccessKey,
		"secret key (password)": creds.SecretKey,
	}); err != nil {
		return nil, err
	}

	c := &secutixConnector{
		client: vendorapi.NewClient(string(Secutix), opts.baseURL(secutixBaseURL, "", false), opts.httpOptions()),
	}
	c.session = vendorapi.NewSession(string(Secutix), c.loginFunc(creds.AccessKey, creds.SecretKey, creds.AccountID), c.logout)
	return c, nil
}

func (c *secutixConnector) Vendor() Vendor { return Secutix }

func (c *secutixConnector) Login(ctx context.Context) error {
	return fail(Secutix, opLogin, c.session.Login(ctx))
}

func (c *secutixConnector) Logout(ctx context.Context) error {
	return fail(Secutix, opLogout, c.session.Logout(ctx))
}

func (c *secutixConnector) State() vendorapi.AuthState { return c.session.State() }

// loginFunc stores the session cookie as "name=value" in the token.
func (c *secutixConnector) loginFunc(username, password, institution string) vendorapi.LoginFunc {
	return func(ctx context.Context) (vendorapi.Token, error) {
		body := map[string]string{"username": username, "password": password}
		if institution != "" {
			body["institution"] = institution
		}
		resp, err := c.client.Do(ctx, vendorapi.Request{Method: http.MethodPost, Path: "/api/v1/login", JSON: body})
		if err != nil {
			return vendorapi.Token{}, vendorapi.AuthenticationOnStatus(err, http.StatusBadRequest)
		}

		for _, ck := range resp.Cookies {
			if ck.Value == "" || !strings.Contains(strings.ToUpper(ck.Name), "SESSION") {
				continue
			}
			tok := vendorapi.Token{Value: ck.Name + "=" + ck.Value}
			switch {
			case !ck.Expires.IsZero():
				tok.ExpiresAt = ck.Expires
			case ck.MaxAge > 0:
				tok.ExpiresAt = time.Now().Add(time.Duration(ck.MaxAge) * time.Second)
			}
			return tok, nil
		}
		return vendorapi.Token{}, connerr.NewVendorDataError("login set no session cookie", nil)
	}
}

func (c *secutixConnector) logout(ctx context.Context, tok vendorapi.Token) error {
	_, err := c.client.Do(ctx, vendorapi.Request{
		Method: http.MethodPost,
		Path:   "/api/v1/logout",
		Header: http.Header{"Cookie": {tok.Value}},
	})
	return err
}

func cookieAuth(req *vendorapi.Request, token string) {
	req.Header.Set("Cookie", token)
}

type secutixPrice struct {
	Category       string     `json:"category"`
	UnitPrice      flexFloat  `json:"unitPrice"`
	Sold           flexInt    `json:"sold"`
	Revenue        flexFloat  `json:"revenue"`
	RevenueExclTax *flexFloat `json:"revenueExclTax"`
}

type secutixPerformance struct {
	ID          flexID     `json:"id"`
	ProductID   flexID     `json:"productId"`
	ProductName string     `json:"productName"`
	Genre       string     `json:"genre"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	VATRate     *flexFloat `json:"vatRate"`
	Venue       *struct {
		Name       string  `json:"name"`
		Address    string  `json:"address"`
		PostalCode string  `json:"postalCode"`
		City       string  `json:"city"`
		Country    string  `json:"country"`
		Capacity   flexInt `json:"capacity"`
	} `json:"venue"`
	Prices []secutixPrice `json:"prices"`
}

func (c *secutixConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, Secutix, func(ctx context.Context) error {
		var me map[string]interface{}
		return c.get(ctx, "/api/v1/session", nil, &me)
	})
}

func (c *secutixConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, Secutix, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		offset := 0
		return vendorapi.Paginate(ctx, string(Secutix), func(ctx context.Context, _ int) (int, bool, error) {
			var resp struct {
				Total flexInt              `json:"total"`
				Items []secutixPerformance `json:"items"`
			}
			query := url.Values{
				"offset": {strconv.Itoa(offset)},
				"limit":  {strconv.Itoa(secutixPageSize)},
				"from":   {from.UTC().Format(time.RFC3339)},
			}
			if to != nil {
				query.Set("to", to.UTC().Format(time.RFC3339))
			}
			if err := c.get(ctx, "/api/v1/performances", query, &resp); err != nil {
				return 0, false, err
			}
			for i := range resp.Items {
				if err := addSecutixPerformance(acc, &resp.Items[i]); err != nil {
					return 0, false, err
				}
			}
			offset += len(resp.Items)
			return len(resp.Items), len(resp.Items) > 0 && offset < int(resp.Total), nil
		})
	})
}

func addSecutixPerformance(acc *models.SerieAccumulator, p *secutixPerformance) error {
	if p.ID == "" || p.ProductID == "" {
		return connerr.NewVendorDataError("performance without id or product", nil)
	}
	start, err := parseTime(p.Start)
	if err != nil {
		return err
	}
	end, err := parseOptionalTime(p.End)
	if err != nil {
		return err
	}

	serieID := string(p.ProductID)
	serie := models.LiteEventSerie{
		ExternalID:      serieID,
		Name:            p.ProductName,
		PerformanceType: p.Genre,
		TaxRate:         ratePtr(p.VATRate),
	}
	if p.Venue != nil {
		serie.Place = &models.Place{
			Name:       p.Venue.Name,
			Address:    p.Venue.Address,
			PostalCode: p.Venue.PostalCode,
			City:       p.Venue.City,
			Country:    p.Venue.Country,
			Capacity:   int(p.Venue.Capacity),
		}
	}
	acc.AddSerie(serie)

	eventID := string(p.ID)
	if ok, _ := acc.AddEvent(serieID, models.LiteEvent{ExternalID: eventID, StartAt: start, EndAt: end}); !ok {
		return nil
	}
	tickets := make([]models.LiteEventCategoryTickets, 0, len(p.Prices))
	for _, pr := range p.Prices {
		category := pr.Category
		if category == "" {
			category = models.DefaultCategory
		}
		var excl *float64
		if pr.RevenueExclTax != nil {
			excl = models.Float64(float64(*pr.RevenueExclTax))
		}
		tickets = append(tickets, models.LiteEventCategoryTickets{
			Category:                   category,
			Price:                      float64(pr.UnitPrice),
			NumberSold:                 int(pr.Sold),
			TotalRevenueIncludingTaxes: float64(pr.Revenue),
			TotalRevenueExcludingTaxes: excl,
			TaxRate:                    ratePtr(p.VATRate),
		})
	}
	// Totals of a performance repeated across pages replace the first copy.
	acc.SetTickets(serieID, eventID, tickets)
	return nil
}

func (c *secutixConnector) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.client.DoWithSession(ctx, c.session, vendorapi.Request{Path: path, Query: query}, cookieAuth, out)
	return err
}
