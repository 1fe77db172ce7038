// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/vendorapi"
)

const (
	siriusBaseURL  = "https://api.sirius-billetterie.fr"
	siriusPageSize = 100
)

// siriusConnector signs every request; there is no session to manage.
type siriusConnector struct {
	client *vendorapi.Client
	keyID  string
	secret []byte
	now    func() time.Time
}

func newSirius(creds Credentials, opts Options) (Connector, error) {
	if err := requireCredentials(Sirius, map[string]string{
		"access key (key id)":      creds.AccessKey,
		"secret key (hmac secret)": creds.SecretKey,
	}); err != nil {
		return nil, err
	}
	return &siriusConnector{
		client: vendorapi.NewClient(string(Sirius), opts.baseURL(siriusBaseURL, "", false), opts.httpOptions()),
		keyID:  creds.AccessKey,
		secret: []byte(creds.SecretKey),
		now:    time.Now,
	}, nil
}

func (c *siriusConnector) Vendor() Vendor { return Sirius }

// sign adds key_id, timestamp and signature to query. The signature is the
// hex HMAC-SHA256 of "METHOD\nPATH\nQUERY", QUERY being the other parameters
// encoded in key order.
func (c *siriusConnector) sign(method, path string, query url.Values) url.Values {
	signed := url.Values{}
	for k, v := range query {
		signed[k] = v
	}
	signed.Set("key_id", c.keyID)
	signed.Set("timestamp", strconv.FormatInt(c.now().Unix(), 10))
	signed.Set("signature", siriusSignature(c.secret, method, path, signed))
	return signed
}

func siriusSignature(secret []byte, method, path string, query url.Values) string {
	unsigned := url.Values{}
	for k, v := range query {
		if k != "signature" {
			unsigned[k] = v
		}
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(method + "\n" + path + "\n" + unsigned.Encode()))
	return hex.EncodeToString(mac.Sum(nil))
}

type siriusSale struct {
	RateName      string     `json:"rate_name"`
	UnitPrice     flexFloat  `json:"unit_price"`
	Count         flexInt    `json:"count"`
	AmountInclTax flexFloat  `json:"amount_incl_tax"`
	AmountExclTax *flexFloat `json:"amount_excl_tax"`
}

type siriusRepresentation struct {
	ID      flexID     `json:"id"`
	Date    string     `json:"date"`
	EndDate string     `json:"end_date"`
	VATRate *flexFloat `json:"vat_rate"`
	Show    struct {
		ID    flexID `json:"id"`
		Title string `json:"title"`
		Genre string `json:"genre"`
		Venue *struct {
			Name       string  `json:"name"`
			Address    string  `json:"address"`
			PostalCode string  `json:"postal_code"`
			City       string  `json:"city"`
			Capacity   flexInt `json:"capacity"`
		} `json:"venue"`
	} `json:"show"`
	Sales []siriusSale `json:"sales"`
}

func (c *siriusConnector) TestConnection(ctx context.Context) (bool, error) {
	return testConnection(ctx, Sirius, func(ctx context.Context) error {
		var pong map[string]interface{}
		return c.get(ctx, "/v1/ping", nil, &pong)
	})
}

func (c *siriusConnector) GetEventsSeries(ctx context.Context, from time.Time, to *time.Time) ([]models.LiteEventSerieWrapper, error) {
	return collect(ctx, Sirius, from, to, func(ctx context.Context, acc *models.SerieAccumulator) error {
		offset := ""
		return vendorapi.Paginate(ctx, string(Sirius), func(ctx context.Context, _ int) (int, bool, error) {
			var resp struct {
				Representations []siriusRepresentation `json:"representations"`
				NextOffset      *string                `json:"next_offset"`
			}
			query := url.Values{
				"from":  {from.UTC().Format(time.RFC3339)},
				"limit": {strconv.Itoa(siriusPageSize)},
			}
			if to != nil {
				query.Set("to", to.UTC().Format(time.RFC3339))
			}
			if offset != "" {
				query.Set("offset", offset)
			}
			if err := c.get(ctx, "/v1/representations", query, &resp); err != nil {
				return 0, false, err
			}
			for i := range resp.Representations {
				if err := addSiriusRepresentation(acc, &resp.Representations[i]); err != nil {
					return 0, false, err
				}
			}
			if resp.NextOffset == nil || *resp.NextOffset == "" {
				return len(resp.Representations), false, nil
			}
			if *resp.NextOffset == offset {
				return 0, false, connerr.NewVendorDataError("next_offset did not advance", nil)
			}
			offset = *resp.NextOffset
			return len(resp.Representations), true, nil
		})
	})
}

func addSiriusRepresentation(acc *models.SerieAccumulator, r *siriusRepresentation) error {
	if r.ID == "" || r.Show.ID == "" {
		return connerr.NewVendorDataError("representation without id or show", nil)
	}
	start, err := parseTime(r.Date)
	if err != nil {
		return err
	}
	end, err := parseOptionalTime(r.EndDate)
	if err != nil {
		return err
	}

	serieID := string(r.Show.ID)
	serie := models.LiteEventSerie{
		ExternalID:      serieID,
		Name:            r.Show.Title,
		PerformanceType: r.Show.Genre,
	}
	if v := r.Show.Venue; v != nil {
		serie.Place = &models.Place{
			Name:       v.Name,
			Address:    v.Address,
			PostalCode: v.PostalCode,
			City:       v.City,
			Country:    "FR",
			Capacity:   int(v.Capacity),
		}
	}
	acc.AddSerie(serie)

	eventID := string(r.ID)
	if ok, _ := acc.AddEvent(serieID, models.LiteEvent{ExternalID: eventID, StartAt: start, EndAt: end}); !ok {
		return nil
	}
	tickets := make([]models.LiteEventCategoryTickets, 0, len(r.Sales))
	for _, s := range r.Sales {
		category := s.RateName
		if category == "" {
			category = models.DefaultCategory
		}
		var excl *float64
		if s.AmountExclTax != nil {
			excl = models.Float64(float64(*s.AmountExclTax))
		}
		tickets = append(tickets, models.LiteEventCategoryTickets{
			Category:                   category,
			Price:                      float64(s.UnitPrice),
			NumberSold:                 int(s.Count),
			TotalRevenueIncludingTaxes: float64(s.AmountInclTax),
			TotalRevenueExcludingTaxes: excl,
			TaxRate:                    ratePtr(r.VATRate),
		})
	}
	acc.SetTickets(serieID, eventID, tickets)
	return nil
}

func (c *siriusConnector) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	_, err := c.client.DoJSON(ctx, vendorapi.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  c.sign(http.MethodGet, path, query),
	}, out)
	return err
}
