// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package models

import (
	"fmt"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
)

// SibilProducer identifies the organizer filing a SIBIL declaration.
type SibilProducer struct {
	Name          string `json:"name" validate:"required"`
	LicenseNumber string `json:"license_number" validate:"required"`
	Siret         string `json:"siret,omitempty" validate:"omitempty,len=14,numeric"`
}

// SibilVenue is the venue as SIBIL expects it.
type SibilVenue struct {
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postal_code" validate:"required,len=5,numeric"`
	City       string `json:"city" validate:"required"`
	Capacity   int    `json:"capacity,omitempty" validate:"gte=0"`
}

// SibilEventRevenue holds the ticketing figures of one performance.
// Amounts are unrounded; the client formats them when sending.
type SibilEventRevenue struct {
	EventExternalID                string    `json:"event_external_id,omitempty"`
	Date                           time.Time `json:"date" validate:"required"`
	Free                           bool      `json:"free"`
	PaidTickets                    int       `json:"paid_tickets" validate:"gte=0"`
	FreeTickets                    int       `json:"free_tickets" validate:"gte=0"`
	TicketingRevenueIncludingTaxes float64   `json:"ticketing_revenue_including_taxes" validate:"gte=0"`
	TicketingRevenueTaxRate        float64   `json:"ticketing_revenue_tax_rate" validate:"taxrate"`
}

// SibilDeclaration is a finished declaration. It is built once, submitted
// once, and never modified after submission.
type SibilDeclaration struct {
	ID              string              `json:"id,omitempty"`
	Producer        SibilProducer       `json:"producer"`
	Venue           SibilVenue          `json:"venue"`
	PerformanceType string              `json:"performance_type" validate:"required"`
	ShowName        string              `json:"show_name" validate:"required"`
	Events          []SibilEventRevenue `json:"events" validate:"required,min=1,dive"`
}

// NewSibilDeclaration builds a declaration from a canonical serie. Every
// event needs a tax rate, taken from the serie or reconciled from the event's
// categories; free tickets are the ones sold at price zero.
func NewSibilDeclaration(producer SibilProducer, venue SibilVenue, performanceType string, w *LiteEventSerieWrapper) (SibilDeclaration, error) {
	decl := SibilDeclaration{
		Producer:        producer,
		Venue:           venue,
		PerformanceType: performanceType,
		ShowName:        w.Serie.Name,
		Events:          make([]SibilEventRevenue, 0, len(w.EventsWrappers)),
	}

	for i := range w.EventsWrappers {
		ew := &w.EventsWrappers[i]

		rate := w.Serie.TaxRate
		if rate == nil {
			var rates []float64
			for j := range ew.EventCategoryTickets {
				if r := ew.EventCategoryTickets[j].TaxRate; r != nil {
					rates = append(rates, *r)
				}
			}
			rate, _ = ReconcileTaxRate(rates)
		}
		if rate == nil {
			return SibilDeclaration{}, connerr.NewVendorDataError(
				fmt.Sprintf("serie %q event %q: no single tax rate", w.Serie.ExternalID, ew.Event.ExternalID), nil)
		}

		rev := SibilEventRevenue{
			EventExternalID:                ew.Event.ExternalID,
			Date:                           ew.Event.StartAt,
			TicketingRevenueIncludingTaxes: ew.RevenueIncludingTaxes(),
			TicketingRevenueTaxRate:        *rate,
		}
		for j := range ew.EventCategoryTickets {
			c := &ew.EventCategoryTickets[j]
			if c.Price == 0 {
				rev.FreeTickets += c.NumberSold
			} else {
				rev.PaidTickets += c.NumberSold
			}
		}
		rev.Free = rev.PaidTickets == 0
		decl.Events = append(decl.Events, rev)
	}

	return decl, nil
}
