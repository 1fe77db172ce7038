// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package models

import (
	"time"

	"github.com/tomtom215/declaspectacle/internal/taxes"
)

// DefaultCategory labels tickets for which the vendor gives no price category.
const DefaultCategory = "Tarif unique"

// Place is the venue of a serie.
type Place struct {
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
	Capacity   int    `json:"capacity,omitempty" validate:"gte=0"`
}

// LiteEventSerie is a production: one or more performances sharing a show.
type LiteEventSerie struct {
	ExternalID      string    `json:"external_id" validate:"required"`
	Name            string    `json:"name"`
	PerformanceType string    `json:"performance_type,omitempty"`
	Place           *Place    `json:"place,omitempty"`
	TaxRate         *float64  `json:"tax_rate,omitempty" validate:"omitempty,taxrate"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
}

// LiteEvent is a single performance of a serie.
type LiteEvent struct {
	ExternalID string     `json:"external_id" validate:"required"`
	StartAt    time.Time  `json:"start_at" validate:"required"`
	EndAt      *time.Time `json:"end_at,omitempty"`
}

// LiteEventCategoryTickets aggregates the tickets sold for one price category
// of one performance. TotalRevenueExcludingTaxes is nil when the vendor only
// reports tax-inclusive revenue.
type LiteEventCategoryTickets struct {
	Category                   string   `json:"category" validate:"required"`
	Price                      float64  `json:"price" validate:"gte=0"`
	NumberSold                 int      `json:"number_sold" validate:"gte=0"`
	TotalRevenueIncludingTaxes float64  `json:"total_revenue_including_taxes" validate:"gte=0"`
	TotalRevenueExcludingTaxes *float64 `json:"total_revenue_excluding_taxes,omitempty" validate:"omitempty,gte=0"`
	TaxRate                    *float64 `json:"tax_rate,omitempty" validate:"omitempty,taxrate"`
}

// RevenueExcludingTaxes returns the vendor's tax-exclusive revenue when it
// provided one, otherwise derives it from the category rate, then from
// serieRate. ok is false when no figure can be produced.
func (c *LiteEventCategoryTickets) RevenueExcludingTaxes(serieRate *float64) (value float64, ok bool) {
	if c.TotalRevenueExcludingTaxes != nil {
		return *c.TotalRevenueExcludingTaxes, true
	}
	rate := c.TaxRate
	if rate == nil {
		rate = serieRate
	}
	if rate == nil {
		return 0, false
	}
	return taxes.ExcludingTaxesFromIncludingTaxes(c.TotalRevenueIncludingTaxes, *rate), true
}

// LiteEventWrapper is a performance with its ticket categories.
type LiteEventWrapper struct {
	Event                LiteEvent                  `json:"event"`
	EventCategoryTickets []LiteEventCategoryTickets `json:"event_category_tickets" validate:"dive"`
}

// TicketsSold sums NumberSold over all categories.
func (w *LiteEventWrapper) TicketsSold() int {
	total := 0
	for i := range w.EventCategoryTickets {
		total += w.EventCategoryTickets[i].NumberSold
	}
	return total
}

// RevenueIncludingTaxes sums the tax-inclusive revenue over all categories.
func (w *LiteEventWrapper) RevenueIncludingTaxes() float64 {
	var total float64
	for i := range w.EventCategoryTickets {
		total += w.EventCategoryTickets[i].TotalRevenueIncludingTaxes
	}
	return total
}

// LiteEventSerieWrapper is the unit every connector returns: one serie and
// its performances inside the requested window.
type LiteEventSerieWrapper struct {
	Serie          LiteEventSerie     `json:"serie"`
	EventsWrappers []LiteEventWrapper `json:"events_wrappers" validate:"dive"`
}

// EventCount returns the number of performances.
func (w *LiteEventSerieWrapper) EventCount() int {
	return len(w.EventsWrappers)
}

// TicketsSold sums tickets over every performance.
func (w *LiteEventSerieWrapper) TicketsSold() int {
	total := 0
	for i := range w.EventsWrappers {
		total += w.EventsWrappers[i].TicketsSold()
	}
	return total
}

// CountEvents returns the number of performances across wrappers.
func CountEvents(wrappers []LiteEventSerieWrapper) int {
	n := 0
	for i := range wrappers {
		n += len(wrappers[i].EventsWrappers)
	}
	return n
}

// SerieIDs returns the serie external ids in order.
func SerieIDs(wrappers []LiteEventSerieWrapper) []string {
	ids := make([]string, len(wrappers))
	for i := range wrappers {
		ids[i] = wrappers[i].Serie.ExternalID
	}
	return ids
}

// InWindow reports whether start falls in [from, to). A nil to means no
// upper bound.
func InWindow(start, from time.Time, to *time.Time) bool {
	if start.Before(from) {
		return false
	}
	if to != nil && !start.Before(*to) {
		return false
	}
	return true
}

// Float64 returns a pointer to v. Connectors use it for optional amounts.
func Float64(v float64) *float64 {
	return &v
}
