// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package models

import (
	"sort"
	"time"

	"github.com/tomtom215/declaspectacle/internal/logging"
)

// SerieAccumulator merges paged vendor data into one wrapper per serie.
//
// Series keep the order in which they were first seen. Events are upserted on
// their external id and sorted by start time on output. Tickets are merged on
// (category, price) and their counts and revenues summed. Vendors paging
// through performances must add the tickets of a repeated event only once:
// per-line vendors skip it when AddEvent reports it as already seen, and
// aggregate vendors replace its categories with SetTickets. Events whose start
// falls outside the window are ignored, and series left without events are
// not returned.
//
// A SerieAccumulator is owned by a single GetEventsSeries call and is not safe
// for concurrent use.
type SerieAccumulator struct {
	vendor string
	from   time.Time
	to     *time.Time

	order  []string
	series map[string]*serieEntry
}

type serieEntry struct {
	serie      LiteEventSerie
	eventOrder []string
	events     map[string]*eventEntry
}

type eventEntry struct {
	event    LiteEvent
	catOrder []ticketKey
	cats     map[ticketKey]*LiteEventCategoryTickets
}

type ticketKey struct {
	category string
	price    float64
}

// NewSerieAccumulator creates an accumulator for events starting in [from, to).
func NewSerieAccumulator(vendor string, from time.Time, to *time.Time) *SerieAccumulator {
	return &SerieAccumulator{
		vendor: vendor,
		from:   from,
		to:     to,
		series: make(map[string]*serieEntry),
	}
}

// AddSerie registers a serie. When the id is already known, empty fields of
// the stored serie are filled from s and the date range is widened.
func (a *SerieAccumulator) AddSerie(s LiteEventSerie) {
	entry, ok := a.series[s.ExternalID]
	if !ok {
		a.order = append(a.order, s.ExternalID)
		a.series[s.ExternalID] = &serieEntry{
			serie:  s,
			events: make(map[string]*eventEntry),
		}
		return
	}

	stored := &entry.serie
	if stored.Name == "" {
		stored.Name = s.Name
	}
	if stored.PerformanceType == "" {
		stored.PerformanceType = s.PerformanceType
	}
	if stored.Place == nil {
		stored.Place = s.Place
	}
	if stored.TaxRate == nil {
		stored.TaxRate = s.TaxRate
	}
	widen(stored, s.StartAt)
	widen(stored, s.EndAt)
}

// AddEvent upserts an event under serieID. accepted reports whether the start
// is inside the window; added reports whether the event id was not seen
// before. Unknown series are created with only their id. A later call with
// the same event id replaces the start and fills a missing end, but leaves
// the tickets already stored untouched.
func (a *SerieAccumulator) AddEvent(serieID string, e LiteEvent) (accepted, added bool) {
	if !InWindow(e.StartAt, a.from, a.to) {
		return false, false
	}

	entry, ok := a.series[serieID]
	if !ok {
		a.AddSerie(LiteEventSerie{ExternalID: serieID})
		entry = a.series[serieID]
	}

	existing, ok := entry.events[e.ExternalID]
	if !ok {
		entry.eventOrder = append(entry.eventOrder, e.ExternalID)
		entry.events[e.ExternalID] = &eventEntry{
			event: e,
			cats:  make(map[ticketKey]*LiteEventCategoryTickets),
		}
		return true, true
	}

	existing.event.StartAt = e.StartAt
	if e.EndAt != nil {
		existing.event.EndAt = e.EndAt
	}
	return true, false
}

// SetTickets replaces every category of the event with tickets, merged as
// AddTickets does. Vendors that report per-event totals use it so a
// performance repeated across pages is counted once.
func (a *SerieAccumulator) SetTickets(serieID, eventID string, tickets []LiteEventCategoryTickets) bool {
	ev := a.event(serieID, eventID)
	if ev == nil {
		return false
	}
	ev.catOrder = nil
	ev.cats = make(map[ticketKey]*LiteEventCategoryTickets, len(tickets))
	for _, t := range tickets {
		ev.merge(t)
	}
	return true
}

// AddTickets merges t into the event's categories. It reports false when the
// event was never added or fell outside the window.
func (a *SerieAccumulator) AddTickets(serieID, eventID string, t LiteEventCategoryTickets) bool {
	ev := a.event(serieID, eventID)
	if ev == nil {
		return false
	}
	ev.merge(t)
	return true
}

func (a *SerieAccumulator) event(serieID, eventID string) *eventEntry {
	entry, ok := a.series[serieID]
	if !ok {
		return nil
	}
	return entry.events[eventID]
}

// merge adds t to the category sharing its (category, price).
func (ev *eventEntry) merge(t LiteEventCategoryTickets) {
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	key := ticketKey{category: t.Category, price: t.Price}

	existing, ok := ev.cats[key]
	if !ok {
		cp := t
		if t.TotalRevenueExcludingTaxes != nil {
			cp.TotalRevenueExcludingTaxes = Float64(*t.TotalRevenueExcludingTaxes)
		}
		ev.catOrder = append(ev.catOrder, key)
		ev.cats[key] = &cp
		return
	}

	existing.NumberSold += t.NumberSold
	existing.TotalRevenueIncludingTaxes += t.TotalRevenueIncludingTaxes

	// The excluding figure is only meaningful when every merged line had one.
	if existing.TotalRevenueExcludingTaxes != nil && t.TotalRevenueExcludingTaxes != nil {
		*existing.TotalRevenueExcludingTaxes += *t.TotalRevenueExcludingTaxes
	} else {
		existing.TotalRevenueExcludingTaxes = nil
	}

	if !sameRate(existing.TaxRate, t.TaxRate) {
		existing.TaxRate = nil
	}
}

// HasEvent reports whether eventID was accepted under serieID.
func (a *SerieAccumulator) HasEvent(serieID, eventID string) bool {
	return a.event(serieID, eventID) != nil
}

// Len returns the number of series holding at least one event.
func (a *SerieAccumulator) Len() int {
	n := 0
	for _, id := range a.order {
		if len(a.series[id].events) > 0 {
			n++
		}
	}
	return n
}

// Wrappers builds the result. A serie without a vendor tax rate gets one
// reconciled from its categories when they all agree.
func (a *SerieAccumulator) Wrappers() []LiteEventSerieWrapper {
	result := make([]LiteEventSerieWrapper, 0, len(a.order))

	for _, id := range a.order {
		entry := a.series[id]
		if len(entry.events) == 0 {
			continue
		}

		w := LiteEventSerieWrapper{
			Serie:          entry.serie,
			EventsWrappers: make([]LiteEventWrapper, 0, len(entry.eventOrder)),
		}

		var rates []float64
		for _, eventID := range entry.eventOrder {
			ev := entry.events[eventID]
			ew := LiteEventWrapper{
				Event:                ev.event,
				EventCategoryTickets: make([]LiteEventCategoryTickets, 0, len(ev.catOrder)),
			}
			for _, key := range ev.catOrder {
				cat := *ev.cats[key]
				if cat.TaxRate != nil {
					rates = append(rates, *cat.TaxRate)
				}
				ew.EventCategoryTickets = append(ew.EventCategoryTickets, cat)
			}
			widen(&w.Serie, ev.event.StartAt)
			if ev.event.EndAt != nil {
				widen(&w.Serie, *ev.event.EndAt)
			}
			w.EventsWrappers = append(w.EventsWrappers, ew)
		}

		sort.SliceStable(w.EventsWrappers, func(i, j int) bool {
			return w.EventsWrappers[i].Event.StartAt.Before(w.EventsWrappers[j].Event.StartAt)
		})

		if w.Serie.TaxRate == nil {
			rate, divergent := ReconcileTaxRate(rates)
			if divergent {
				logging.Warn().
					Str("vendor", a.vendor).
					Str("serie", w.Serie.ExternalID).
					Floats64("rates", distinctRates(rates)).
					Msg("Divergent tax rates across ticket categories, serie tax rate left empty")
			}
			w.Serie.TaxRate = rate
		}

		result = append(result, w)
	}

	return result
}

// widen extends the serie date range to include t.
func widen(s *LiteEventSerie, t time.Time) {
	if t.IsZero() {
		return
	}
	if s.StartAt.IsZero() || t.Before(s.StartAt) {
		s.StartAt = t
	}
	if s.EndAt.IsZero() || t.After(s.EndAt) {
		s.EndAt = t
	}
}

func sameRate(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return ratesEqual(*a, *b)
}
