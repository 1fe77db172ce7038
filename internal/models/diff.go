// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package models

import (
	"math"
	"sort"
	"time"
)

// EventKey is the stable identity of a performance across fetches.
type EventKey struct {
	SerieExternalID string `json:"serie_external_id"`
	EventExternalID string `json:"event_external_id"`
}

// ChangeType tells how a performance changed between two fetches.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeUpdated ChangeType = "updated"
)

// EventChange is one entry of a SeriesDiff.
type EventChange struct {
	Key      EventKey          `json:"key"`
	Type     ChangeType        `json:"type"`
	Previous *LiteEventWrapper `json:"previous,omitempty"`
	Current  *LiteEventWrapper `json:"current,omitempty"`
}

// SeriesDiff groups changes by type. Each slice is sorted by key.
type SeriesDiff struct {
	Added   []EventChange `json:"added"`
	Removed []EventChange `json:"removed"`
	Updated []EventChange `json:"updated"`
}

// Empty reports whether nothing changed.
func (d *SeriesDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// Total returns the number of changes.
func (d *SeriesDiff) Total() int {
	return len(d.Added) + len(d.Removed) + len(d.Updated)
}

// Diff compares two fetches of the same connection. A performance is updated
// when its times or any of its ticket categories changed.
func Diff(previous, current []LiteEventSerieWrapper) SeriesDiff {
	prev := indexEvents(previous)
	curr := indexEvents(current)

	var d SeriesDiff
	for key, c := range curr {
		p, ok := prev[key]
		switch {
		case !ok:
			d.Added = append(d.Added, EventChange{Key: key, Type: ChangeAdded, Current: c})
		case !eventsEqual(p, c):
			d.Updated = append(d.Updated, EventChange{Key: key, Type: ChangeUpdated, Previous: p, Current: c})
		}
	}
	for key, p := range prev {
		if _, ok := curr[key]; !ok {
			d.Removed = append(d.Removed, EventChange{Key: key, Type: ChangeRemoved, Previous: p})
		}
	}

	sortChanges(d.Added)
	sortChanges(d.Removed)
	sortChanges(d.Updated)
	return d
}

func indexEvents(wrappers []LiteEventSerieWrapper) map[EventKey]*LiteEventWrapper {
	idx := make(map[EventKey]*LiteEventWrapper)
	for i := range wrappers {
		w := &wrappers[i]
		for j := range w.EventsWrappers {
			ew := &w.EventsWrappers[j]
			idx[EventKey{SerieExternalID: w.Serie.ExternalID, EventExternalID: ew.Event.ExternalID}] = ew
		}
	}
	return idx
}

func sortChanges(changes []EventChange) {
	sort.Slice(changes, func(i, j int) bool {
		a, b := changes[i].Key, changes[j].Key
		if a.SerieExternalID != b.SerieExternalID {
			return a.SerieExternalID < b.SerieExternalID
		}
		return a.EventExternalID < b.EventExternalID
	})
}

// eventsEqual compares on values rather than reflect.DeepEqual so that times
// decoded from a stored snapshot compare equal to freshly fetched ones.
func eventsEqual(a, b *LiteEventWrapper) bool {
	if !a.Event.StartAt.Equal(b.Event.StartAt) || !timePtrEqual(a.Event.EndAt, b.Event.EndAt) {
		return false
	}
	if len(a.EventCategoryTickets) != len(b.EventCategoryTickets) {
		return false
	}

	type catKey struct {
		category string
		price    float64
	}
	byKey := make(map[catKey]*LiteEventCategoryTickets, len(a.EventCategoryTickets))
	for i := range a.EventCategoryTickets {
		c := &a.EventCategoryTickets[i]
		byKey[catKey{c.Category, c.Price}] = c
	}
	for i := range b.EventCategoryTickets {
		c := &b.EventCategoryTickets[i]
		other, ok := byKey[catKey{c.Category, c.Price}]
		if !ok || !ticketsEqual(other, c) {
			return false
		}
	}
	return true
}

func ticketsEqual(a, b *LiteEventCategoryTickets) bool {
	return a.NumberSold == b.NumberSold &&
		amountsEqual(a.TotalRevenueIncludingTaxes, b.TotalRevenueIncludingTaxes) &&
		floatPtrEqual(a.TotalRevenueExcludingTaxes, b.TotalRevenueExcludingTaxes) &&
		floatPtrEqual(a.TaxRate, b.TaxRate)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func floatPtrEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return amountsEqual(*a, *b)
}

func amountsEqual(a, b float64) bool {
	return math.Abs(a-b) < amountEpsilon
}
