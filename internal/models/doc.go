// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package models defines the canonical ticketing schema every vendor connector
produces, and the SIBIL declaration record.

Hierarchy:

	LiteEventSerieWrapper
	├── Serie: LiteEventSerie (production: id, name, venue, tax rate, date range)
	└── EventsWrappers: []LiteEventWrapper
	    ├── Event: LiteEvent (one performance: id, start, optional end)
	    └── EventCategoryTickets: []LiteEventCategoryTickets (sold count and revenue per price category)

Identity:

The pair (serie external id, event external id) identifies a performance
across re-fetches. Diff compares two fetches on that key.

Aggregation:

Connectors never build wrappers by hand. They feed a SerieAccumulator page by
page; the accumulator merges series, events and categories that share an
identity and drops events outside the requested window:

	acc := models.NewSerieAccumulator("billetweb", from, to)
	acc.AddSerie(serie)
	if ok, added := acc.AddEvent(serie.ExternalID, event); ok && added {
	    acc.AddTickets(serie.ExternalID, event.ExternalID, ticket)
	}
	wrappers := acc.Wrappers()

Amounts are float64 and never rounded here. Rounding belongs to the
presentation boundary (see package taxes).
*/
package models
