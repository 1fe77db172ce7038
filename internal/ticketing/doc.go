// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package ticketing holds one connector per supported ticketing system, all
behind the Connector interface.

# Connectors

A connector is built per connection with New (or FromConfig) and owned by one
call chain. Each vendor keeps its own authentication scheme, pagination and
mapping to the canonical models.LiteEventSerieWrapper:

	billetweb              API key pair in the query string, single-page lists
	helloasso              OAuth2 client credentials, page numbers
	mapado                 OAuth2 client credentials, hydra:next cursor
	dice                   bearer token, GraphQL endCursor
	soticket, supersoniks  login/password session token, page numbers
	weezevent              API key plus access token, page until short
	secutix                login/password session cookie, offset and total
	yurplan                OAuth2 client credentials, page numbers
	sirius                 HMAC-SHA256 signed query, next_offset token

SoTicket and Supersoniks share one implementation; only the host differs.

# Contract

GetEventsSeries returns one wrapper per serie with every event starting in
[from, to). Pages are fetched one after the other and merged through a
models.SerieAccumulator. Any error aborts the call and no partial result is
returned, so the caller can retry the whole call.

TestConnection answers false with a nil error when the vendor rejects the
credentials or cannot be reached. Other failures, such as an answer the
connector cannot parse, are returned as errors.

Every error is a *connerr.TicketingConnectorError carrying the vendor name.

# Resilience

WithCircuitBreaker wraps a connector in a gobreaker circuit breaker so a
vendor outage stops being hammered by watch mode. FetchAll fetches several
connections concurrently and reports one result per connection.
*/
package ticketing
