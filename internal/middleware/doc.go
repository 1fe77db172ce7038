// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package middleware provides the HTTP middleware of the watch mode server.

  - RequestID: reuses or generates X-Request-ID and carries it as the
    logging correlation ID
  - AccessLog: one debug log line per request with status and duration

Both have the func(http.Handler) http.Handler shape expected by chi:

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.AccessLog)
*/
package middleware
