// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package vendorapi is the HTTP layer shared by every ticketing connector.

Client sends one request at a time to one vendor and turns each answer into
either a decoded body or an error from package connerr:

  - 401 and 403 become *connerr.AuthenticationError
  - 429 is retried with exponential backoff, honoring Retry-After, then
    becomes *connerr.RateLimitedError
  - 5xx, timeouts and transport failures become *connerr.ConnectivityError
  - bodies that do not decode become *connerr.VendorDataError
  - any other non-2xx status becomes *connerr.StatusError

Requests are paced with golang.org/x/time/rate so a connection never bursts
past what the vendor tolerates, and every exchange is recorded in the
ticketing_* Prometheus metrics.

Session is the explicit authentication state of a session-based vendor:

	UNAUTHENTICATED -> AUTHENTICATING -> AUTHENTICATED -> LOGGING_OUT -> UNAUTHENTICATED

Session.Token logs in on first use and again once the token is about to
expire. DoWithSession retries a request once after a 401 with a fresh token.
OAuth2Login adapts golang.org/x/oauth2/clientcredentials to a Session.

Paginate drives the sequential page loop every connector uses.
*/
package vendorapi
