// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package connerr defines the error taxonomy shared by ticketing connectors and
declaration clients.

Every connector method returns either nil or a *TicketingConnectorError that
names the vendor and the operation. The envelope unwraps to one of the
classified errors:

  - AuthenticationError: credentials rejected or session expired
  - ConnectivityError: network failure, timeout, vendor 5xx, open circuit
  - RateLimitedError: vendor throttling after the retry budget is spent
  - VendorDataError: answer shape does not match what the connector expects
  - DeclarationRejectedError: declaration refused by the remote validator

Callers decide what to do with KindOf, IsRetryable and NeedsReauthentication:

	series, err := conn.GetEventsSeries(ctx, from, nil)
	switch {
	case connerr.NeedsReauthentication(err):
	    // ask the organizer to reconnect the ticketing system
	case connerr.IsRetryable(err):
	    time.AfterFunc(connerr.RetryAfter(err, time.Minute), retry)
	}
*/
package connerr
