// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package sibil submits finished declarations to SIBIL, the ministry of
culture's ticketing information system for live performances.

The client is push-only. A caller logs in, declares one or more
models.SibilDeclaration values, then logs out:

	c, err := sibil.New(sibil.Config{Username: user, Password: pass})
	if err != nil {
		return err
	}
	if err := c.Login(ctx); err != nil {
		return err
	}
	defer c.Logout(ctx)

	if err := c.Declare(ctx, decl); err != nil {
		var rejected *connerr.DeclarationRejectedError
		if errors.As(err, &rejected) {
			// rejected.Violations lists the fields SIBIL refused.
		}
		return err
	}

Declare never logs in on its own: calling it without an open session fails
with an AuthenticationError. Monetary figures are formatted once, at the
payload boundary, with the taxes package: 918.00 at a 2.1% rate is sent as
899.12 excluding taxes and 18.88 of tax.

Submission is not idempotent on the client side. Each call carries a fresh
X-Request-ID, and a declaration ID, when set, is sent as the reference SIBIL
deduplicates on.
*/
package sibil
