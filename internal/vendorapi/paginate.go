// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package vendorapi

import (
	"context"
	"fmt"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/metrics"
)

// MaxPages stops a vendor whose next indicator never ends.
const MaxPages = 10000

// PageFunc fetches page number page (starting at 1) and reports how many
// items it held and whether another page follows. Cursor state lives in the
// closure.
type PageFunc func(ctx context.Context, page int) (items int, more bool, err error)

// Paginate calls fetch for page 1, 2, ... until it reports no more pages.
// The first error stops the loop and is returned as is.
func Paginate(ctx context.Context, vendor string, fetch PageFunc) error {
	for page := 1; ; page++ {
		if page > MaxPages {
			return connerr.NewVendorDataError(fmt.Sprintf("pagination did not end after %d pages", MaxPages), nil)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		items, more, err := fetch(ctx, page)
		if err != nil {
			return err
		}
		metrics.RecordPage(vendor)
		logging.Ctx(ctx).Debug().
			Str("vendor", vendor).
			Int("page", page).
			Int("items", items).
			Bool("more", more).
			Msg("Fetched page")

		if !more {
			return nil
		}
	}
}
