// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package models

import (
	"fmt"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/validation"
)

// amountEpsilon tolerates float noise when comparing revenue figures.
const amountEpsilon = 1e-6

// Validate checks a wrapper against the canonical model rules. Failures are
// returned as *connerr.VendorDataError because they mean the vendor answer
// could not be mapped faithfully.
func (w *LiteEventSerieWrapper) Validate() error {
	if err := validation.ValidateStruct(w); err != nil {
		return connerr.NewVendorDataError(fmt.Sprintf("serie %q", w.Serie.ExternalID), err)
	}

	seen := make(map[string]struct{}, len(w.EventsWrappers))
	for i := range w.EventsWrappers {
		ew := &w.EventsWrappers[i]
		id := ew.Event.ExternalID
		if _, dup := seen[id]; dup {
			return connerr.NewVendorDataError(
				fmt.Sprintf("serie %q: duplicate event %q", w.Serie.ExternalID, id), nil)
		}
		seen[id] = struct{}{}

		if ew.Event.EndAt != nil && ew.Event.EndAt.Before(ew.Event.StartAt) {
			return connerr.NewVendorDataError(
				fmt.Sprintf("serie %q event %q: end before start", w.Serie.ExternalID, id), nil)
		}

		for j := range ew.EventCategoryTickets {
			if err := ew.EventCategoryTickets[j].checkAmounts(); err != nil {
				return connerr.NewVendorDataError(
					fmt.Sprintf("serie %q event %q", w.Serie.ExternalID, id), err)
			}
		}
	}
	return nil
}

func (c *LiteEventCategoryTickets) checkAmounts() error {
	if c.TotalRevenueExcludingTaxes == nil {
		return nil
	}
	excl := *c.TotalRevenueExcludingTaxes
	if excl > c.TotalRevenueIncludingTaxes+amountEpsilon {
		return fmt.Errorf("category %q: revenue excluding taxes %.2f exceeds including taxes %.2f",
			c.Category, excl, c.TotalRevenueIncludingTaxes)
	}
	return nil
}

// ValidateAll validates every wrapper and stops at the first failure.
func ValidateAll(wrappers []LiteEventSerieWrapper) error {
	for i := range wrappers {
		if err := wrappers[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
