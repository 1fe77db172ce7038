// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/models"
)

// Target is a named connection to fetch.
type Target struct {
	Name      string
	Connector Connector
}

// Result is the outcome of one connection. Series is nil when Err is set.
type Result struct {
	Connection string
	Vendor     Vendor
	Series     []models.LiteEventSerieWrapper
	Err        error
	Duration   time.Duration
}

// FetchAll calls GetEventsSeries on every target, at most concurrency at a
// time, and returns results in target order. A failing connection does not
// cancel the others.
func FetchAll(ctx context.Context, targets []Target, from time.Time, to *time.Time, concurrency int) []Result {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]Result, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			results[i] = fetchOne(gctx, target, from, to)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func fetchOne(ctx context.Context, target Target, from time.Time, to *time.Time) Result {
	vendor := target.Connector.Vendor()
	ctx = logging.ContextWithConnection(ctx, target.Name, string(vendor))
	if logging.CorrelationIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewCorrelationID(ctx)
	}

	start := time.Now()
	series, err := target.Connector.GetEventsSeries(ctx, from, to)
	res := Result{
		Connection: target.Name,
		Vendor:     vendor,
		Series:     series,
		Err:        err,
		Duration:   time.Since(start),
	}

	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Dur("duration", res.Duration).Msg("Fetch failed")
		res.Series = nil
		return res
	}
	logging.Ctx(ctx).Info().
		Int("series", len(series)).
		Int("events", models.CountEvents(series)).
		Dur("duration", res.Duration).
		Msg("Fetch completed")
	return res
}
