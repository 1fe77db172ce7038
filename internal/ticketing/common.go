// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package ticketing

import (
	"context"
	"time"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/metrics"
	"github.com/tomtom215/declaspectacle/internal/models"
)

const (
	opTestConnection = "test connection"
	opGetEvents      = "get events series"
	opLogin          = "login"
	opLogout         = "logout"
)

// fail wraps err in the connector envelope and counts it.
func fail(vendor Vendor, op string, err error) error {
	if err == nil {
		return nil
	}
	wrapped := connerr.Wrap(string(vendor), op, err)
	metrics.RecordConnectorError(string(vendor), string(connerr.KindOf(err)))
	return wrapped
}

// testConnection runs probe and turns credential or reachability failures
// into false.
func testConnection(ctx context.Context, vendor Vendor, probe func(context.Context) error) (bool, error) {
	err := probe(ctx)
	if err == nil {
		return true, nil
	}

	switch connerr.KindOf(err) {
	case connerr.KindAuthentication, connerr.KindConnectivity:
		logging.Ctx(ctx).Info().
			Err(err).
			Str("vendor", string(vendor)).
			Msg("Connection test failed")
		metrics.RecordConnectorError(string(vendor), string(connerr.KindOf(err)))
		return false, nil
	default:
		return false, fail(vendor, opTestConnection, err)
	}
}

// collect runs fill against a fresh accumulator and returns its wrappers, or
// only the error.
func collect(ctx context.Context, vendor Vendor, from time.Time, to *time.Time, fill func(context.Context, *models.SerieAccumulator) error) ([]models.LiteEventSerieWrapper, error) {
	start := time.Now()
	connection, _ := logging.ConnectionFromContext(ctx)

	acc := models.NewSerieAccumulator(string(vendor), from, to)
	err := fill(ctx, acc)

	var wrappers []models.LiteEventSerieWrapper
	if err == nil {
		wrappers = acc.Wrappers()
		err = models.ValidateAll(wrappers)
	}
	metrics.RecordFetch(string(vendor), connection, time.Since(start), models.CountEvents(wrappers), err)
	if err != nil {
		return nil, fail(vendor, opGetEvents, err)
	}

	logging.Ctx(ctx).Debug().
		Str("vendor", string(vendor)).
		Int("series", len(wrappers)).
		Int("events", models.CountEvents(wrappers)).
		Dur("duration", time.Since(start)).
		Msg("Fetched events series")
	return wrappers, nil
}
