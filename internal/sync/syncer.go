// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/metrics"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/snapshot"
	"github.com/tomtom215/declaspectacle/internal/ticketing"
)

// Store is the snapshot persistence a Syncer needs.
// Implemented by *snapshot.Store.
type Store interface {
	Load(ctx context.Context, connection string) (*snapshot.Snapshot, error)
	Save(ctx context.Context, snap *snapshot.Snapshot) error
}

// Outcome is the sync result of one connection.
type Outcome struct {
	Connection string
	Vendor     ticketing.Vendor
	Series     []models.LiteEventSerieWrapper
	Diff       models.SeriesDiff

	// First is set when the connection had no stored snapshot.
	First    bool
	Err      error
	Duration time.Duration
}

// Syncer fetches connections and stores their snapshots.
type Syncer struct {
	store       Store
	concurrency int
	now         func() time.Time
}

// NewSyncer returns a Syncer fetching up to concurrency connections at once.
func NewSyncer(store Store, concurrency int) *Syncer {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Syncer{store: store, concurrency: concurrency, now: time.Now}
}

// SyncAll syncs every target over [from, to) and returns one outcome per
// target, in order.
func (s *Syncer) SyncAll(ctx context.Context, targets []ticketing.Target, from time.Time, to *time.Time) []Outcome {
	results := ticketing.FetchAll(ctx, targets, from, to, s.concurrency)

	outcomes := make([]Outcome, len(results))
	for i, r := range results {
		outcomes[i] = s.apply(ctx, r, from, to)
	}
	return outcomes
}

func (s *Syncer) apply(ctx context.Context, r ticketing.Result, from time.Time, to *time.Time) Outcome {
	out := Outcome{
		Connection: r.Connection,
		Vendor:     r.Vendor,
		Err:        r.Err,
		Duration:   r.Duration,
	}
	if r.Err != nil {
		return out
	}
	out.Series = r.Series

	prev, err := s.store.Load(ctx, r.Connection)
	if err != nil {
		out.Err = err
		return out
	}

	var previous []models.LiteEventSerieWrapper
	if prev == nil {
		out.First = true
	} else {
		previous = inWindow(prev.Series, from, to)
	}
	out.Diff = models.Diff(previous, r.Series)

	snap := &snapshot.Snapshot{
		Connection: r.Connection,
		Vendor:     string(r.Vendor),
		From:       from,
		To:         to,
		TakenAt:    s.now(),
		Series:     r.Series,
	}
	if err := s.store.Save(ctx, snap); err != nil {
		out.Err = fmt.Errorf("connection %q: %w", r.Connection, err)
		return out
	}

	metrics.RecordSync(r.Connection, len(out.Diff.Added), len(out.Diff.Removed), len(out.Diff.Updated))
	logging.Info().
		Str("connection", r.Connection).
		Str("vendor", string(r.Vendor)).
		Bool("first", out.First).
		Int("added", len(out.Diff.Added)).
		Int("removed", len(out.Diff.Removed)).
		Int("updated", len(out.Diff.Updated)).
		Msg("Connection synced")
	return out
}

// inWindow keeps the performances starting in [from, to). Series left
// without any are dropped.
func inWindow(series []models.LiteEventSerieWrapper, from time.Time, to *time.Time) []models.LiteEventSerieWrapper {
	out := make([]models.LiteEventSerieWrapper, 0, len(series))
	for _, w := range series {
		kept := make([]models.LiteEventWrapper, 0, len(w.EventsWrappers))
		for _, ev := range w.EventsWrappers {
			if models.InWindow(ev.Event.StartAt, from, to) {
				kept = append(kept, ev)
			}
		}
		if len(kept) == 0 {
			continue
		}
		w.EventsWrappers = kept
		out = append(out, w)
	}
	return out
}
