// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/snapshot"
	syncpkg "github.com/tomtom215/declaspectacle/internal/sync"
)

// syncReport is the printed outcome of one connection.
type syncReport struct {
	Connection string             `json:"connection"`
	Vendor     string             `json:"vendor"`
	First      bool               `json:"first,omitempty"`
	Series     int                `json:"series"`
	Events     int                `json:"events"`
	Diff       *models.SeriesDiff `json:"diff,omitempty"`
	Error      string             `json:"error,omitempty"`
	DurationMS int64              `json:"duration_ms"`
}

func newSyncReport(o *syncpkg.Outcome) syncReport {
	r := syncReport{
		Connection: o.Connection,
		Vendor:     o.Vendor.String(),
		First:      o.First,
		DurationMS: o.Duration.Milliseconds(),
	}
	if o.Err != nil {
		r.Error = o.Err.Error()
		return r
	}
	r.Series = len(o.Series)
	r.Events = models.CountEvents(o.Series)
	r.Diff = &o.Diff
	return r
}

// sync [--all | connection...]: fetch, diff against the stored snapshot,
// store the new one.
func syncCmd() *cobra.Command {
	var (
		all      bool
		from, to string
	)

	cmd := &cobra.Command{
		Use:   "sync [--all | connection...]",
		Short: "Fetch connections and report what changed since the last sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return fmt.Errorf("name connections or pass --all")
			}
			start, end, err := parseWindow(from, to, cfg.Fetch.Lookback, time.Now())
			if err != nil {
				return err
			}
			targets, err := buildTargets(cfg, args)
			if err != nil {
				return err
			}

			store, err := snapshot.Open(cfg.Store.Path)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logging.Error().Err(err).Msg("Error closing snapshot store")
				}
			}()

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			outcomes := syncpkg.NewSyncer(store, cfg.Fetch.Concurrency).SyncAll(ctx, targets, start, end)

			reports := make([]syncReport, len(outcomes))
			failed := 0
			for i := range outcomes {
				reports[i] = newSyncReport(&outcomes[i])
				if outcomes[i].Err != nil {
					failed++
				}
			}
			if err := writeJSON(cmd.OutOrStdout(), reports); err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d connection(s) failed to sync", failed, len(outcomes))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "sync every configured connection")
	cmd.Flags().StringVar(&from, "from", "", "window start, YYYY-MM-DD or RFC 3339 (default now minus fetch.lookback)")
	cmd.Flags().StringVar(&to, "to", "", "window end, exclusive (default unbounded)")
	return cmd
}
