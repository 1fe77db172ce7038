// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package commands

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/middleware"
	"github.com/tomtom215/declaspectacle/internal/snapshot"
	"github.com/tomtom215/declaspectacle/internal/supervisor"
	"github.com/tomtom215/declaspectacle/internal/supervisor/services"
	syncpkg "github.com/tomtom215/declaspectacle/internal/sync"
)

// lastSyncer is the part of the watcher the health endpoint reads.
type lastSyncer interface {
	LastSync() time.Time
}

// watch: sync every connection periodically under supervision.
func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Sync every configured connection periodically",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := buildTargets(cfg, nil)
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

			watcher := syncpkg.NewWatcher(
				syncpkg.NewSyncer(store, cfg.Fetch.Concurrency),
				targets,
				cfg.Watch.Interval,
				cfg.Fetch.Lookback,
			)

			tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
			if err != nil {
				return err
			}
			tree.AddSyncService(services.NewSyncService(watcher))

			if cfg.Watch.MetricsAddr != "" {
				server := &http.Server{
					Addr:              cfg.Watch.MetricsAddr,
					Handler:           newWatchRouter(watcher, cfg.Watch.Interval),
					ReadHeaderTimeout: 10 * time.Second,
				}
				tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
				logging.Info().Str("addr", cfg.Watch.MetricsAddr).Msg("Serving /metrics and /healthz")
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			logging.Info().Int("connections", len(targets)).Dur("interval", cfg.Watch.Interval).Msg("Starting watch mode")
			err = tree.Serve(ctx)
			if errors.Is(err, ctx.Err()) {
				err = nil
			}
			logging.Info().Msg("Watch mode stopped")
			return err
		},
	}
}

// newWatchRouter serves Prometheus metrics and a health document. The watcher
// is unhealthy once a sync is more than two intervals late.
func newWatchRouter(w lastSyncer, interval time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer, middleware.RequestID, middleware.AccessLog)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(rw http.ResponseWriter, req *http.Request) {
		last := w.LastSync()

		body := struct {
			Status   string     `json:"status"`
			LastSync *time.Time `json:"last_sync,omitempty"`
		}{Status: "starting"}
		code := http.StatusOK

		if !last.IsZero() {
			body.LastSync = &last
			body.Status = "ok"
			if time.Since(last) > 2*interval {
				body.Status = "stale"
				code = http.StatusServiceUnavailable
			}
		}

		rw.Header().Set("Content-Type", "application/json")
		rw.WriteHeader(code)
		if err := json.NewEncoder(rw).Encode(body); err != nil {
			logging.Debug().Err(err).Msg("Failed to write health response")
		}
	})
	return r
}
