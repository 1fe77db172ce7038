// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/models"
)

// fetch <connection>: print the canonical series of one connection as JSON.
func fetchCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "fetch <connection>",
		Short: "Fetch the series of a connection and print them as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, end, err := parseWindow(from, to, cfg.Fetch.Lookback, time.Now())
			if err != nil {
				return err
			}
			targets, err := buildTargets(cfg, args)
			if err != nil {
				return err
			}
			target := targets[0]

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			ctx = logging.ContextWithConnection(logging.ContextWithNewCorrelationID(ctx), target.Name, target.Connector.Vendor().String())

			series, err := target.Connector.GetEventsSeries(ctx, start, end)
			if err != nil {
				return err
			}
			if err := models.ValidateAll(series); err != nil {
				logging.Ctx(ctx).Warn().Err(err).Msg("Fetched series failed validation")
			}
			if series == nil {
				series = []models.LiteEventSerieWrapper{}
			}
			return writeJSON(cmd.OutOrStdout(), series)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "window start, YYYY-MM-DD or RFC 3339 (default now minus fetch.lookback)")
	cmd.Flags().StringVar(&to, "to", "", "window end, exclusive (default unbounded)")
	return cmd
}
