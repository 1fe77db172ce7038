// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/declaspectacle/internal/logging"
)

// test-connection [connection...]: check credentials and reachability.
func testConnectionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test-connection [connection...]",
		Short: "Check that connections are reachable with their credentials",
		Long:  "Check every named connection, or every configured one when none is named.",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := buildTargets(cfg, args)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			failed := 0
			for _, target := range targets {
				tctx := logging.ContextWithConnection(logging.ContextWithNewCorrelationID(ctx), target.Name, target.Connector.Vendor().String())
				ok, err := target.Connector.TestConnection(tctx)
				status := "ok"
				switch {
				case err != nil:
					status = "error: " + err.Error()
					failed++
				case !ok:
					status = "failed"
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", target.Name, target.Connector.Vendor(), status)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d connection(s) failed", failed, len(targets))
			}
			return nil
		},
	}
}
