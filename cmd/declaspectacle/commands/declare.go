// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/declaspectacle/internal/connerr"
	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/models"
	"github.com/tomtom215/declaspectacle/internal/sibil"
)

// declare <file.json>: login, file one declaration, logout.
func declareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "declare <file.json>",
		Short: "Submit a SIBIL declaration read from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, err := readDeclaration(args[0])
			if err != nil {
				return err
			}

			client, err := sibil.FromConfig(cfg.Sibil, cfg.Ticketing)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			ctx = logging.ContextWithNewCorrelationID(ctx)

			if err := client.Login(ctx); err != nil {
				return err
			}
			defer func() {
				// ctx may be canceled by now; logout still gets a chance.
				if err := client.Logout(context.WithoutCancel(ctx)); err != nil {
					logging.Warn().Err(err).Msg("SIBIL logout failed")
				}
			}()

			if err := client.Declare(ctx, decl); err != nil {
				var rejected *connerr.DeclarationRejectedError
				if errors.As(err, &rejected) {
					printViolations(cmd.OutOrStdout(), rejected)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "declared %q (%d performance(s))\n", decl.ShowName, len(decl.Events))
			return nil
		},
	}
}

func readDeclaration(path string) (models.SibilDeclaration, error) {
	var decl models.SibilDeclaration
	data, err := os.ReadFile(path)
	if err != nil {
		return decl, err
	}
	if err := json.Unmarshal(data, &decl); err != nil {
		return decl, fmt.Errorf("decode %s: %w", path, err)
	}
	return decl, nil
}

func printViolations(w io.Writer, rejected *connerr.DeclarationRejectedError) {
	for _, v := range rejected.Violations {
		fmt.Fprintf(w, "%s: %s\n", v.Field, v.Message)
	}
}
