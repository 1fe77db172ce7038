// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

// Package commands implements the declaspectacle subcommands.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/declaspectacle/internal/config"
	"github.com/tomtom215/declaspectacle/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
)

// Execute runs the command line against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "declaspectacle",
		Short:        "Ticketing integrations and SIBIL declarations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var (
				loaded *config.Config
				err    error
			)
			if configPath != "" {
				loaded, err = config.LoadFrom(configPath)
			} else {
				loaded, err = config.Load()
			}
			if err != nil {
				return err
			}

			logging.Init(logging.Config{
				Level:     loaded.Logging.Level,
				Format:    loaded.Logging.Format,
				Caller:    loaded.Logging.Caller,
				Timestamp: true,
				Output:    cmd.ErrOrStderr(),
			})
			cfg = loaded

			logger := logging.WithComponent("cli").With().Str("command", cmd.Name()).Logger()
			cmd.SetContext(logging.ContextWithLogger(cmd.Context(), logger))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or ./config.yaml)")

	root.AddCommand(
		vendorsCmd(),
		testConnectionCmd(),
		fetchCmd(),
		syncCmd(),
		watchCmd(),
		declareCmd(),
	)
	return root
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
