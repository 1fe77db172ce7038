// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

// Package main is the declaspectacle command line.
//
// It reads the configured ticketing connections, fetches their series in the
// canonical model, keeps snapshots to report what changed between fetches,
// and files SIBIL declarations.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 (highest priority wins):
//   - Environment variables (TICKETING_TIMEOUT, SIBIL_USERNAME, ...)
//   - Config file (--config, $CONFIG_PATH, ./config.yaml)
//   - Built-in defaults
//
// # Example Usage
//
//	declaspectacle vendors
//	declaspectacle test-connection theatre-billetweb
//	declaspectacle fetch theatre-billetweb --from 2024-11-01 --to 2024-12-01
//	declaspectacle sync --all
//	declaspectacle watch
//	declaspectacle declare declaration.json
//
// # Signal Handling
//
// Long-running commands stop on SIGINT and SIGTERM; watch waits for a
// running sync to finish and shuts the metrics server down.
package main

import (
	"os"

	"github.com/tomtom215/declaspectacle/cmd/declaspectacle/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
