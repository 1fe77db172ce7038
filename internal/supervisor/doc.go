// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package supervisor provides process supervision for watch mode using suture v4.

# Overview

Services are organized into two layers for failure isolation:

	RootSupervisor ("declaspectacle")
	├── SyncSupervisor ("sync-layer")
	│   └── SyncService (periodic sync of every configured connection)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (/metrics, /healthz)

A vendor outage that crashes the sync loop does not take the metrics endpoint
down, and the reverse.

# Usage Example

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddSyncService(services.NewSyncService(watcher))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return tree.Serve(ctx)

# Configuration

Restart behavior is controlled by TreeConfig:
  - FailureThreshold: failures before backoff (default 5)
  - FailureDecay: rate at which failures decay per second (default 30)
  - FailureBackoff: wait once the threshold is hit (default 15s)
  - ShutdownTimeout: time allowed for each service to stop (default 10s)

Supervisor events are logged through slog via the sutureslog adapter.

# See Also

  - internal/supervisor/services: service wrappers
  - internal/sync: the Watcher run by SyncService
*/
package supervisor
