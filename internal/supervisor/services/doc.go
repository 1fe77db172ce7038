// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package services provides suture.Service wrappers for watch mode components.

Each wrapper translates a component lifecycle into suture's context-aware
Serve pattern:

  - SyncService: Start/Stop pattern, wraps the sync Watcher
  - HTTPServerService: ListenAndServe pattern, wraps *http.Server

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

All wrappers implement fmt.Stringer; suture uses it to name services in logs.
*/
package services
