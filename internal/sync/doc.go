// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

/*
Package sync keeps the stored snapshot of each ticketing connection up to date
and reports what changed between two fetches.

Key Components:

  - Syncer: fetches a set of connections concurrently, diffs each result
    against the connection's last snapshot and stores the new one
  - Watcher: runs a Syncer periodically, with the Start/Stop lifecycle the
    supervisor's SyncService expects

A failed fetch never replaces a snapshot: the previous one stays until the
connection answers again. The first sync of a connection reports every event
as added.
*/
package sync
