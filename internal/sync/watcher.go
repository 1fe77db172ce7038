// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/ticketing"
)

// Watcher syncs a fixed set of connections every interval. The window of each
// run starts lookback before the run and has no upper bound.
type Watcher struct {
	syncer   *Syncer
	targets  []ticketing.Target
	interval time.Duration
	lookback time.Duration

	// onSync is called after every run; tests use it to wait for runs.
	onSync func([]Outcome)

	lastSync time.Time
	running  bool
	mu       sync.RWMutex
	syncMu   sync.Mutex // one run at a time
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher returns a stopped watcher.
func NewWatcher(syncer *Syncer, targets []ticketing.Target, interval, lookback time.Duration) *Watcher {
	return &Watcher{
		syncer:   syncer,
		targets:  targets,
		interval: interval,
		lookback: lookback,
	}
}

// Start runs a first sync in the background, then one every interval until
// ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher is already running")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.mu.Unlock()

	logging.Info().
		Int("connections", len(w.targets)).
		Dur("interval", w.interval).
		Msg("Starting sync watcher")

	w.wg.Add(1)
	go w.loop(ctx)
	return nil
}

// Stop ends the loop and waits for a running sync to finish.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher is not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
	logging.Info().Msg("Sync watcher stopped")
	return nil
}

// LastSync returns the start time of the last completed run.
func (w *Watcher) LastSync() time.Time {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastSync
}

// RunOnce syncs every connection now.
func (w *Watcher) RunOnce(ctx context.Context) []Outcome {
	w.syncMu.Lock()
	defer w.syncMu.Unlock()

	start := w.syncer.now()
	outcomes := w.syncer.SyncAll(ctx, w.targets, start.Add(-w.lookback), nil)

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		logging.Warn().Int("failed", failed).Int("connections", len(outcomes)).Msg("Sync run finished with failures")
	}

	w.mu.Lock()
	w.lastSync = start
	w.mu.Unlock()

	if w.onSync != nil {
		w.onSync(outcomes)
	}
	return outcomes
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	w.RunOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}
