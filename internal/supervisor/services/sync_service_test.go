// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	syncpkg "github.com/tomtom215/declaspectacle/internal/sync"
)

type fakeManager struct {
	starts    atomic.Int32
	stops     atomic.Int32
	failUntil int32
	stopErr   error
}

func (m *fakeManager) Start(ctx context.Context) error {
	if n := m.starts.Add(1); n <= m.failUntil {
		return errors.New("simulated start failure")
	}
	return nil
}

func (m *fakeManager) Stop() error {
	m.stops.Add(1)
	return m.stopErr
}

var (
	_ suture.Service   = (*SyncService)(nil)
	_ StartStopManager = (*syncpkg.Watcher)(nil)
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSyncServiceStartsAndStops(t *testing.T) {
	mgr := &fakeManager{}
	svc := NewSyncService(mgr)
	if svc.String() != "sync-watcher" {
		t.Errorf("String() = %q, want sync-watcher", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	waitFor(t, func() bool { return mgr.starts.Load() == 1 })
	if mgr.stops.Load() != 0 {
		t.Error("manager stopped before cancellation")
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if mgr.stops.Load() != 1 {
		t.Errorf("Stop called %d times, want 1", mgr.stops.Load())
	}
}

func TestSyncServiceStartError(t *testing.T) {
	mgr := &fakeManager{failUntil: 1}
	err := NewSyncService(mgr).Serve(context.Background())
	if err == nil {
		t.Fatal("expected start error")
	}
	if mgr.stops.Load() != 0 {
		t.Error("Stop should not be called when Start fails")
	}
}

func TestSyncServiceStopError(t *testing.T) {
	mgr := &fakeManager{stopErr: errors.New("already stopped")}
	svc := NewSyncService(mgr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()
	waitFor(t, func() bool { return mgr.starts.Load() == 1 })
	cancel()

	if err := <-done; !errors.Is(err, mgr.stopErr) {
		t.Errorf("Serve() = %v, want wrapped stop error", err)
	}
}

func TestSyncServiceRestartedBySupervisor(t *testing.T) {
	mgr := &fakeManager{failUntil: 2}

	sup := suture.New("sync-test", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          100 * time.Millisecond,
	})
	sup.Add(NewSyncService(mgr))

	ctx, cancel := context.WithCancel(context.Background())
	done := sup.ServeBackground(ctx)

	waitFor(t, func() bool { return mgr.starts.Load() >= 3 })
	cancel()
	<-done

	if mgr.stops.Load() != 1 {
		t.Errorf("Stop called %d times, want 1", mgr.stops.Load())
	}
}
