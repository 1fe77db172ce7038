// Declaspectacle - Ticketing Integration and Regulatory Declarations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/declaspectacle

// Package snapshot persists the last fetched series of each connection in
// BadgerDB so a later sync can report what changed.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/declaspectacle/internal/logging"
	"github.com/tomtom215/declaspectacle/internal/models"
)

// MemoryPath opens an in-memory store.
const MemoryPath = ":memory:"

const keyPrefix = "snapshot:"

// Snapshot is the result of one successful fetch.
type Snapshot struct {
	Connection string                         `json:"connection"`
	Vendor     string                         `json:"vendor"`
	From       time.Time                      `json:"from"`
	To         *time.Time                     `json:"to,omitempty"`
	TakenAt    time.Time                      `json:"taken_at"`
	Series     []models.LiteEventSerieWrapper `json:"series"`
}

// Store keeps one snapshot per connection.
type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

// Open opens the store at path, or in memory when path is MemoryPath.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == MemoryPath {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	s := &Store{db: db, log: logging.WithComponent("snapshot")}
	s.log.Debug().Str("path", path).Msg("Snapshot store opened")
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save replaces the snapshot of snap.Connection.
func (s *Store) Save(_ context.Context, snap *Snapshot) error {
	if snap.Connection == "" {
		return errors.New("save snapshot: empty connection name")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+snap.Connection), data)
	})
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", snap.Connection, err)
	}

	s.log.Debug().
		Str("connection", snap.Connection).
		Int("series", len(snap.Series)).
		Int("bytes", len(data)).
		Msg("Snapshot saved")
	return nil
}

// Load returns the snapshot of connection, or nil, nil when none was saved.
func (s *Store) Load(_ context.Context, connection string) (*Snapshot, error) {
	var snap *Snapshot

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + connection))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			snap = &Snapshot{}
			return json.Unmarshal(val, snap)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", connection, err)
	}
	return snap, nil
}

// Delete removes the snapshot of connection. Deleting a missing snapshot is not an error.
func (s *Store) Delete(_ context.Context, connection string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(keyPrefix + connection))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", connection, err)
	}
	s.log.Debug().Str("connection", connection).Msg("Snapshot deleted")
	return nil
}

// Connections lists the connections that have a snapshot, sorted.
func (s *Store) Connections(_ context.Context) ([]string, error) {
	var names []string

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), keyPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	sort.Strings(names)
	return names, nil
}
