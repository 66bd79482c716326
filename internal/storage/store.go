// Package storage persists engine options and cumulative search
// statistics in a BadgerDB key-value store under the user's data
// directory.
package storage

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
)

const (
	keyOptions = "options"
	keyStats   = "stats"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("storage: not found")

// Options are the persisted engine settings, restored at startup.
type Options struct {
	HashMB int `json:"hash_mb"`
}

// DefaultOptions returns the settings a fresh installation runs with.
func DefaultOptions() Options {
	return Options{HashMB: 64}
}

// Stats accumulates usage counters across engine runs.
type Stats struct {
	Searches   int       `json:"searches"`
	TotalNodes uint64    `json:"total_nodes"`
	PerftRuns  int       `json:"perft_runs"`
	LastUsed   time.Time `json:"last_used"`
}

// Store wraps a Badger database.
type Store struct {
	db *badger.DB
}

// Open opens (creating if needed) the store in the given directory.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only for the process; used in
// tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) getJSON(key string, v interface{}) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

func (s *Store) setJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// LoadOptions returns the persisted options, or ErrNotFound on a fresh
// store.
func (s *Store) LoadOptions() (Options, error) {
	opts := DefaultOptions()
	if err := s.getJSON(keyOptions, &opts); err != nil {
		return opts, err
	}
	return opts, nil
}

// SaveOptions persists the options.
func (s *Store) SaveOptions(opts Options) error {
	return s.setJSON(keyOptions, opts)
}

// LoadStats returns the accumulated statistics; a fresh store yields
// zeroes.
func (s *Store) LoadStats() (Stats, error) {
	var stats Stats
	err := s.getJSON(keyStats, &stats)
	if errors.Is(err, ErrNotFound) {
		return stats, nil
	}
	return stats, err
}

// RecordSearch adds one completed search to the statistics.
func (s *Store) RecordSearch(nodes uint64) error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.Searches++
	stats.TotalNodes += nodes
	stats.LastUsed = time.Now()
	return s.setJSON(keyStats, stats)
}

// RecordPerft adds one perft run to the statistics.
func (s *Store) RecordPerft() error {
	stats, err := s.LoadStats()
	if err != nil {
		return err
	}
	stats.PerftRuns++
	stats.LastUsed = time.Now()
	return s.setJSON(keyStats, stats)
}
