// ABOUTME: TTL-bound key/value cache store backed by BadgerDB
// ABOUTME: Explicit store passed by reference, replacing module-level singletons
package cache

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v3"
)

// ErrNotFound is returned when a key is absent or its TTL has expired.
var ErrNotFound = errors.New("cache: key not found")

// Store is a keyed, TTL-bound cache. Entries expire server-side via badger's
// entry TTL, so expiry holds across process restarts and multiple readers.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a cache store at the given directory.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	opts := badger.DefaultOptions(path).
		WithLogger(nil) // Suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenInMemory opens an ephemeral store for tests and short-lived tools.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory cache: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the value for key, or ErrNotFound if absent or expired.
func (s *Store) Get(key string) ([]byte, error) {
	var result []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Set stores value under key with the given TTL. A zero TTL stores the entry
// without expiry.
func (s *Store) Set(key string, value []byte, ttl time.Duration) error {
	return s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Reset drops every entry in the store.
func (s *Store) Reset() error {
	return s.db.DropAll()
}

func (s *Store) Close() error {
	return s.db.Close()
}
