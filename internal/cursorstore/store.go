// Package cursorstore persists per-topic cursors (C2) in an embedded,
// memory-mapped B-tree key-value file so a run resumes exactly where the
// previous one stopped. It is a thin, single-writer wrapper over
// modernc.org/kv: every call opens the file, runs one transaction, and
// closes it again - there is no long-lived process-wide handle.
package cursorstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"modernc.org/kv"
)

// Store is a durable string -> string map keyed by topic name. Keys are
// chosen by the caller; cmd/repliq stores each tabular topic's last time
// under the topic name itself.
// All exported methods are safe for concurrent use; each serializes on an
// internal mutex, matching the single-writer contract.
type Store struct {
	path string
	mu   sync.Mutex
	opts *kv.Options
}

// Open returns a Store backed by the file at path. The file is created by
// the first method call (read or write) if it does not already exist; Open
// itself performs no I/O.
func Open(path string) *Store {
	return &Store{path: path, opts: &kv.Options{}}
}

func (s *Store) openDB() (*kv.DB, error) {
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		db, err := kv.Create(s.path, s.opts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrOpen, err)
		}
		return db, nil
	}
	db, err := kv.Open(s.path, s.opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpen, err)
	}
	return db, nil
}

// Get returns the value stored under key, or ErrNotFound if absent.
func (s *Store) Get(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openDB()
	if err != nil {
		return "", err
	}
	defer db.Close()

	v, err := db.Get(nil, []byte(key))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTxn, err)
	}
	if v == nil {
		return "", ErrNotFound
	}
	return string(v), nil
}

// GetOrDefault returns the value stored under key, or "" if absent. It
// never returns ErrNotFound.
func (s *Store) GetOrDefault(key string) (string, error) {
	v, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}

// Set durably stores value under key, committing one transaction.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.BeginTransaction(); err != nil {
		return fmt.Errorf("%w: %v", ErrTxn, err)
	}
	if err := db.Set([]byte(key), []byte(value)); err != nil {
		db.Rollback()
		return fmt.Errorf("%w: %v", ErrTxn, err)
	}
	if err := db.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrTxn, err)
	}
	return nil
}

// Remove deletes key, if present. Removing an absent key is a no-op.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.BeginTransaction(); err != nil {
		return fmt.Errorf("%w: %v", ErrTxn, err)
	}
	if err := db.Delete([]byte(key)); err != nil {
		db.Rollback()
		return fmt.Errorf("%w: %v", ErrTxn, err)
	}
	if err := db.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrTxn, err)
	}
	return nil
}

// Iterate calls fn for every key in ascending key order. Iteration stops
// and Iterate returns fn's error if fn returns a non-nil error.
func (s *Store) Iterate(fn func(key, value string) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	enum, _, err := db.Seek(nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTxn, err)
	}
	for {
		k, v, err := enum.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTxn, err)
		}
		if err := fn(string(k), string(v)); err != nil {
			return err
		}
	}
}
