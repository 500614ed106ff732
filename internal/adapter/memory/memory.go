// Package memory provides an in-memory reference implementation of the
// sink contracts (orchestrate.Saver, dedup.Loader) for use in tests and
// local experimentation, in place of the real document store and search
// engine clients that are out of this system's scope. Cursor persistence is not stood in for here - see
// internal/cursorstore, which is a core, in-scope component with its own
// durable, file-backed implementation.
package memory

import (
	"context"
	"sync"

	"github.com/repliq/repliq/internal/polyval"
)

// Store is an in-memory destination: a Saver that upserts by "_id" and a
// dedup.Loader that matches on a descriptor attribute, modeling the
// canonical document store or the search index equally well since both
// sinks share the same upsert-by-id, query-by-fingerprint shape.
type Store struct {
	mu      sync.Mutex
	byID    map[string]polyval.Value
	idOrder []string
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{byID: map[string]polyval.Value{}}
}

// Save upserts every record in batch by its "_id" field.
func (s *Store) Save(_ context.Context, batch []polyval.Value) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range batch {
		id := rec.Get("_id").AsString()
		if _, exists := s.byID[id]; !exists {
			s.idOrder = append(s.idOrder, id)
		}
		s.byID[id] = rec
	}
	return nil
}

// LoadByDescriptor implements dedup.Loader: it reports every stored record
// whose descriptorAttribute value is one of descriptors.
func (s *Store) LoadByDescriptor(_ context.Context, descriptorAttribute string, descriptors []int32, onRecord func(polyval.Value)) error {
	wanted := make(map[int32]struct{}, len(descriptors))
	for _, d := range descriptors {
		wanted[d] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.idOrder {
		rec := s.byID[id]
		v, ok := rec.Lookup(descriptorAttribute)
		if !ok {
			continue
		}
		if _, match := wanted[v.AsInt32()]; match {
			onRecord(rec)
		}
	}
	return nil
}

// All returns every stored record, in insertion order.
func (s *Store) All() []polyval.Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]polyval.Value, len(s.idOrder))
	for i, id := range s.idOrder {
		out[i] = s.byID[id]
	}
	return out
}

// Len reports how many distinct ids are stored.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.idOrder)
}
