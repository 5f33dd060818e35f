// Package store provides the durable key-value substrate and the local
// ledger of business entities for the POS terminal.
package store

import "sync"

// Store is the local persistent substrate. Keys hold opaque byte values;
// a missing key reads as (nil, nil). Writes fail only when the underlying
// storage is exhausted or broken, which is fatal to the operation.
type Store interface {
	ReadKey(name string) ([]byte, error)
	WriteKey(name string, data []byte) error
	DeleteKey(name string) error
}

// MemoryStore is a map-backed Store for tests and ephemeral terminals.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// ReadKey returns the stored value or (nil, nil) when absent.
func (s *MemoryStore) ReadKey(name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[name]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// WriteKey stores a copy of the value under the key.
func (s *MemoryStore) WriteKey(name string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	s.data[name] = stored
	return nil
}

// DeleteKey removes the key if present.
func (s *MemoryStore) DeleteKey(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, name)
	return nil
}
