package library

import (
	"context"
	"iter"
	"slices"
	"sync"
)

// MemoryStore keeps records in memory. It is safe for concurrent use and
// meant for tests and throwaway servers.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, name string) (*Record, error) {
	m.mu.RLock()
	v, ok := m.data[name]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeRecord(v)
}

func (m *MemoryStore) Put(_ context.Context, rec *Record) error {
	data, err := encodeRecord(rec)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[rec.Name] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	delete(m.data, name)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) All(_ context.Context) iter.Seq2[*Record, error] {
	m.mu.RLock()
	names := make([]string, 0, len(m.data))
	vals := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		names = append(names, k)
		vals[k] = v
	}
	m.mu.RUnlock()
	slices.Sort(names)

	return func(yield func(*Record, error) bool) {
		for _, name := range names {
			rec, err := decodeRecord(vals[name])
			if !yield(rec, err) {
				return
			}
		}
	}
}

func (m *MemoryStore) Close() error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
