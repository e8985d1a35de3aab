// Package storage persists small user preferences.
package storage

import (
	"fmt"
	"strings"
	"sync"
)

// Store is a key/value store of named numeric preferences.
type Store interface {
	Close() error
	// GetFloat returns the stored value and whether the key was present and parseable.
	GetFloat(key string) (float64, bool, error)
	SetFloat(key string, value float64) error
}

// NewStore creates the configured storage backend.
func NewStore(typ, path string) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "memory":
		return NewMemoryStore(), nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

type noopStore struct{}

func (noopStore) Close() error                          { return nil }
func (noopStore) GetFloat(string) (float64, bool, error) { return 0, false, nil }
func (noopStore) SetFloat(string, float64) error         { return nil }

// MemoryStore keeps preferences for the life of the process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]float64
}

// NewMemoryStore returns an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]float64)}
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) GetFloat(key string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) SetFloat(key string, value float64) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}
