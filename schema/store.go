package schema

import (
	"fmt"
	"regexp"
	"sync"
)

// DefaultKey is the store key the index is persisted under.
const DefaultKey = "sqlkit.schemas"

var storeKeyPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]{0,127}$`)

// Store persists opaque blobs under string keys. Read returns nil data and a
// nil error when nothing is stored under key.
type Store interface {
	Read(key string) ([]byte, error)
	Write(key string, data []byte) error
}

func validateStoreKey(key string) error {
	if !storeKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid store key: %q", key)
	}
	return nil
}

// MemoryStore keeps blobs in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[string][]byte)}
}

func (m *MemoryStore) Read(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStore) Write(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	return nil
}
