package storage

import "sync"

// MemoryStore keeps values in process memory. Nothing survives Close.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Load(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Close() error { return nil }
