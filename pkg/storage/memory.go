package storage

import "sync"

// MemoryAdapter is an in-process Adapter, mainly for tests and ephemeral
// deployments where warm-start persistence is not needed.
type MemoryAdapter struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryAdapter creates an empty in-memory adapter
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{
		items: make(map[string]string),
	}
}

func (a *MemoryAdapter) GetItem(key string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.items[key], nil
}

func (a *MemoryAdapter) SetItem(key, value string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.items[key] = value
	return nil
}

func (a *MemoryAdapter) RemoveItem(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.items, key)
	return nil
}
