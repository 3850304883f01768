package store

import "sync"

// Manager hands out one store per user so each account keeps an isolated
// snapshot and a reset never leaks state across accounts.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	factory func(userID string) *Store
}

// NewManager creates a manager that builds stores lazily through factory
func NewManager(factory func(userID string) *Store) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		factory: factory,
	}
}

// For returns the user's store, creating it on first use
func (m *Manager) For(userID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[userID]; ok {
		return s
	}
	s := m.factory(userID)
	m.stores[userID] = s
	return s
}

// Lookup returns the user's store if one exists, without creating it
func (m *Manager) Lookup(userID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stores[userID]
}

// Each calls fn for every live store. Used by the reminder sweeps.
func (m *Manager) Each(fn func(userID string, s *Store)) {
	m.mu.Lock()
	snapshot := make(map[string]*Store, len(m.stores))
	for id, s := range m.stores {
		snapshot[id] = s
	}
	m.mu.Unlock()

	for id, s := range snapshot {
		fn(id, s)
	}
}
