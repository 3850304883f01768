package store

import (
	"encoding/json"
	"log"

	"moments-backend/internal/moment/domain"
)

const snapshotVersion = 1

// snapshot is the persisted wire format. The version field exists so a
// future shape change can migrate instead of guessing.
type snapshot struct {
	State   State `json:"state"`
	Version int   `json:"version"`
}

// persist writes the full state through the storage adapter. Failures log
// and are otherwise ignored; the database remains the source of truth.
func (s *Store) persist() {
	s.mu.RLock()
	snap := snapshot{State: s.state, Version: snapshotVersion}
	data, err := json.Marshal(snap)
	s.mu.RUnlock()

	if err != nil {
		log.Printf("[EventStore] snapshot encode failed: %v", err)
		return
	}
	if err := s.adapter.SetItem(s.key, string(data)); err != nil {
		log.Printf("[EventStore] snapshot write failed: %v", err)
	}
}

// load restores the previous snapshot. A missing or unreadable snapshot is
// a cold start, never an error.
func (s *Store) load() {
	raw, err := s.adapter.GetItem(s.key)
	if err != nil {
		log.Printf("[WARN] snapshot read failed for %s: %v", s.key, err)
		return
	}
	if raw == "" {
		return
	}

	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Printf("[WARN] ignoring unreadable snapshot for %s: %v", s.key, err)
		return
	}

	s.mu.Lock()
	s.state = snap.State
	if s.state.Events == nil {
		s.state.Events = []domain.Moment{}
	}
	if s.state.Tasks == nil {
		s.state.Tasks = []domain.FlatTask{}
	}
	if s.state.Notifications == nil {
		s.state.Notifications = []domain.Notification{}
	}
	s.mu.Unlock()
}
