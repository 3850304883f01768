package scheduler

import (
	"log"
	"time"

	"moments-backend/internal/moment/store"
)

// ReminderScheduler periodically runs the reminder and past-event sweeps
// over every live store.
type ReminderScheduler struct {
	manager  *store.Manager
	interval time.Duration
	stopChan chan struct{}
}

// NewReminderScheduler creates a new scheduler
func NewReminderScheduler(manager *store.Manager) *ReminderScheduler {
	return &ReminderScheduler{
		manager:  manager,
		interval: 1 * time.Minute,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduler loop
func (s *ReminderScheduler) Start() {
	log.Println("[ReminderScheduler] Starting reminder scheduler (interval: 1 minute)")

	go func() {
		// Run immediately on start
		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				log.Println("[ReminderScheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *ReminderScheduler) Stop() {
	close(s.stopChan)
}

func (s *ReminderScheduler) sweep() {
	s.manager.Each(func(userID string, st *store.Store) {
		st.CheckPastMoments()
		st.CheckUpcomingEvents()
		st.CheckUpcomingTasks()
	})
}
