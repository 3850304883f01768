package store

import (
	"fmt"
	"log"
	"time"

	"moments-backend/internal/moment/domain"
	"moments-backend/pkg/countdown"
)

// CheckPastMoments recomputes the is-past flag of every event against the
// current clock.
func (s *Store) CheckPastMoments() {
	now := time.Now()

	s.mu.Lock()
	for i := range s.state.Events {
		s.state.Events[i].IsPast = s.state.Events[i].Date.Before(now)
	}
	s.mu.Unlock()
	s.persist()
}

// CheckUpcomingEvents notifies for every upcoming event within its reminder
// lead time, inclusive of events due today. Already passed events are
// skipped. Event reminders repeat on every sweep; suppression happens at the
// delivery layer, not here.
func (s *Store) CheckUpcomingEvents() {
	now := time.Now()

	type dueEvent struct {
		title string
		days  int
	}

	s.mu.RLock()
	userID := s.userID
	var due []dueEvent
	for _, e := range s.state.Events {
		if !e.Date.After(now) {
			continue
		}
		lead := e.ReminderDays
		if lead <= 0 {
			lead = domain.DefaultReminderDays
		}
		days := countdown.DaysUntil(e.Date, now)
		if days <= lead {
			due = append(due, dueEvent{title: e.Title, days: days})
		}
	}
	s.mu.RUnlock()

	for _, d := range due {
		s.notify(userID, "⏰ Upcoming Event Reminder",
			fmt.Sprintf("%s is happening in %d day(s)!", d.title, d.days))
	}
}

// CheckUpcomingTasks notifies for open, reminder-enabled tasks due within a
// day, overdue ones included with their remaining days clamped to zero. A
// task notifies at most once per process lifetime; the flag is not persisted,
// so a restart re-arms reminders.
func (s *Store) CheckUpcomingTasks() {
	now := time.Now()

	type dueTask struct {
		text  string
		event string
		days  int
	}

	s.mu.Lock()
	userID := s.userID
	var due []dueTask
	for i := range s.state.Events {
		e := &s.state.Events[i]
		for j := range e.Tasks {
			t := &e.Tasks[j]
			if t.CompletionDate == nil || t.Done || t.Completed {
				continue
			}
			if !t.ReminderEnabled || t.Notified {
				continue
			}
			days := countdown.DaysUntil(*t.CompletionDate, now)
			if days <= 1 {
				t.Notified = true
				due = append(due, dueTask{text: t.Text, event: e.Title, days: days})
			}
		}
	}
	s.mu.Unlock()

	for _, d := range due {
		s.notify(userID, "⏰ Task Due Soon",
			fmt.Sprintf("%s (%s) is due in %d day(s)!", d.text, d.event, d.days))
	}
}

// notify delivers through the injected notifier, tolerating both its absence
// and any panic it raises.
func (s *Store) notify(userID, title, body string) {
	if s.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EventStore] notification delivery blocked: %v", r)
		}
	}()
	s.notifier.Notify(userID, title, body)
}
