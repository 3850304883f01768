package store

import (
	"time"

	"moments-backend/internal/moment/domain"
)

// TaskView is a task annotated with its parent event for list screens
type TaskView struct {
	domain.Preparation
	EventID       string          `json:"event_id"`
	EventTitle    string          `json:"event_title"`
	EventCategory domain.Category `json:"event_category"`
}

// AllTasks flattens every task across all events, each annotated with its
// parent. When the nested representation holds no tasks it falls back to the
// flat cache, which carries no category and defaults to personal.
func (s *Store) AllTasks() []TaskView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var views []TaskView
	for _, e := range s.state.Events {
		for _, t := range e.Tasks {
			views = append(views, TaskView{
				Preparation:   t,
				EventID:       e.ID,
				EventTitle:    e.Title,
				EventCategory: e.Category,
			})
		}
	}
	if len(views) > 0 {
		return views
	}

	for _, t := range s.state.Tasks {
		views = append(views, TaskView{
			Preparation:   t.Preparation,
			EventID:       t.MomentID,
			EventTitle:    t.MomentTitle,
			EventCategory: domain.CategoryPersonal,
		})
	}
	return views
}

// ActiveTasks returns the open tasks of events that have not yet happened.
// Tasks of past events are excluded even when still open. The flat cache
// fallback applies the same date and done filters.
func (s *Store) ActiveTasks() []TaskView {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var views []TaskView
	for _, e := range s.state.Events {
		if e.IsPast || e.Date.Before(now) {
			continue
		}
		for _, t := range e.Tasks {
			if t.Done || t.Completed {
				continue
			}
			views = append(views, TaskView{
				Preparation:   t,
				EventID:       e.ID,
				EventTitle:    e.Title,
				EventCategory: e.Category,
			})
		}
	}
	if len(views) > 0 {
		return views
	}

	for _, t := range s.state.Tasks {
		if t.MomentDate.Before(now) {
			continue
		}
		if t.Done || t.Completed {
			continue
		}
		views = append(views, TaskView{
			Preparation:   t.Preparation,
			EventID:       t.MomentID,
			EventTitle:    t.MomentTitle,
			EventCategory: domain.CategoryPersonal,
		})
	}
	return views
}
