package store

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"moments-backend/internal/moment/domain"
	"moments-backend/internal/moment/repository"
	"moments-backend/pkg/storage"
)

// DefaultStorageKey is the snapshot key used when none is configured
const DefaultStorageKey = "moments-store"

var (
	ErrMomentNotFound  = errors.New("moment not found")
	ErrNotInvited      = errors.New("you are not authorized to respond to this invitation")
	ErrInvalidDecision = errors.New("decision must be accepted or declined")
)

// Notifier is the permission-gated local notification side effect. The store
// calls it defensively and swallows any delivery panic.
type Notifier interface {
	Notify(userID, title, body string)
}

// State is the serialized shape of the store. Events is the canonical nested
// representation; Tasks is the denormalized fallback cache filled by a
// separate fetch.
type State struct {
	Events        []domain.Moment       `json:"events"`
	Tasks         []domain.FlatTask     `json:"tasks"`
	Notifications []domain.Notification `json:"notifications"`
}

// Store is the in-process source of truth for one viewing user's moments,
// tasks and comments. It mediates all remote reads and writes and persists a
// full snapshot through the injected storage adapter after every mutation.
//
// Update ordering is deliberately split per operation: toggle and reflection
// updates are optimistic (local first, reconcile on failure), while create,
// update and delete are pessimistic (remote first). Callers depend on this
// split; do not unify it.
type Store struct {
	mu    sync.RWMutex
	state State

	// Viewing user, remembered from the last fetch
	userID    string
	userEmail string

	moments       repository.MomentRepository
	preparations  repository.PreparationRepository
	comments      repository.CommentRepository
	notifications repository.NotificationRepository

	adapter  storage.Adapter
	notifier Notifier
	key      string
}

// New creates a store wired to its remote tables and storage adapter, and
// restores the previous snapshot if one is readable.
func New(
	moments repository.MomentRepository,
	preparations repository.PreparationRepository,
	comments repository.CommentRepository,
	notifications repository.NotificationRepository,
	adapter storage.Adapter,
	notifier Notifier,
	key string,
) *Store {
	if key == "" {
		key = DefaultStorageKey
	}

	s := &Store{
		moments:       moments,
		preparations:  preparations,
		comments:      comments,
		notifications: notifications,
		adapter:       adapter,
		notifier:      notifier,
		key:           key,
	}
	s.load()
	return s
}

// FetchMoments replaces the events slice with the remote view for the given
// user: moments they own or collaborate on, with per-viewer status derived
// from the collaborator map and declined invitations filtered out. Read
// failures log and leave state untouched.
func (s *Store) FetchMoments(userID, userEmail string) {
	if userID == "" {
		return
	}
	email := domain.NormalizeEmail(userEmail)

	fetched, err := s.moments.FindForUser(userID, email)
	if err != nil {
		log.Printf("[EventStore] fetch moments failed: %v", err)
		return
	}

	events := make([]domain.Moment, 0, len(fetched))
	for _, m := range fetched {
		deriveViewerFields(&m, userID, email)
		// Owners always keep visibility; collaborators lose declined moments
		if m.UserID != userID && m.Status == domain.MomentDeclined {
			continue
		}
		events = append(events, m)
	}

	s.mu.Lock()
	s.userID = userID
	s.userEmail = email
	s.state.Events = events
	s.mu.Unlock()
	s.persist()
}

// FetchTasks replaces the flat task cache; events are preserved
func (s *Store) FetchTasks(userID string) {
	if userID == "" {
		return
	}

	tasks, err := s.preparations.FindForUser(userID)
	if err != nil {
		log.Printf("[EventStore] fetch tasks failed: %v", err)
		return
	}

	s.mu.Lock()
	s.state.Tasks = tasks
	s.mu.Unlock()
	s.persist()
}

// FetchNotifications replaces the notifications slice for the given recipient
func (s *Store) FetchNotifications(userEmail string) {
	if userEmail == "" {
		return
	}

	notifications, err := s.notifications.FindByRecipient(userEmail)
	if err != nil {
		log.Printf("[EventStore] fetch notifications failed: %v", err)
		return
	}

	s.mu.Lock()
	s.state.Notifications = notifications
	s.mu.Unlock()
	s.persist()
}

// AddMoment inserts the moment remotely and reflects it locally only on
// success. Any initial tasks on the input are kept locally as-is.
func (s *Store) AddMoment(m domain.Moment) (*domain.Moment, error) {
	created, err := s.moments.Insert(&m)
	if err != nil {
		log.Printf("[EventStore] insert moment failed: %v", err)
		return nil, err
	}
	created.Tasks = m.Tasks

	s.mu.Lock()
	s.state.Events = append(s.state.Events, *created)
	s.mu.Unlock()
	s.persist()

	return created, nil
}

// UpdateMoment writes the patch remotely first and mutates local state only
// on success.
func (s *Store) UpdateMoment(id string, patch domain.MomentPatch) error {
	if patch.Date != nil {
		isPast := patch.Date.Before(time.Now())
		patch.IsPast = &isPast
	}

	if err := s.moments.Update(id, patch); err != nil {
		log.Printf("[EventStore] update moment failed: %v", err)
		return err
	}

	s.mu.Lock()
	for i := range s.state.Events {
		if s.state.Events[i].ID != id {
			continue
		}
		e := &s.state.Events[i]
		if patch.Title != nil {
			e.Title = *patch.Title
		}
		if patch.Description != nil {
			e.Description = *patch.Description
		}
		if patch.Date != nil {
			e.Date = *patch.Date
		}
		if patch.Category != nil {
			e.Category = *patch.Category
		}
		if patch.IsPast != nil {
			e.IsPast = *patch.IsPast
		}
		e.LastEdited = time.Now()
		break
	}
	s.mu.Unlock()
	s.persist()

	return nil
}

// RemoveMoment deletes remotely first; on failure local state is untouched
// and the error is returned to the caller.
func (s *Store) RemoveMoment(id string) error {
	if err := s.moments.Delete(id); err != nil {
		log.Printf("[EventStore] delete moment failed: %v", err)
		return err
	}

	s.mu.Lock()
	events := s.state.Events[:0]
	for _, e := range s.state.Events {
		if e.ID != id {
			events = append(events, e)
		}
	}
	s.state.Events = events
	s.mu.Unlock()
	s.persist()

	return nil
}

// AddTask inserts the preparation remotely and, on success, appends it to
// the parent moment's task list re-sorted by completion date.
func (s *Store) AddTask(eventID, text, owner string, completionDate *time.Time, reminderEnabled bool) (*domain.Preparation, error) {
	created, err := s.preparations.Insert(&domain.Preparation{
		MomentID:        eventID,
		Text:            text,
		Owner:           owner,
		CompletionDate:  completionDate,
		ReminderEnabled: reminderEnabled,
	})
	if err != nil {
		log.Printf("[EventStore] insert preparation failed: %v", err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.state.Events {
		if s.state.Events[i].ID != eventID {
			continue
		}
		tasks := append(s.state.Events[i].Tasks, *created)
		sortTasksByCompletionDate(tasks)
		s.state.Events[i].Tasks = tasks
		break
	}
	s.mu.Unlock()
	s.persist()

	return created, nil
}

// UpdateTask writes the patch remotely first; local Text/Title and
// Done/Completed pairs stay in sync.
func (s *Store) UpdateTask(eventID, taskID string, patch domain.PreparationPatch) error {
	if err := s.preparations.Update(taskID, patch); err != nil {
		log.Printf("[EventStore] update preparation failed: %v", err)
		return err
	}

	s.mu.Lock()
	if _, task := s.findTaskLocked(eventID, taskID); task != nil {
		if patch.Text != nil {
			task.Text = *patch.Text
			task.Title = *patch.Text
		}
		if patch.Owner != nil {
			task.Owner = *patch.Owner
		}
		if patch.CompletionDate != nil {
			task.CompletionDate = patch.CompletionDate
		}
		if patch.Done != nil {
			task.Done = *patch.Done
			task.Completed = *patch.Done
		}
		if patch.ReminderEnabled != nil {
			task.ReminderEnabled = *patch.ReminderEnabled
		}
	}
	s.mu.Unlock()
	s.persist()

	return nil
}

// ToggleTask flips the done flag optimistically, then fires the remote
// write. A remote failure reverts the local flags and timestamp; a success
// re-synchronizes the flat task cache from the row as stored. Transient
// failures are hidden from the caller on purpose: the next full fetch
// reconciles.
func (s *Store) ToggleTask(eventID, taskID string) {
	s.mu.Lock()
	_, task := s.findTaskLocked(eventID, taskID)
	if task == nil {
		s.mu.Unlock()
		// Nested state may be stale; fall back to the flat cache
		s.toggleFlatTask(taskID)
		return
	}

	prevDone, prevCompleted, prevDate := task.Done, task.Completed, task.CompletionDate
	nextDone := !(task.Completed || task.Done)
	var nextDate *time.Time
	if nextDone {
		now := time.Now()
		nextDate = &now
	}
	task.Done = nextDone
	task.Completed = nextDone
	task.CompletionDate = nextDate
	s.mu.Unlock()
	s.persist()

	updated, err := s.preparations.UpdateDone(taskID, nextDone, nextDate)
	if err != nil {
		log.Printf("[EventStore] toggle failed, reverting task %s: %v", taskID, err)
		s.mu.Lock()
		if _, t := s.findTaskLocked(eventID, taskID); t != nil {
			t.Done = prevDone
			t.Completed = prevCompleted
			t.CompletionDate = prevDate
		}
		s.mu.Unlock()
		s.persist()
		return
	}

	if updated != nil {
		s.mu.Lock()
		for i := range s.state.Tasks {
			if s.state.Tasks[i].ID == taskID {
				s.state.Tasks[i].Done = updated.Done
				s.state.Tasks[i].Completed = updated.Done
				s.state.Tasks[i].CompletionDate = updated.CompletionDate
			}
		}
		s.mu.Unlock()
		s.persist()
	}
}

// toggleFlatTask handles a toggle that only the flat cache knows about. On
// success it triggers a full refetch of events to repair the stale nested
// state.
func (s *Store) toggleFlatTask(taskID string) {
	s.mu.Lock()
	var target *domain.FlatTask
	for i := range s.state.Tasks {
		if s.state.Tasks[i].ID == taskID {
			target = &s.state.Tasks[i]
			break
		}
	}
	if target == nil {
		s.mu.Unlock()
		return
	}

	prevDone, prevCompleted, prevDate := target.Done, target.Completed, target.CompletionDate
	nextDone := !(target.Completed || target.Done)
	var nextDate *time.Time
	if nextDone {
		now := time.Now()
		nextDate = &now
	}
	target.Done = nextDone
	target.Completed = nextDone
	target.CompletionDate = nextDate
	userID, userEmail := s.userID, s.userEmail
	s.mu.Unlock()
	s.persist()

	if _, err := s.preparations.UpdateDone(taskID, nextDone, nextDate); err != nil {
		log.Printf("[EventStore] toggle failed, reverting flat task %s: %v", taskID, err)
		s.mu.Lock()
		for i := range s.state.Tasks {
			if s.state.Tasks[i].ID == taskID {
				s.state.Tasks[i].Done = prevDone
				s.state.Tasks[i].Completed = prevCompleted
				s.state.Tasks[i].CompletionDate = prevDate
			}
		}
		s.mu.Unlock()
		s.persist()
		return
	}

	s.FetchMoments(userID, userEmail)
}

// RemoveTask deletes remotely first; local state changes only on success
func (s *Store) RemoveTask(eventID, taskID string) error {
	if err := s.preparations.Delete(taskID); err != nil {
		log.Printf("[EventStore] delete preparation failed: %v", err)
		return err
	}

	s.mu.Lock()
	for i := range s.state.Events {
		if s.state.Events[i].ID != eventID {
			continue
		}
		tasks := s.state.Events[i].Tasks[:0]
		for _, t := range s.state.Events[i].Tasks {
			if t.ID != taskID {
				tasks = append(tasks, t)
			}
		}
		s.state.Events[i].Tasks = tasks
		break
	}
	s.mu.Unlock()
	s.persist()

	return nil
}

// AddComment inserts remotely and appends the stored row locally on success
func (s *Store) AddComment(eventID, content, fileURL, fileName string) (*domain.Comment, error) {
	created, err := s.comments.Insert(&domain.Comment{
		MomentID: eventID,
		Content:  content,
		FileURL:  fileURL,
		FileName: fileName,
	})
	if err != nil {
		log.Printf("[EventStore] insert comment failed: %v", err)
		return nil, err
	}

	s.mu.Lock()
	for i := range s.state.Events {
		if s.state.Events[i].ID == eventID {
			s.state.Events[i].Comments = append(s.state.Events[i].Comments, *created)
			break
		}
	}
	s.mu.Unlock()
	s.persist()

	return created, nil
}

// RemoveComment deletes remotely first; local state changes only on success
func (s *Store) RemoveComment(eventID, commentID string) error {
	if err := s.comments.Delete(commentID); err != nil {
		log.Printf("[EventStore] delete comment failed: %v", err)
		return err
	}

	s.mu.Lock()
	for i := range s.state.Events {
		if s.state.Events[i].ID != eventID {
			continue
		}
		comments := s.state.Events[i].Comments[:0]
		for _, c := range s.state.Events[i].Comments {
			if c.ID != commentID {
				comments = append(comments, c)
			}
		}
		s.state.Events[i].Comments = comments
		break
	}
	s.mu.Unlock()
	s.persist()

	return nil
}

// UpdateReflection mutates local state immediately for instant feedback and
// fires the remote write without rollback accounting.
func (s *Store) UpdateReflection(momentID string, text, photoURL *string) {
	s.mu.Lock()
	for i := range s.state.Events {
		if s.state.Events[i].ID != momentID {
			continue
		}
		if text != nil {
			s.state.Events[i].Reflection = *text
		}
		if photoURL != nil {
			s.state.Events[i].ReflectionPhoto = *photoURL
		}
		break
	}
	s.mu.Unlock()
	s.persist()

	if err := s.moments.UpdateReflection(momentID, text, photoURL); err != nil {
		log.Printf("[EventStore] update reflection failed: %v", err)
	}
}

// Reset clears all state slices. Used on sign-out so the persisted snapshot
// cannot leak into the next account.
func (s *Store) Reset() {
	s.mu.Lock()
	s.state = State{
		Events:        []domain.Moment{},
		Tasks:         []domain.FlatTask{},
		Notifications: []domain.Notification{},
	}
	s.mu.Unlock()
	s.persist()
}

// Events returns a copy of the nested events slice
func (s *Store) Events() []domain.Moment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Moment(nil), s.state.Events...)
}

// Notifications returns a copy of the notifications slice
func (s *Store) Notifications() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notification(nil), s.state.Notifications...)
}

// FlatTasks returns a copy of the flat task cache
func (s *Store) FlatTasks() []domain.FlatTask {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.FlatTask(nil), s.state.Tasks...)
}

// findTaskLocked returns pointers into state; the caller must hold mu
func (s *Store) findTaskLocked(eventID, taskID string) (*domain.Moment, *domain.Preparation) {
	for i := range s.state.Events {
		if s.state.Events[i].ID != eventID {
			continue
		}
		for j := range s.state.Events[i].Tasks {
			if s.state.Events[i].Tasks[j].ID == taskID {
				return &s.state.Events[i], &s.state.Events[i].Tasks[j]
			}
		}
		return &s.state.Events[i], nil
	}
	return nil, nil
}

// deriveViewerFields computes the viewer-relative status and sharing flags
func deriveViewerFields(m *domain.Moment, userID, email string) {
	isOwner := m.UserID == userID

	inShared := false
	for _, e := range m.SharedWith {
		if domain.NormalizeEmail(e) == email {
			inShared = true
			break
		}
	}
	m.SharedWithMe = !isOwner && inShared

	if m.Status == "" {
		m.Status = domain.MomentActive
	}
	if !isOwner && email != "" && inShared {
		switch m.SharedWithStatus[email] {
		case domain.CollaboratorAccepted:
			m.Status = domain.MomentActive
		case domain.CollaboratorDeclined:
			m.Status = domain.MomentDeclined
		default:
			m.Status = domain.MomentPending
		}
	}
}

// sortTasksByCompletionDate orders tasks by due date, undated last
func sortTasksByCompletionDate(tasks []domain.Preparation) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].CompletionDate, tasks[j].CompletionDate
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.Before(*b)
	})
}
