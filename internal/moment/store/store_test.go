package store_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"moments-backend/internal/moment/domain"
	"moments-backend/internal/moment/store"
	"moments-backend/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMomentRepo serves canned moments and records sharing updates
type fakeMomentRepo struct {
	moments map[string]*domain.Moment

	updateErr        error
	deleteErr        error
	lastSetActive    bool
	invitationCalled bool
}

func newFakeMomentRepo(moments ...*domain.Moment) *fakeMomentRepo {
	r := &fakeMomentRepo{moments: make(map[string]*domain.Moment)}
	for _, m := range moments {
		r.moments[m.ID] = m
	}
	return r
}

func (r *fakeMomentRepo) FindForUser(userID, userEmail string) ([]domain.Moment, error) {
	var out []domain.Moment
	for _, m := range r.moments {
		out = append(out, *m)
	}
	return out, nil
}

func (r *fakeMomentRepo) FindByID(id string) (*domain.Moment, error) {
	m, ok := r.moments[id]
	if !ok {
		return nil, nil
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMomentRepo) Insert(m *domain.Moment) (*domain.Moment, error) {
	copied := *m
	if copied.ID == "" {
		copied.ID = fmt.Sprintf("moment-%d", len(r.moments)+1)
	}
	copied.Status = domain.MomentActive
	if copied.ReminderDays <= 0 {
		copied.ReminderDays = domain.DefaultReminderDays
	}
	stored := copied
	r.moments[copied.ID] = &stored
	return &copied, nil
}

func (r *fakeMomentRepo) Update(id string, patch domain.MomentPatch) error {
	return r.updateErr
}

func (r *fakeMomentRepo) UpdateSharing(id string, sharedWith []string, status map[string]domain.CollaboratorStatus) (*domain.Moment, error) {
	m, ok := r.moments[id]
	if !ok {
		return nil, nil
	}
	m.SharedWith = sharedWith
	m.SharedWithStatus = status
	m.Status = domain.MomentActive
	copied := *m
	return &copied, nil
}

func (r *fakeMomentRepo) UpdateInvitation(id string, status map[string]domain.CollaboratorStatus, setActive bool) error {
	r.invitationCalled = true
	r.lastSetActive = setActive
	if m, ok := r.moments[id]; ok {
		m.SharedWithStatus = status
	}
	return nil
}

func (r *fakeMomentRepo) UpdateReflection(id string, text, photoURL *string) error {
	return nil
}

func (r *fakeMomentRepo) Delete(id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.moments, id)
	return nil
}

// fakePreparationRepo controls the toggle outcome per test
type fakePreparationRepo struct {
	flat []domain.FlatTask

	updateDoneErr   error
	updateDoneCalls int
}

func (r *fakePreparationRepo) FindForUser(userID string) ([]domain.FlatTask, error) {
	return r.flat, nil
}

func (r *fakePreparationRepo) Insert(p *domain.Preparation) (*domain.Preparation, error) {
	copied := *p
	if copied.ID == "" {
		copied.ID = fmt.Sprintf("task-%d", time.Now().UnixNano())
	}
	copied.Title = copied.Text
	copied.Completed = copied.Done
	return &copied, nil
}

func (r *fakePreparationRepo) Update(id string, patch domain.PreparationPatch) error {
	return nil
}

func (r *fakePreparationRepo) UpdateDone(id string, done bool, completionDate *time.Time) (*domain.Preparation, error) {
	r.updateDoneCalls++
	if r.updateDoneErr != nil {
		return nil, r.updateDoneErr
	}
	return &domain.Preparation{
		ID:             id,
		Done:           done,
		Completed:      done,
		CompletionDate: completionDate,
	}, nil
}

func (r *fakePreparationRepo) Delete(id string) error {
	return nil
}

type fakeCommentRepo struct{}

func (r *fakeCommentRepo) Insert(c *domain.Comment) (*domain.Comment, error) {
	copied := *c
	copied.ID = "comment-1"
	copied.Timestamp = time.Now()
	return &copied, nil
}

func (r *fakeCommentRepo) Delete(id string) error { return nil }

// fakeNotificationRepo records inserts and can fail selected recipients
type fakeNotificationRepo struct {
	inserted []domain.Notification
	failFor  map[string]bool
}

func (r *fakeNotificationRepo) FindByRecipient(email string) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range r.inserted {
		if n.Recipient == domain.NormalizeEmail(email) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) Insert(n *domain.Notification) error {
	if r.failFor[n.Recipient] {
		return errors.New("insert blocked")
	}
	r.inserted = append(r.inserted, *n)
	return nil
}

func (r *fakeNotificationRepo) MarkRead(id string) error { return nil }

// fakeNotifier records delivered reminders
type fakeNotifier struct {
	calls []notifyCall
}

type notifyCall struct {
	userID string
	title  string
	body   string
}

func (n *fakeNotifier) Notify(userID, title, body string) {
	n.calls = append(n.calls, notifyCall{userID: userID, title: title, body: body})
}

type env struct {
	store    *store.Store
	moments  *fakeMomentRepo
	preps    *fakePreparationRepo
	notifs   *fakeNotificationRepo
	notifier *fakeNotifier
	adapter  *storage.MemoryAdapter
}

func newEnv(t *testing.T, moments ...*domain.Moment) *env {
	t.Helper()

	e := &env{
		moments:  newFakeMomentRepo(moments...),
		preps:    &fakePreparationRepo{},
		notifs:   &fakeNotificationRepo{failFor: map[string]bool{}},
		notifier: &fakeNotifier{},
		adapter:  storage.NewMemoryAdapter(),
	}
	e.store = store.New(e.moments, e.preps, &fakeCommentRepo{}, e.notifs, e.adapter, e.notifier, "test-store")
	return e
}

func futureMoment(id, owner string) *domain.Moment {
	return &domain.Moment{
		ID:           id,
		Title:        "Trip",
		Date:         time.Now().AddDate(0, 0, 10),
		Category:     domain.CategoryTravel,
		Status:       domain.MomentActive,
		UserID:       owner,
		ReminderDays: domain.DefaultReminderDays,
	}
}

func TestToggleTaskRevertsOnRemoteFailure(t *testing.T) {
	m := futureMoment("m1", "owner")
	m.Tasks = []domain.Preparation{{ID: "t1", MomentID: "m1", Text: "Book flights", ReminderEnabled: true}}

	e := newEnv(t, m)
	e.store.FetchMoments("owner", "owner@x.com")
	e.preps.updateDoneErr = errors.New("connection refused")

	e.store.ToggleTask("m1", "t1")

	events := e.store.Events()
	require.Len(t, events, 1)
	require.Len(t, events[0].Tasks, 1)
	task := events[0].Tasks[0]
	assert.False(t, task.Done, "failed toggle must roll back")
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletionDate)
	assert.Equal(t, 1, e.preps.updateDoneCalls)
}

func TestToggleTaskTwiceRestoresOriginalState(t *testing.T) {
	m := futureMoment("m1", "owner")
	m.Tasks = []domain.Preparation{{ID: "t1", MomentID: "m1", Text: "Book flights"}}

	e := newEnv(t, m)
	e.store.FetchMoments("owner", "owner@x.com")

	e.store.ToggleTask("m1", "t1")
	first := e.store.Events()[0].Tasks[0]
	assert.True(t, first.Done)
	assert.True(t, first.Completed)
	assert.NotNil(t, first.CompletionDate)

	e.store.ToggleTask("m1", "t1")
	second := e.store.Events()[0].Tasks[0]
	assert.False(t, second.Done)
	assert.False(t, second.Completed)
	assert.Nil(t, second.CompletionDate)
}

func TestShareMomentNormalizesAndDedupes(t *testing.T) {
	m := futureMoment("m1", "owner")
	e := newEnv(t, m)

	result := e.store.ShareMoment("m1", "owner@x.com", []string{"Anna@X.com ", "anna@x.com", "bob@y.com"})

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Count)
	assert.Equal(t, 2, result.Total)

	stored := e.moments.moments["m1"]
	assert.Equal(t, []string{"anna@x.com", "bob@y.com"}, stored.SharedWith)
	assert.Equal(t, domain.CollaboratorPending, stored.SharedWithStatus["anna@x.com"])
	assert.Equal(t, domain.CollaboratorPending, stored.SharedWithStatus["bob@y.com"])
	assert.Len(t, e.notifs.inserted, 2)
}

func TestShareMomentPreservesAcceptedAndResetsDeclined(t *testing.T) {
	m := futureMoment("m1", "owner")
	m.SharedWith = []string{"anna@x.com", "bob@y.com"}
	m.SharedWithStatus = map[string]domain.CollaboratorStatus{
		"anna@x.com": domain.CollaboratorAccepted,
		"bob@y.com":  domain.CollaboratorDeclined,
	}

	e := newEnv(t, m)
	result := e.store.ShareMoment("m1", "owner@x.com", []string{"anna@x.com", "bob@y.com"})

	assert.True(t, result.Success)
	stored := e.moments.moments["m1"]
	assert.Equal(t, domain.CollaboratorAccepted, stored.SharedWithStatus["anna@x.com"])
	assert.Equal(t, domain.CollaboratorPending, stored.SharedWithStatus["bob@y.com"], "re-invite resets a declined collaborator")
}

func TestShareMomentBackfillsStatusForExistingCollaborators(t *testing.T) {
	m := futureMoment("m1", "owner")
	m.SharedWith = []string{"old@x.com"}
	m.SharedWithStatus = map[string]domain.CollaboratorStatus{}

	e := newEnv(t, m)
	result := e.store.ShareMoment("m1", "owner@x.com", []string{"new@y.com"})

	assert.True(t, result.Success)
	stored := e.moments.moments["m1"]
	assert.Equal(t, domain.CollaboratorPending, stored.SharedWithStatus["old@x.com"])
	assert.Equal(t, domain.CollaboratorPending, stored.SharedWithStatus["new@y.com"])
	for _, email := range stored.SharedWith {
		_, ok := stored.SharedWithStatus[email]
		assert.True(t, ok, "collaborator %s must carry a status entry", email)
	}
}

func TestShareMomentSelfOnlyIsNotEligible(t *testing.T) {
	m := futureMoment("m1", "owner")
	e := newEnv(t, m)

	result := e.store.ShareMoment("m1", "Owner@X.com", []string{"owner@x.com"})

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Count)
	assert.Equal(t, 0, result.Total)
	assert.Empty(t, e.notifs.inserted)
	// The sharing row update itself still went through
	assert.Contains(t, e.moments.moments["m1"].SharedWith, "owner@x.com")
}

func TestShareMomentReportsPartialFailure(t *testing.T) {
	m := futureMoment("m1", "owner")
	e := newEnv(t, m)
	e.notifs.failFor["bob@y.com"] = true

	result := e.store.ShareMoment("m1", "owner@x.com", []string{"anna@x.com", "bob@y.com"})

	assert.True(t, result.Success, "partial delivery still counts as success")
	assert.Equal(t, 1, result.Count)
	assert.Equal(t, 2, result.Total)
}

func TestFetchMomentsDerivesViewerStatus(t *testing.T) {
	owned := futureMoment("m1", "viewer")

	pending := futureMoment("m2", "someone-else")
	pending.SharedWith = []string{"viewer@x.com"}
	pending.SharedWithStatus = map[string]domain.CollaboratorStatus{}

	declined := futureMoment("m3", "someone-else")
	declined.SharedWith = []string{"viewer@x.com"}
	declined.SharedWithStatus = map[string]domain.CollaboratorStatus{
		"viewer@x.com": domain.CollaboratorDeclined,
	}

	e := newEnv(t, owned, pending, declined)
	e.store.FetchMoments("viewer", "Viewer@X.com")

	events := e.store.Events()
	require.Len(t, events, 2, "declined invitations disappear from the collaborator's view")

	byID := map[string]domain.Moment{}
	for _, m := range events {
		byID[m.ID] = m
	}

	assert.False(t, byID["m1"].SharedWithMe)
	assert.Equal(t, domain.MomentActive, byID["m1"].Status)

	assert.True(t, byID["m2"].SharedWithMe)
	assert.Equal(t, domain.MomentPending, byID["m2"].Status)
}

func TestRespondToInvitation(t *testing.T) {
	m := futureMoment("m1", "owner")
	m.SharedWith = []string{"anna@x.com"}
	m.SharedWithStatus = map[string]domain.CollaboratorStatus{"anna@x.com": domain.CollaboratorPending}

	e := newEnv(t, m)

	err := e.store.RespondToInvitation("m1", "anna", "anna@x.com", "maybe")
	assert.ErrorIs(t, err, store.ErrInvalidDecision)

	err = e.store.RespondToInvitation("missing", "anna", "anna@x.com", domain.CollaboratorAccepted)
	assert.ErrorIs(t, err, store.ErrMomentNotFound)

	err = e.store.RespondToInvitation("m1", "carol", "carol@z.com", domain.CollaboratorAccepted)
	assert.ErrorIs(t, err, store.ErrNotInvited)

	err = e.store.RespondToInvitation("m1", "anna", "Anna@X.com", domain.CollaboratorAccepted)
	require.NoError(t, err)
	assert.True(t, e.moments.invitationCalled)
	assert.True(t, e.moments.lastSetActive, "accepting as a collaborator reactivates the moment")
	assert.Equal(t, domain.CollaboratorAccepted, e.moments.moments["m1"].SharedWithStatus["anna@x.com"])
}

func TestActiveTasksExcludesPastEventsAndDoneTasks(t *testing.T) {
	upcoming := futureMoment("m1", "owner")
	upcoming.Tasks = []domain.Preparation{
		{ID: "t1", MomentID: "m1", Text: "Book flights"},
		{ID: "t2", MomentID: "m1", Text: "Pack bags", Done: true, Completed: true},
	}

	past := futureMoment("m2", "owner")
	past.Title = "Graduation"
	past.Date = time.Now().AddDate(0, 0, -5)
	past.Tasks = []domain.Preparation{
		{ID: "t3", MomentID: "m2", Text: "Order gown"},
	}

	e := newEnv(t, upcoming, past)
	e.store.FetchMoments("owner", "owner@x.com")

	active := e.store.ActiveTasks()
	require.Len(t, active, 1)
	assert.Equal(t, "t1", active[0].ID)
	assert.Equal(t, "Trip", active[0].EventTitle)
	assert.Equal(t, domain.CategoryTravel, active[0].EventCategory)
}

func TestAllTasksAnnotatesParentEvent(t *testing.T) {
	m := futureMoment("m1", "owner")
	m.Tasks = []domain.Preparation{{ID: "t1", MomentID: "m1", Text: "Book flights"}}

	e := newEnv(t, m)
	e.store.FetchMoments("owner", "owner@x.com")

	all := e.store.AllTasks()
	require.Len(t, all, 1)
	assert.Equal(t, "m1", all[0].EventID)
	assert.Equal(t, "Trip", all[0].EventTitle)
	assert.Equal(t, domain.CategoryTravel, all[0].EventCategory)
}

func TestAllTasksFallsBackToFlatCache(t *testing.T) {
	e := newEnv(t)
	e.preps.flat = []domain.FlatTask{
		{
			Preparation: domain.Preparation{ID: "t9", MomentID: "m9", Text: "Buy cake"},
			MomentTitle: "Birthday",
			MomentDate:  time.Now().AddDate(0, 0, 2),
		},
	}
	e.store.FetchTasks("owner")

	all := e.store.AllTasks()
	require.Len(t, all, 1)
	assert.Equal(t, "m9", all[0].EventID)
	assert.Equal(t, "Birthday", all[0].EventTitle)
	// Flat rows carry no category, so the fallback defaults to personal
	assert.Equal(t, domain.CategoryPersonal, all[0].EventCategory)
}

func TestRemoveMomentFailureLeavesStateUntouched(t *testing.T) {
	m := futureMoment("m1", "owner")
	e := newEnv(t, m)
	e.store.FetchMoments("owner", "owner@x.com")
	e.moments.deleteErr = errors.New("permission denied")

	err := e.store.RemoveMoment("m1")

	assert.Error(t, err)
	assert.Len(t, e.store.Events(), 1)
}

func TestAddTaskKeepsTasksSortedByDueDate(t *testing.T) {
	m := futureMoment("m1", "owner")
	e := newEnv(t, m)
	e.store.FetchMoments("owner", "owner@x.com")

	later := time.Now().AddDate(0, 0, 8)
	sooner := time.Now().AddDate(0, 0, 2)

	_, err := e.store.AddTask("m1", "Later task", "", &later, true)
	require.NoError(t, err)
	_, err = e.store.AddTask("m1", "Undated task", "", nil, true)
	require.NoError(t, err)
	_, err = e.store.AddTask("m1", "Sooner task", "", &sooner, true)
	require.NoError(t, err)

	tasks := e.store.Events()[0].Tasks
	require.Len(t, tasks, 3)
	assert.Equal(t, "Sooner task", tasks[0].Text)
	assert.Equal(t, "Later task", tasks[1].Text)
	assert.Equal(t, "Undated task", tasks[2].Text, "undated tasks sort last")
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := futureMoment("m1", "owner")
	m.Tasks = []domain.Preparation{{ID: "t1", MomentID: "m1", Text: "Book flights", Notified: true}}

	e := newEnv(t, m)
	e.store.FetchMoments("owner", "owner@x.com")

	// A second store over the same adapter and key restores the snapshot
	reloaded := store.New(newFakeMomentRepo(), &fakePreparationRepo{}, &fakeCommentRepo{}, &fakeNotificationRepo{}, e.adapter, nil, "test-store")

	events := reloaded.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "m1", events[0].ID)
	require.Len(t, events[0].Tasks, 1)
	assert.False(t, events[0].Tasks[0].Notified, "reminder suppression never survives a reload")
}

func TestCorruptSnapshotIsIgnored(t *testing.T) {
	adapter := storage.NewMemoryAdapter()
	require.NoError(t, adapter.SetItem("test-store", "{not json"))

	st := store.New(newFakeMomentRepo(), &fakePreparationRepo{}, &fakeCommentRepo{}, &fakeNotificationRepo{}, adapter, nil, "test-store")

	assert.Empty(t, st.Events())
	assert.Empty(t, st.FlatTasks())
}

func TestTaskReminderNotifiesOncePerProcess(t *testing.T) {
	due := time.Now().Add(20 * time.Hour)

	m := futureMoment("m1", "owner")
	m.Tasks = []domain.Preparation{
		{ID: "t1", MomentID: "m1", Text: "Book flights", CompletionDate: &due, ReminderEnabled: true},
	}

	e := newEnv(t, m)
	e.store.FetchMoments("owner", "owner@x.com")

	e.store.CheckUpcomingTasks()
	e.store.CheckUpcomingTasks()

	require.Len(t, e.notifier.calls, 1, "a due task nags once per process")
	assert.Equal(t, "owner", e.notifier.calls[0].userID)
	assert.Equal(t, "⏰ Task Due Soon", e.notifier.calls[0].title)
	assert.Contains(t, e.notifier.calls[0].body, "Book flights")
}

func TestEventReminderRepeatsEverySweep(t *testing.T) {
	within := futureMoment("m1", "owner")
	within.Date = time.Now().AddDate(0, 0, 2)

	outside := futureMoment("m2", "owner")
	outside.Title = "Graduation"

	e := newEnv(t, within, outside)
	e.store.FetchMoments("owner", "owner@x.com")

	e.store.CheckUpcomingEvents()
	e.store.CheckUpcomingEvents()

	require.Len(t, e.notifier.calls, 2, "events inside the reminder lead notify on every sweep")
	for _, call := range e.notifier.calls {
		assert.Equal(t, "⏰ Upcoming Event Reminder", call.title)
		assert.Contains(t, call.body, "Trip")
	}
}

func TestResetClearsEverything(t *testing.T) {
	m := futureMoment("m1", "owner")
	e := newEnv(t, m)
	e.store.FetchMoments("owner", "owner@x.com")
	require.NotEmpty(t, e.store.Events())

	e.store.Reset()

	assert.Empty(t, e.store.Events())
	assert.Empty(t, e.store.FlatTasks())
	assert.Empty(t, e.store.Notifications())

	// The cleared state is what got persisted, so a reload stays empty
	reloaded := store.New(newFakeMomentRepo(), &fakePreparationRepo{}, &fakeCommentRepo{}, &fakeNotificationRepo{}, e.adapter, nil, "test-store")
	assert.Empty(t, reloaded.Events())
}
