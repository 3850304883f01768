package domain

import (
	"strings"
	"time"
)

// Category classifies a moment
type Category string

const (
	CategoryBirthday  Category = "birthday"
	CategoryWork      Category = "work"
	CategoryTravel    Category = "travel"
	CategoryEducation Category = "education"
	CategoryPersonal  Category = "personal"
)

// ParseCategory maps a raw string onto a known category, defaulting to personal
func ParseCategory(s string) Category {
	switch Category(s) {
	case CategoryBirthday, CategoryWork, CategoryTravel, CategoryEducation, CategoryPersonal:
		return Category(s)
	default:
		return CategoryPersonal
	}
}

// CollaboratorStatus is the per-email invitation state on a shared moment
type CollaboratorStatus string

const (
	CollaboratorPending  CollaboratorStatus = "pending"
	CollaboratorAccepted CollaboratorStatus = "accepted"
	CollaboratorDeclined CollaboratorStatus = "declined"
)

// MomentStatus is the moment's overall state as seen by the viewing user
type MomentStatus string

const (
	MomentActive   MomentStatus = "active"
	MomentPending  MomentStatus = "pending"
	MomentDeclined MomentStatus = "declined"
)

// DefaultReminderDays is how many days before a moment the reminder fires
// when the owner has not configured a lead time.
const DefaultReminderDays = 3

// Moment is a user-created occasion with a date, category and preparations
type Moment struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Category    Category  `json:"category"`

	Status           MomentStatus                  `json:"status"`
	UserID           string                        `json:"user_id"`
	SharedWith       []string                      `json:"shared_with"`
	SharedWithStatus map[string]CollaboratorStatus `json:"shared_with_status"`
	// SharedWithMe is derived for the viewing user on fetch, never stored
	SharedWithMe bool `json:"shared_with_me"`

	Tasks    []Preparation `json:"tasks"`
	Comments []Comment     `json:"comments"`

	Notes           string `json:"notes,omitempty"`
	ReminderDays    int    `json:"reminder_days"`
	Reflection      string `json:"reflection,omitempty"`
	ReflectionPhoto string `json:"reflection_photo,omitempty"`

	// IsPast is derivable from Date and the wall clock; the stored copy may
	// go stale until the next fetch.
	IsPast     bool      `json:"is_past"`
	CreatedAt  time.Time `json:"created_at"`
	LastEdited time.Time `json:"last_edited"`
}

// Preparation is a to-do item scoped to one moment
type Preparation struct {
	ID       string `json:"id"`
	MomentID string `json:"moment_id"`
	Text     string `json:"text"`
	// Title duplicates Text for historical reasons; the two are kept in sync
	Title          string     `json:"title"`
	Owner          string     `json:"owner,omitempty"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	Done           bool       `json:"done"`
	// Completed duplicates Done for historical reasons; kept in sync with Done
	Completed       bool `json:"completed"`
	ReminderEnabled bool `json:"reminder_enabled"`
	// Notified suppresses repeat reminders within a session only; it is
	// deliberately excluded from snapshots and rows, so it resets on reload.
	Notified bool `json:"-"`
}

// FlatTask is the denormalized task row used as a fallback read path when
// the nested moment/task data is unavailable.
type FlatTask struct {
	Preparation
	MomentTitle string    `json:"moment_title"`
	MomentDate  time.Time `json:"moment_date"`
}

// Comment belongs to exactly one moment. There is no edit operation; callers
// delete and re-create instead.
type Comment struct {
	ID        string    `json:"id"`
	MomentID  string    `json:"moment_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	FileURL   string    `json:"file_url,omitempty"`
	FileName  string    `json:"file_name,omitempty"`
}

// Notification is an invitation record addressed to a collaborator
type Notification struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Link      string    `json:"link,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeEmail lowercases and trims an email so collaborator lookups are
// consistent across the sharing and invitation paths.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MomentPatch carries the fields an update may change; nil means untouched
type MomentPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	Category    *Category
	IsPast      *bool
}

// PreparationPatch carries the fields a task update may change
type PreparationPatch struct {
	Text            *string
	Owner           *string
	CompletionDate  *time.Time
	Done            *bool
	ReminderEnabled *bool
}
