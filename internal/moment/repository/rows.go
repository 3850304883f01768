package repository

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"moments-backend/internal/moment/domain"
)

// emailList stores the shared_with column as a JSON-encoded string array
type emailList []string

func (l emailList) Value() (driver.Value, error) {
	if l == nil {
		l = emailList{}
	}
	return json.Marshal(l)
}

func (l *emailList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported shared_with column type")
}

// statusMap stores shared_with_status as a JSON object keyed by email
type statusMap map[string]string

func (m statusMap) Value() (driver.Value, error) {
	if m == nil {
		m = statusMap{}
	}
	return json.Marshal(m)
}

func (m *statusMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	}
	return errors.New("unsupported shared_with_status column type")
}

type momentRow struct {
	ID               string `gorm:"primaryKey"`
	Title            string `gorm:"not null"`
	Description      string
	Date             time.Time
	Category         string
	Status           string
	UserID           string    `gorm:"column:user_id;index"`
	SharedWith       emailList `gorm:"column:shared_with;type:jsonb"`
	SharedWithStatus statusMap `gorm:"column:shared_with_status;type:jsonb"`
	Notes            string
	ReminderDays     int    `gorm:"column:reminder_days;default:3"`
	Reflection       string
	ReflectionPhoto  string `gorm:"column:reflection_photo"`
	IsPast           *bool  `gorm:"column:is_past"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Preparations []preparationRow `gorm:"foreignKey:MomentID"`
	Comments     []commentRow     `gorm:"foreignKey:MomentID"`
}

func (momentRow) TableName() string { return "moments" }

type preparationRow struct {
	ID             string `gorm:"primaryKey"`
	MomentID       string `gorm:"column:moment_id;index;not null"`
	Text           string `gorm:"not null"`
	Owner          string
	CompletionDate *time.Time `gorm:"column:completion_date"`
	// The historical schema accumulated four completion flags. Done is the
	// canonical one; the rest are written in lockstep for older readers.
	Done            bool  `gorm:"default:false"`
	IsDone          bool  `gorm:"column:is_done;default:false"`
	Completed       bool  `gorm:"default:false"`
	IsCompleted     bool  `gorm:"column:is_completed;default:false"`
	ReminderEnabled *bool `gorm:"column:reminder_enabled;default:true"`
	CreatedAt       time.Time
}

func (preparationRow) TableName() string { return "preparations" }

type commentRow struct {
	ID        string `gorm:"primaryKey"`
	MomentID  string `gorm:"column:moment_id;index;not null"`
	Content   string
	FileURL   string `gorm:"column:file_url"`
	FileName  string `gorm:"column:file_name"`
	CreatedAt time.Time
}

func (commentRow) TableName() string { return "comments" }

type notificationRow struct {
	ID        string `gorm:"primaryKey"`
	Recipient string `gorm:"index;not null"`
	Sender    string
	Message   string
	Link      string
	Read      bool `gorm:"default:false"`
	CreatedAt time.Time
}

func (notificationRow) TableName() string { return "notifications" }

// flatTaskRow is the joined shape produced by the denormalized task fetch
type flatTaskRow struct {
	ID              string
	MomentID        string `gorm:"column:moment_id"`
	Text            string
	Owner           string
	CompletionDate  *time.Time `gorm:"column:completion_date"`
	Done            bool
	IsDone          bool `gorm:"column:is_done"`
	Completed       bool
	IsCompleted     bool  `gorm:"column:is_completed"`
	ReminderEnabled *bool `gorm:"column:reminder_enabled"`
	MomentTitle     string `gorm:"column:moment_title"`
	MomentDate      time.Time `gorm:"column:moment_date"`
}

// AutoMigrate creates or updates the tables backing the moment feature
func AutoMigrate(db migrator) error {
	return db.AutoMigrate(&momentRow{}, &preparationRow{}, &commentRow{}, &notificationRow{})
}

type migrator interface {
	AutoMigrate(dst ...interface{}) error
}

// momentFromRow translates the snake_case remote row into the canonical
// in-process shape. Call sites never branch on raw column names.
func momentFromRow(r *momentRow) domain.Moment {
	status := domain.MomentStatus(r.Status)
	if status == "" {
		status = domain.MomentActive
	}

	isPast := r.Date.Before(time.Now())
	if r.IsPast != nil {
		isPast = *r.IsPast
	}

	reminderDays := r.ReminderDays
	if reminderDays <= 0 {
		reminderDays = domain.DefaultReminderDays
	}

	collab := make(map[string]domain.CollaboratorStatus, len(r.SharedWithStatus))
	for email, s := range r.SharedWithStatus {
		collab[domain.NormalizeEmail(email)] = domain.CollaboratorStatus(s)
	}

	lastEdited := r.UpdatedAt
	if lastEdited.IsZero() {
		lastEdited = r.CreatedAt
	}

	tasks := make([]domain.Preparation, 0, len(r.Preparations))
	for i := range r.Preparations {
		tasks = append(tasks, preparationFromRow(&r.Preparations[i]))
	}

	comments := make([]domain.Comment, 0, len(r.Comments))
	for i := range r.Comments {
		comments = append(comments, commentFromRow(&r.Comments[i]))
	}

	return domain.Moment{
		ID:               r.ID,
		Title:            r.Title,
		Date:             r.Date,
		Description:      r.Description,
		Category:         domain.ParseCategory(r.Category),
		Status:           status,
		UserID:           r.UserID,
		SharedWith:       append([]string(nil), r.SharedWith...),
		SharedWithStatus: collab,
		Tasks:            tasks,
		Comments:         comments,
		Notes:            r.Notes,
		ReminderDays:     reminderDays,
		Reflection:       r.Reflection,
		ReflectionPhoto:  r.ReflectionPhoto,
		IsPast:           isPast,
		CreatedAt:        r.CreatedAt,
		LastEdited:       lastEdited,
	}
}

func preparationFromRow(r *preparationRow) domain.Preparation {
	// Coalesce the duplicated flags the way older clients wrote them
	done := r.Done || r.IsDone || r.Completed || r.IsCompleted

	reminder := true
	if r.ReminderEnabled != nil {
		reminder = *r.ReminderEnabled
	}

	return domain.Preparation{
		ID:              r.ID,
		MomentID:        r.MomentID,
		Text:            r.Text,
		Title:           r.Text,
		Owner:           r.Owner,
		CompletionDate:  r.CompletionDate,
		Done:            done,
		Completed:       done,
		ReminderEnabled: reminder,
	}
}

func commentFromRow(r *commentRow) domain.Comment {
	return domain.Comment{
		ID:        r.ID,
		MomentID:  r.MomentID,
		Content:   r.Content,
		Timestamp: r.CreatedAt,
		FileURL:   r.FileURL,
		FileName:  r.FileName,
	}
}

func notificationFromRow(r *notificationRow) domain.Notification {
	return domain.Notification{
		ID:        r.ID,
		Recipient: r.Recipient,
		Sender:    r.Sender,
		Message:   r.Message,
		Link:      r.Link,
		Read:      r.Read,
		CreatedAt: r.CreatedAt,
	}
}

func flatTaskFromRow(r *flatTaskRow) domain.FlatTask {
	done := r.Done || r.IsDone || r.Completed || r.IsCompleted

	reminder := true
	if r.ReminderEnabled != nil {
		reminder = *r.ReminderEnabled
	}

	return domain.FlatTask{
		Preparation: domain.Preparation{
			ID:              r.ID,
			MomentID:        r.MomentID,
			Text:            r.Text,
			Title:           r.Text,
			Owner:           r.Owner,
			CompletionDate:  r.CompletionDate,
			Done:            done,
			Completed:       done,
			ReminderEnabled: reminder,
		},
		MomentTitle: r.MomentTitle,
		MomentDate:  r.MomentDate,
	}
}
