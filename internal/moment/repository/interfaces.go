package repository

import (
	"time"

	"moments-backend/internal/moment/domain"
)

// MomentRepository is the remote table API for moments. Lookups that find
// nothing return (nil, nil).
type MomentRepository interface {
	// FindForUser returns moments the user owns or is listed as a
	// collaborator on, newest first, with preparations and comments nested.
	FindForUser(userID, userEmail string) ([]domain.Moment, error)
	FindByID(id string) (*domain.Moment, error)
	Insert(m *domain.Moment) (*domain.Moment, error)
	Update(id string, patch domain.MomentPatch) error
	UpdateSharing(id string, sharedWith []string, status map[string]domain.CollaboratorStatus) (*domain.Moment, error)
	UpdateInvitation(id string, status map[string]domain.CollaboratorStatus, setActive bool) error
	UpdateReflection(id string, text, photoURL *string) error
	Delete(id string) error
}

// PreparationRepository is the remote table API for tasks
type PreparationRepository interface {
	// FindForUser returns the flat task rows joined with their parent
	// moment, ordered by completion date.
	FindForUser(userID string) ([]domain.FlatTask, error)
	Insert(p *domain.Preparation) (*domain.Preparation, error)
	Update(id string, patch domain.PreparationPatch) error
	// UpdateDone flips the completion flags and returns the row as stored
	UpdateDone(id string, done bool, completionDate *time.Time) (*domain.Preparation, error)
	Delete(id string) error
}

// CommentRepository is the remote table API for comments
type CommentRepository interface {
	Insert(c *domain.Comment) (*domain.Comment, error)
	Delete(id string) error
}

// NotificationRepository is the remote table API for invitation notifications
type NotificationRepository interface {
	FindByRecipient(email string) ([]domain.Notification, error)
	Insert(n *domain.Notification) error
	MarkRead(id string) error
}
