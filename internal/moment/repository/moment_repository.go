package repository

import (
	"errors"
	"fmt"
	"time"

	"moments-backend/internal/moment/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// momentRepository implements MomentRepository using GORM
type momentRepository struct {
	db *gorm.DB
}

// NewMomentRepository creates a new GORM-based MomentRepository
func NewMomentRepository(db *gorm.DB) MomentRepository {
	return &momentRepository{db: db}
}

func (r *momentRepository) FindForUser(userID, userEmail string) ([]domain.Moment, error) {
	var rows []momentRow

	query := r.db.Model(&momentRow{}).
		Preload("Preparations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Order("created_at DESC")

	if userEmail != "" {
		// Owner or listed collaborator; shared_with is a jsonb string array
		member := fmt.Sprintf(`[%q]`, domain.NormalizeEmail(userEmail))
		query = query.Where("user_id = ? OR shared_with @> ?", userID, member)
	} else {
		query = query.Where("user_id = ?", userID)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	moments := make([]domain.Moment, 0, len(rows))
	for i := range rows {
		moments = append(moments, momentFromRow(&rows[i]))
	}
	return moments, nil
}

func (r *momentRepository) FindByID(id string) (*domain.Moment, error) {
	var row momentRow
	err := r.db.
		Preload("Preparations", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	m := momentFromRow(&row)
	return &m, nil
}

func (r *momentRepository) Insert(m *domain.Moment) (*domain.Moment, error) {
	now := time.Now()

	reminderDays := m.ReminderDays
	if reminderDays <= 0 {
		reminderDays = domain.DefaultReminderDays
	}

	statuses := statusMap{}
	for email, s := range m.SharedWithStatus {
		statuses[domain.NormalizeEmail(email)] = string(s)
	}

	row := momentRow{
		ID:               m.ID,
		Title:            m.Title,
		Description:      m.Description,
		Date:             m.Date,
		Category:         string(domain.ParseCategory(string(m.Category))),
		Status:           string(domain.MomentActive),
		UserID:           m.UserID,
		SharedWith:       emailList(m.SharedWith),
		SharedWithStatus: statuses,
		Notes:            m.Notes,
		ReminderDays:     reminderDays,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	if err := r.db.Create(&row).Error; err != nil {
		return nil, err
	}

	created := momentFromRow(&row)
	return &created, nil
}

func (r *momentRepository) Update(id string, patch domain.MomentPatch) error {
	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Date != nil {
		updates["date"] = *patch.Date
	}
	if patch.Category != nil {
		updates["category"] = string(*patch.Category)
	}
	if patch.IsPast != nil {
		updates["is_past"] = *patch.IsPast
	}

	return r.db.Model(&momentRow{}).Where("id = ?", id).Updates(updates).Error
}

func (r *momentRepository) UpdateSharing(id string, sharedWith []string, status map[string]domain.CollaboratorStatus) (*domain.Moment, error) {
	statuses := statusMap{}
	for email, s := range status {
		statuses[email] = string(s)
	}

	updates := map[string]interface{}{
		"shared_with":        emailList(sharedWith),
		"shared_with_status": statuses,
		// The owner's view of a shared moment stays active
		"status":     string(domain.MomentActive),
		"updated_at": time.Now(),
	}

	result := r.db.Model(&momentRow{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}

	return r.FindByID(id)
}

func (r *momentRepository) UpdateInvitation(id string, status map[string]domain.CollaboratorStatus, setActive bool) error {
	statuses := statusMap{}
	for email, s := range status {
		statuses[email] = string(s)
	}

	updates := map[string]interface{}{
		"shared_with_status": statuses,
		"updated_at":         time.Now(),
	}
	if setActive {
		updates["status"] = string(domain.MomentActive)
	}

	return r.db.Model(&momentRow{}).Where("id = ?", id).Updates(updates).Error
}

func (r *momentRepository) UpdateReflection(id string, text, photoURL *string) error {
	updates := map[string]interface{}{
		"reflection":       deref(text),
		"reflection_photo": deref(photoURL),
		"updated_at":       time.Now(),
	}
	return r.db.Model(&momentRow{}).Where("id = ?", id).Updates(updates).Error
}

func (r *momentRepository) Delete(id string) error {
	return r.db.Delete(&momentRow{}, "id = ?", id).Error
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
