package repository

import (
	"errors"
	"time"

	"moments-backend/internal/moment/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// preparationRepository implements PreparationRepository using GORM
type preparationRepository struct {
	db *gorm.DB
}

// NewPreparationRepository creates a new GORM-based PreparationRepository
func NewPreparationRepository(db *gorm.DB) PreparationRepository {
	return &preparationRepository{db: db}
}

func (r *preparationRepository) FindForUser(userID string) ([]domain.FlatTask, error) {
	var rows []flatTaskRow
	err := r.db.Table("preparations").
		Select("preparations.*, moments.title AS moment_title, moments.date AS moment_date").
		Joins("JOIN moments ON moments.id = preparations.moment_id").
		Where("moments.user_id = ?", userID).
		Order("preparations.completion_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.FlatTask, 0, len(rows))
	for i := range rows {
		tasks = append(tasks, flatTaskFromRow(&rows[i]))
	}
	return tasks, nil
}

func (r *preparationRepository) Insert(p *domain.Preparation) (*domain.Preparation, error) {
	reminder := p.ReminderEnabled

	row := preparationRow{
		ID:              p.ID,
		MomentID:        p.MomentID,
		Text:            p.Text,
		Owner:           p.Owner,
		CompletionDate:  p.CompletionDate,
		Done:            p.Done,
		IsDone:          p.Done,
		Completed:       p.Done,
		IsCompleted:     p.Done,
		ReminderEnabled: &reminder,
		CreatedAt:       time.Now(),
	}
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	if err := r.db.Create(&row).Error; err != nil {
		return nil, err
	}

	created := preparationFromRow(&row)
	return &created, nil
}

func (r *preparationRepository) Update(id string, patch domain.PreparationPatch) error {
	updates := map[string]interface{}{}
	if patch.Text != nil {
		updates["text"] = *patch.Text
	}
	if patch.Owner != nil {
		updates["owner"] = *patch.Owner
	}
	if patch.CompletionDate != nil {
		updates["completion_date"] = *patch.CompletionDate
	}
	if patch.Done != nil {
		setDoneColumns(updates, *patch.Done)
	}
	if patch.ReminderEnabled != nil {
		updates["reminder_enabled"] = *patch.ReminderEnabled
	}
	if len(updates) == 0 {
		return nil
	}

	return r.db.Model(&preparationRow{}).Where("id = ?", id).Updates(updates).Error
}

func (r *preparationRepository) UpdateDone(id string, done bool, completionDate *time.Time) (*domain.Preparation, error) {
	updates := map[string]interface{}{
		"completion_date": completionDate,
	}
	setDoneColumns(updates, done)

	result := r.db.Model(&preparationRow{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}

	var row preparationRow
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	updated := preparationFromRow(&row)
	return &updated, nil
}

func (r *preparationRepository) Delete(id string) error {
	return r.db.Delete(&preparationRow{}, "id = ?", id).Error
}

// setDoneColumns writes every historical completion flag in lockstep
func setDoneColumns(updates map[string]interface{}, done bool) {
	updates["done"] = done
	updates["is_done"] = done
	updates["completed"] = done
	updates["is_completed"] = done
}
