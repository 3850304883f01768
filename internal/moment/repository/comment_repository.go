package repository

import (
	"time"

	"moments-backend/internal/moment/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// commentRepository implements CommentRepository using GORM
type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new GORM-based CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Insert(c *domain.Comment) (*domain.Comment, error) {
	row := commentRow{
		ID:        c.ID,
		MomentID:  c.MomentID,
		Content:   c.Content,
		FileURL:   c.FileURL,
		FileName:  c.FileName,
		CreatedAt: time.Now(),
	}
	if row.ID == "" {
		row.ID = uuid.New().String()
	}

	if err := r.db.Create(&row).Error; err != nil {
		return nil, err
	}

	created := commentFromRow(&row)
	return &created, nil
}

func (r *commentRepository) Delete(id string) error {
	return r.db.Delete(&commentRow{}, "id = ?", id).Error
}
