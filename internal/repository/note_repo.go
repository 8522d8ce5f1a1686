package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type NoteRepository struct {
	db *gorm.DB
}

func NewNoteRepository(db *gorm.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(n *models.Note) error {
	return r.db.Create(n).Error
}

func (r *NoteRepository) Update(n *models.Note) error {
	return r.db.Save(n).Error
}

func (r *NoteRepository) Delete(n *models.Note) error {
	return r.db.Delete(n).Error
}

func (r *NoteRepository) GetByID(id uint) (*models.Note, error) {
	var n models.Note
	if err := r.db.First(&n, id).Error; err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NoteRepository) ListByStudent(studentID uint, includePrivate bool) ([]models.Note, error) {
	q := r.db.Preload("Author").Where("student_id = ?", studentID)
	if !includePrivate {
		q = q.Where("private = ?", false)
	}
	var notes []models.Note
	err := q.Order("created_at DESC").Find(&notes).Error
	return notes, err
}
