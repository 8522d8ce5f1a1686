package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(s *models.Session) error {
	return r.db.Create(s).Error
}

func (r *SessionRepository) Update(s *models.Session) error {
	return r.db.Save(s).Error
}

func (r *SessionRepository) Delete(s *models.Session) error {
	return r.db.Delete(s).Error
}

func (r *SessionRepository) GetByID(id uint) (*models.Session, error) {
	var s models.Session
	err := r.db.Preload("Tutor").Preload("Course").Preload("Students").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) ListByTutor(tutorID uint) ([]models.Session, error) {
	var list []models.Session
	err := r.db.Preload("Course").Where("tutor_id = ?", tutorID).
		Order("start_at ASC").Find(&list).Error
	return list, err
}

func (r *SessionRepository) AddStudent(s *models.Session, student *models.User) error {
	return r.db.Model(s).Association("Students").Append(student)
}
