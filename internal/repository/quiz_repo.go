package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type QuizRepository struct {
	db *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

func (r *QuizRepository) Create(q *models.Quiz) error {
	return r.db.Create(q).Error
}

func (r *QuizRepository) GetByID(id uint) (*models.Quiz, error) {
	var q models.Quiz
	if err := r.db.Preload("Lesson").First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QuizRepository) ListByLesson(lessonID uint) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	err := r.db.Where("lesson_id = ?", lessonID).Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) CreateAttempt(a *models.QuizAttempt) error {
	return r.db.Create(a).Error
}

func (r *QuizRepository) UpdateAttempt(a *models.QuizAttempt) error {
	return r.db.Save(a).Error
}

func (r *QuizRepository) GetAttempt(id uint) (*models.QuizAttempt, error) {
	var a models.QuizAttempt
	if err := r.db.Preload("Quiz").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *QuizRepository) CountAttempts(quizID, studentID uint) (int, error) {
	var n int64
	err := r.db.Model(&models.QuizAttempt{}).
		Where("quiz_id = ? AND student_id = ?", quizID, studentID).Count(&n).Error
	return int(n), err
}

func (r *QuizRepository) ListAttempts(quizID, studentID uint) ([]models.QuizAttempt, error) {
	var attempts []models.QuizAttempt
	err := r.db.Where("quiz_id = ? AND student_id = ?", quizID, studentID).
		Order("started_at ASC").Find(&attempts).Error
	return attempts, err
}
