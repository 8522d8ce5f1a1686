package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

func (r *AssignmentRepository) Create(a *models.Assignment) error {
	return r.db.Create(a).Error
}

func (r *AssignmentRepository) GetByID(id uint) (*models.Assignment, error) {
	var a models.Assignment
	if err := r.db.Preload("Lesson").First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) ListByLesson(lessonID uint) ([]models.Assignment, error) {
	var list []models.Assignment
	err := r.db.Where("lesson_id = ?", lessonID).Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) CreateSubmission(s *models.AssignmentSubmission) error {
	return r.db.Create(s).Error
}

func (r *AssignmentRepository) UpdateSubmission(s *models.AssignmentSubmission) error {
	return r.db.Save(s).Error
}

func (r *AssignmentRepository) GetSubmission(id uint) (*models.AssignmentSubmission, error) {
	var s models.AssignmentSubmission
	err := r.db.Preload("Assignment").Preload("Comments").First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AssignmentRepository) GetSubmissionByStudent(assignmentID, studentID uint) (*models.AssignmentSubmission, error) {
	var s models.AssignmentSubmission
	err := r.db.Preload("Assignment").
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *AssignmentRepository) ListSubmissions(assignmentID uint) ([]models.AssignmentSubmission, error) {
	var list []models.AssignmentSubmission
	err := r.db.Preload("Student").Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").Find(&list).Error
	return list, err
}

func (r *AssignmentRepository) AddComment(c *models.Comment) error {
	return r.db.Create(c).Error
}

func (r *AssignmentRepository) ListComments(submissionID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("Author").Where("submission_id = ?", submissionID).
		Order("created_at ASC").Find(&comments).Error
	return comments, err
}
