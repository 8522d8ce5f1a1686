package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create relies on the (student_id, course_id) unique index to reject
// duplicate enrollments under concurrent webhook retries.
func (r *EnrollmentRepository) Create(e *models.Enrollment) error {
	return r.db.Create(e).Error
}

func (r *EnrollmentRepository) Update(e *models.Enrollment) error {
	return r.db.Save(e).Error
}

func (r *EnrollmentRepository) GetByID(id uint) (*models.Enrollment, error) {
	var e models.Enrollment
	if err := r.db.Preload("Course").First(&e, id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) GetByStudentCourse(studentID, courseID uint) (*models.Enrollment, error) {
	var e models.Enrollment
	err := r.db.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EnrollmentRepository) ExistsByStudentCourse(studentID, courseID uint) (bool, error) {
	var n int64
	err := r.db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).Count(&n).Error
	return n > 0, err
}

func (r *EnrollmentRepository) ListByStudent(studentID uint) ([]models.Enrollment, error) {
	var list []models.Enrollment
	err := r.db.Preload("Course").Where("student_id = ?", studentID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *EnrollmentRepository) ListByCourse(courseID uint) ([]models.Enrollment, error) {
	var list []models.Enrollment
	err := r.db.Preload("Student").Where("course_id = ?", courseID).Find(&list).Error
	return list, err
}
