package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(c *models.Course) error {
	return r.db.Create(c).Error
}

func (r *CourseRepository) Update(c *models.Course) error {
	return r.db.Save(c).Error
}

func (r *CourseRepository) GetByID(id uint) (*models.Course, error) {
	var c models.Course
	err := r.db.Preload("Teacher").Preload("Lessons", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) ListPublished() ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Where("published = ?", true).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) ListByTeacher(teacherID uint) ([]models.Course, error) {
	var courses []models.Course
	err := r.db.Where("teacher_id = ?", teacherID).Order("created_at DESC").Find(&courses).Error
	return courses, err
}

// CountLessons is the total-lessons snapshot source for new enrollments.
func (r *CourseRepository) CountLessons(courseID uint) (int, error) {
	var n int64
	err := r.db.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&n).Error
	return int(n), err
}

func (r *CourseRepository) CreateLesson(l *models.Lesson) error {
	return r.db.Create(l).Error
}

func (r *CourseRepository) UpdateLesson(l *models.Lesson) error {
	return r.db.Save(l).Error
}

func (r *CourseRepository) GetLesson(id uint) (*models.Lesson, error) {
	var l models.Lesson
	if err := r.db.First(&l, id).Error; err != nil {
		return nil, err
	}
	return &l, nil
}
