package service

import (
	"errors"

	"maestro/internal/domain"
	"maestro/internal/models"
	"maestro/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrNotEnrolled       = errors.New("student is not enrolled in course")
	ErrEnrollmentClosed  = errors.New("enrollment does not allow course access")
	ErrLessonNotInCourse = errors.New("lesson does not belong to course")
)

// ProgressService tracks lesson completion per enrollment.
type ProgressService struct {
	enrollments *repository.EnrollmentRepository
	courses     *repository.CourseRepository
	log         *zap.Logger
}

func NewProgressService(enrollments *repository.EnrollmentRepository, courses *repository.CourseRepository, log *zap.Logger) *ProgressService {
	return &ProgressService{enrollments: enrollments, courses: courses, log: log}
}

func (s *ProgressService) Get(studentID, courseID uint) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByStudentCourse(studentID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEnrolled
	}
	return enrollment, err
}

func (s *ProgressService) ListForStudent(studentID uint) ([]models.Enrollment, error) {
	return s.enrollments.ListByStudent(studentID)
}

// MarkLessonComplete records a finished lesson and recomputes progress.
// Completing the last lesson flips the enrollment to completed.
func (s *ProgressService) MarkLessonComplete(studentID, courseID, lessonID uint) (*models.Enrollment, error) {
	enrollment, err := s.access(studentID, courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if enrollment.MarkLessonComplete(lessonID) {
		if err := s.enrollments.Update(enrollment); err != nil {
			return nil, err
		}
		if enrollment.IsCompleted() {
			s.log.Info("course completed",
				zap.Uint("student_id", studentID),
				zap.Uint("course_id", courseID))
		}
	}
	return enrollment, nil
}

func (s *ProgressService) UnmarkLessonComplete(studentID, courseID, lessonID uint) (*models.Enrollment, error) {
	enrollment, err := s.access(studentID, courseID, lessonID)
	if err != nil {
		return nil, err
	}
	if enrollment.UnmarkLessonComplete(lessonID) {
		if err := s.enrollments.Update(enrollment); err != nil {
			return nil, err
		}
	}
	return enrollment, nil
}

// Touch stamps last activity without changing completion state.
func (s *ProgressService) Touch(studentID, courseID uint) error {
	enrollment, err := s.Get(studentID, courseID)
	if err != nil {
		return err
	}
	enrollment.Touch()
	return s.enrollments.Update(enrollment)
}

// SetStatus is the admin path for pausing or cancelling an enrollment.
func (s *ProgressService) SetStatus(studentID, courseID uint, status string) (*models.Enrollment, error) {
	switch status {
	case domain.EnrollmentActive, domain.EnrollmentPaused, domain.EnrollmentCancelled:
	default:
		return nil, errors.New("unknown enrollment status")
	}
	enrollment, err := s.Get(studentID, courseID)
	if err != nil {
		return nil, err
	}
	enrollment.SetStatus(status)
	if err := s.enrollments.Update(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *ProgressService) access(studentID, courseID, lessonID uint) (*models.Enrollment, error) {
	enrollment, err := s.Get(studentID, courseID)
	if err != nil {
		return nil, err
	}
	if !enrollment.CanAccessCourse() {
		return nil, ErrEnrollmentClosed
	}
	lesson, err := s.courses.GetLesson(lessonID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrLessonNotInCourse
	}
	if err != nil {
		return nil, err
	}
	if lesson.CourseID != courseID {
		return nil, ErrLessonNotInCourse
	}
	return enrollment, nil
}
