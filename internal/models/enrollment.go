package models

import (
	"math"
	"strconv"
	"time"

	"maestro/internal/domain"

	"gorm.io/datatypes"
)

// Enrollment is a student's access grant to a course. The (student, course)
// pair is unique at the database level; duplicate-webhook races must not be
// able to create a second row.
type Enrollment struct {
	ID               uint                                  `gorm:"primaryKey" json:"id"`
	StudentID        uint                                  `gorm:"not null;uniqueIndex:uniq_student_course" json:"student_id"`
	CourseID         uint                                  `gorm:"not null;uniqueIndex:uniq_student_course" json:"course_id"`
	Status           string                                `gorm:"size:20;not null;index" json:"status"`
	StartedAt        time.Time                             `json:"started_at"`
	CompletedAt      *time.Time                            `json:"completed_at,omitempty"`
	LastAccessedAt   *time.Time                            `json:"last_accessed_at,omitempty"`
	ProgressPct      float64                               `gorm:"type:decimal(5,2);default:0" json:"progress_pct"`
	LessonsCompleted int                                   `gorm:"default:0" json:"lessons_completed"`
	TotalLessons     int                                   `gorm:"default:0" json:"total_lessons"` // snapshot taken at enrollment time
	CompletedLessons datatypes.JSONSlice[uint]             `json:"completed_lessons"`
	QuizScores       datatypes.JSONType[map[uint]float64]  `json:"quiz_scores"`
	AssignmentScores datatypes.JSONType[map[uint]float64]  `json:"assignment_scores"`
	Notes            string                                `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time                             `json:"created_at"`
	UpdatedAt        time.Time                             `json:"updated_at"`

	Student *User   `gorm:"foreignKey:StudentID" json:"-"`
	Course  *Course `gorm:"foreignKey:CourseID" json:"-"`
}

// NewEnrollment creates an active enrollment at 0% progress. totalLessons
// is snapshotted here and not recomputed when the course changes later.
func NewEnrollment(studentID, courseID uint, totalLessons int) *Enrollment {
	now := time.Now()
	return &Enrollment{
		StudentID:        studentID,
		CourseID:         courseID,
		Status:           domain.EnrollmentActive,
		StartedAt:        now,
		TotalLessons:     totalLessons,
		CompletedLessons: datatypes.JSONSlice[uint]{},
		QuizScores:       datatypes.NewJSONType(map[uint]float64{}),
		AssignmentScores: datatypes.NewJSONType(map[uint]float64{}),
	}
}

func (e *Enrollment) IsActive() bool    { return e.Status == domain.EnrollmentActive }
func (e *Enrollment) IsCompleted() bool { return e.Status == domain.EnrollmentCompleted }
func (e *Enrollment) IsCancelled() bool { return e.Status == domain.EnrollmentCancelled }
func (e *Enrollment) IsPaused() bool    { return e.Status == domain.EnrollmentPaused }

func (e *Enrollment) CanAccessCourse() bool { return e.IsActive() || e.IsCompleted() }

// SetStatus stamps CompletedAt the first time the enrollment reaches
// completed.
func (e *Enrollment) SetStatus(status string) {
	e.Status = status
	if status == domain.EnrollmentCompleted && e.CompletedAt == nil {
		now := time.Now()
		e.CompletedAt = &now
	}
}

func (e *Enrollment) IsLessonCompleted(lessonID uint) bool {
	for _, id := range e.CompletedLessons {
		if id == lessonID {
			return true
		}
	}
	return false
}

// MarkLessonComplete adds the lesson to the completed set and recomputes
// progress. Re-marking is a no-op; the returned bool says whether anything
// changed.
func (e *Enrollment) MarkLessonComplete(lessonID uint) bool {
	if e.IsLessonCompleted(lessonID) {
		return false
	}
	e.CompletedLessons = append(e.CompletedLessons, lessonID)
	e.LessonsCompleted = len(e.CompletedLessons)
	e.updateProgress()
	return true
}

func (e *Enrollment) UnmarkLessonComplete(lessonID uint) bool {
	for i, id := range e.CompletedLessons {
		if id == lessonID {
			e.CompletedLessons = append(e.CompletedLessons[:i], e.CompletedLessons[i+1:]...)
			e.LessonsCompleted = len(e.CompletedLessons)
			e.updateProgress()
			return true
		}
	}
	return false
}

// updateProgress recomputes the percentage and auto-completes an active
// enrollment once every lesson is done. A course snapshotted with zero
// lessons stays at 0.00 and never auto-completes.
func (e *Enrollment) updateProgress() {
	if e.TotalLessons <= 0 {
		e.ProgressPct = 0
		return
	}
	e.ProgressPct = round2(float64(e.LessonsCompleted) / float64(e.TotalLessons) * 100)
	if e.LessonsCompleted >= e.TotalLessons && e.Status == domain.EnrollmentActive {
		e.SetStatus(domain.EnrollmentCompleted)
	}
}

func (e *Enrollment) RecordQuizScore(quizID uint, score float64) {
	m := e.QuizScores.Data()
	if m == nil {
		m = map[uint]float64{}
	}
	m[quizID] = score
	e.QuizScores = datatypes.NewJSONType(m)
}

func (e *Enrollment) RecordAssignmentScore(assignmentID uint, score float64) {
	m := e.AssignmentScores.Data()
	if m == nil {
		m = map[uint]float64{}
	}
	m[assignmentID] = score
	e.AssignmentScores = datatypes.NewJSONType(m)
}

func (e *Enrollment) AverageQuizScore() float64 {
	return mean(e.QuizScores.Data())
}

func (e *Enrollment) AverageAssignmentScore() float64 {
	return mean(e.AssignmentScores.Data())
}

// OverallScore averages the quiz and assignment means when both exist,
// falls back to whichever is present, and is 0 when neither is.
func (e *Enrollment) OverallScore() float64 {
	q := e.AverageQuizScore()
	a := e.AverageAssignmentScore()
	switch {
	case q > 0 && a > 0:
		return (q + a) / 2
	case q > 0:
		return q
	case a > 0:
		return a
	default:
		return 0
	}
}

func (e *Enrollment) Touch() {
	now := time.Now()
	e.LastAccessedAt = &now
}

func (e *Enrollment) FormattedProgress() string {
	return strconv.FormatFloat(e.ProgressPct, 'f', 1, 64) + "%"
}

func mean(m map[uint]float64) float64 {
	if len(m) == 0 {
		return 0
	}
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum / float64(len(m))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
