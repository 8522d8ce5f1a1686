package models

import (
	"time"

	"gorm.io/datatypes"
)

// Assignment target kinds. An assignment hangs off a lesson, a tutoring
// session, or stands alone.
const (
	TargetLesson     = "lesson"
	TargetSession    = "session"
	TargetStandalone = "standalone"
)

type AssignmentTarget struct {
	Kind string
	ID   uint
}

type Assignment struct {
	ID                  uint                        `gorm:"primaryKey" json:"id"`
	LessonID            *uint                       `gorm:"index" json:"lesson_id,omitempty"`
	SessionID           *uint                       `gorm:"index" json:"session_id,omitempty"`
	Title               string                      `gorm:"size:255;not null" json:"title"`
	InstructionsHTML    string                      `gorm:"type:text" json:"instructions_html"`
	DueAt               *time.Time                  `json:"due_at,omitempty"`
	MaxPoints           int                         `gorm:"not null;default:100" json:"max_points"`
	Rubric              string                      `gorm:"type:text" json:"rubric,omitempty"`
	Attachments         datatypes.JSONSlice[string] `json:"attachments"`
	IsRequired          bool                        `gorm:"default:true" json:"is_required"`
	AllowLateSubmission bool                        `gorm:"default:false" json:"allow_late_submission"`
	LatePenalty         int                         `gorm:"default:0" json:"late_penalty"` // percent deducted from late submissions
	CreatedAt           time.Time                   `json:"created_at"`

	Lesson  *Lesson  `gorm:"foreignKey:LessonID" json:"-"`
	Session *Session `gorm:"foreignKey:SessionID" json:"-"`
}

// Target resolves which parent the assignment belongs to.
func (a *Assignment) Target() AssignmentTarget {
	switch {
	case a.LessonID != nil:
		return AssignmentTarget{Kind: TargetLesson, ID: *a.LessonID}
	case a.SessionID != nil:
		return AssignmentTarget{Kind: TargetSession, ID: *a.SessionID}
	default:
		return AssignmentTarget{Kind: TargetStandalone}
	}
}

func (a *Assignment) IsOverdue(now time.Time) bool {
	return a.DueAt != nil && now.After(*a.DueAt)
}

type AssignmentSubmission struct {
	ID                 uint                        `gorm:"primaryKey" json:"id"`
	AssignmentID       uint                        `gorm:"not null;uniqueIndex:uniq_assignment_student" json:"assignment_id"`
	StudentID          uint                        `gorm:"not null;uniqueIndex:uniq_assignment_student" json:"student_id"`
	Notes              string                      `gorm:"type:text" json:"notes,omitempty"`
	Files              datatypes.JSONSlice[string] `json:"files"`
	SubmittedAt        time.Time                   `json:"submitted_at"`
	GradedByID         *uint                       `json:"graded_by_id,omitempty"`
	GradePoints        *int                        `json:"grade_points,omitempty"`
	FeedbackHTML       string                      `gorm:"type:text" json:"feedback_html,omitempty"`
	GradedAt           *time.Time                  `json:"graded_at,omitempty"`
	IsLate             bool                        `gorm:"default:false" json:"is_late"`
	LatePenaltyApplied int                         `gorm:"default:0" json:"late_penalty_applied"`

	Assignment *Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	Student    *User       `gorm:"foreignKey:StudentID" json:"-"`
	GradedBy   *User       `gorm:"foreignKey:GradedByID" json:"-"`
	Comments   []Comment   `gorm:"foreignKey:SubmissionID" json:"comments,omitempty"`
}

// NewSubmission stamps lateness against the due date at submission time.
// The penalty percentage is copied from the assignment; later changes to
// the assignment do not reprice an existing submission.
func NewSubmission(assignment *Assignment, studentID uint, files []string, notes string, now time.Time) *AssignmentSubmission {
	s := &AssignmentSubmission{
		AssignmentID: assignment.ID,
		StudentID:    studentID,
		Notes:        notes,
		Files:        datatypes.JSONSlice[string](files),
		SubmittedAt:  now,
	}
	if assignment.IsOverdue(now) {
		s.IsLate = true
		s.LatePenaltyApplied = assignment.LatePenalty
	}
	return s
}

// Grade records points and feedback from a grader.
func (s *AssignmentSubmission) Grade(points int, feedbackHTML string, graderID uint, now time.Time) {
	s.GradePoints = &points
	s.FeedbackHTML = feedbackHTML
	s.GradedByID = &graderID
	s.GradedAt = &now
}

func (s *AssignmentSubmission) IsGraded() bool { return s.GradePoints != nil }

// FinalGrade applies the late penalty: max(0, floor(g - g*p/100)). Nil
// until graded.
func (s *AssignmentSubmission) FinalGrade() *int {
	if s.GradePoints == nil {
		return nil
	}
	grade := *s.GradePoints
	if s.IsLate && s.LatePenaltyApplied > 0 {
		penalty := float64(grade) * float64(s.LatePenaltyApplied) / 100
		grade = int(float64(grade) - penalty)
		if grade < 0 {
			grade = 0
		}
	}
	return &grade
}

// FinalGradePercentage is the penalized grade as a percentage of max
// points, used for the enrollment score map and certificates.
func (s *AssignmentSubmission) FinalGradePercentage() float64 {
	fg := s.FinalGrade()
	if fg == nil || s.Assignment == nil || s.Assignment.MaxPoints == 0 {
		return 0
	}
	return float64(*fg) / float64(s.Assignment.MaxPoints) * 100
}

func (s *AssignmentSubmission) GradeLetter() string {
	return GradeLetter(s.FinalGradePercentage())
}

func (s *AssignmentSubmission) DaysLate() int {
	if s.Assignment == nil || s.Assignment.DueAt == nil || !s.IsLate {
		return 0
	}
	return int(s.SubmittedAt.Sub(*s.Assignment.DueAt).Hours() / 24)
}

type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubmissionID uint      `gorm:"not null;index" json:"submission_id"`
	AuthorID     uint      `gorm:"not null" json:"author_id"`
	Body         string    `gorm:"type:text;not null" json:"body"`
	CreatedAt    time.Time `json:"created_at"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
