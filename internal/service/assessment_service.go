package service

import (
	"errors"
	"fmt"
	"time"

	"maestro/internal/models"
	"maestro/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrRetakeExhausted  = errors.New("no quiz attempts remaining")
	ErrAttemptClosed    = errors.New("quiz attempt already submitted")
	ErrNotOwner         = errors.New("resource belongs to another student")
	ErrNotGrader        = errors.New("user may not grade submissions")
	ErrLateNotAllowed   = errors.New("assignment does not accept late submissions")
	ErrAlreadySubmitted = errors.New("assignment already submitted")
	ErrInvalidGrade     = errors.New("grade outside assignment point range")
)

// AssessmentService covers quizzes and assignments: attempts, server-side
// scoring, submissions and grading.
type AssessmentService struct {
	quizzes     *repository.QuizRepository
	assignments *repository.AssignmentRepository
	enrollments *repository.EnrollmentRepository
	courses     *repository.CourseRepository
	users       *repository.UserRepository
	log         *zap.Logger
}

func NewAssessmentService(
	quizzes *repository.QuizRepository,
	assignments *repository.AssignmentRepository,
	enrollments *repository.EnrollmentRepository,
	courses *repository.CourseRepository,
	users *repository.UserRepository,
	log *zap.Logger,
) *AssessmentService {
	return &AssessmentService{
		quizzes:     quizzes,
		assignments: assignments,
		enrollments: enrollments,
		courses:     courses,
		users:       users,
		log:         log,
	}
}

func (s *AssessmentService) CreateQuiz(quiz *models.Quiz) error {
	if _, err := s.courses.GetLesson(quiz.LessonID); err != nil {
		return err
	}
	return s.quizzes.Create(quiz)
}

func (s *AssessmentService) GetQuiz(id uint) (*models.Quiz, error) {
	return s.quizzes.GetByID(id)
}

// StartQuizAttempt opens an attempt if the retake policy allows one more.
func (s *AssessmentService) StartQuizAttempt(studentID, quizID uint) (*models.QuizAttempt, error) {
	quiz, err := s.quizzes.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if _, err := s.enrollmentForLesson(studentID, quiz.LessonID); err != nil {
		return nil, err
	}
	prior, err := s.quizzes.CountAttempts(quizID, studentID)
	if err != nil {
		return nil, err
	}
	if !quiz.CanAttempt(prior) {
		return nil, ErrRetakeExhausted
	}
	attempt := &models.QuizAttempt{
		QuizID:    quizID,
		StudentID: studentID,
		StartedAt: time.Now(),
	}
	if err := s.quizzes.CreateAttempt(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitQuizAttempt scores the answers server-side; the client never
// reports its own score. answers maps question index to chosen option.
func (s *AssessmentService) SubmitQuizAttempt(studentID, attemptID uint, answers map[int]int) (*models.QuizAttempt, error) {
	attempt, err := s.quizzes.GetAttempt(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, ErrNotOwner
	}
	if attempt.IsCompleted() {
		return nil, ErrAttemptClosed
	}
	quiz := attempt.Quiz
	if quiz == nil {
		quiz, err = s.quizzes.GetByID(attempt.QuizID)
		if err != nil {
			return nil, err
		}
	}

	score := 0
	responses := datatypes.JSONMap{}
	for i, question := range quiz.Questions {
		chosen, answered := answers[i]
		if !answered {
			continue
		}
		responses[fmt.Sprint(i)] = chosen
		if chosen == question.Answer {
			if question.Points > 0 {
				score += question.Points
			} else {
				score++
			}
		}
	}
	attempt.Responses = responses
	attempt.Complete(quiz, score, time.Now())
	if err := s.quizzes.UpdateAttempt(attempt); err != nil {
		return nil, err
	}
	s.recordQuizScore(studentID, quiz, attempt)
	s.log.Info("quiz attempt scored",
		zap.Uint("quiz_id", quiz.ID),
		zap.Uint("student_id", studentID),
		zap.Int("score", score),
		zap.Bool("passed", attempt.Passed != nil && *attempt.Passed))
	return attempt, nil
}

// recordQuizScore keeps the best attempt's percentage on the enrollment.
func (s *AssessmentService) recordQuizScore(studentID uint, quiz *models.Quiz, attempt *models.QuizAttempt) {
	enrollment, err := s.enrollmentForLesson(studentID, quiz.LessonID)
	if err != nil {
		s.log.Warn("quiz score not recorded on enrollment",
			zap.Uint("quiz_id", quiz.ID), zap.Error(err))
		return
	}
	pct := attempt.ScorePercentage()
	if prev, ok := enrollment.QuizScores.Data()[quiz.ID]; ok && prev >= pct {
		return
	}
	enrollment.RecordQuizScore(quiz.ID, pct)
	enrollment.Touch()
	if err := s.enrollments.Update(enrollment); err != nil {
		s.log.Error("updating enrollment scores failed", zap.Error(err))
	}
}

func (s *AssessmentService) ListAttempts(studentID, quizID uint) ([]models.QuizAttempt, error) {
	return s.quizzes.ListAttempts(quizID, studentID)
}

func (s *AssessmentService) CreateAssignment(a *models.Assignment) error {
	if a.LessonID != nil {
		if _, err := s.courses.GetLesson(*a.LessonID); err != nil {
			return err
		}
	}
	return s.assignments.Create(a)
}

func (s *AssessmentService) GetAssignment(id uint) (*models.Assignment, error) {
	return s.assignments.GetByID(id)
}

// SubmitAssignment records a submission, stamping lateness at submit
// time. One submission per student per assignment.
func (s *AssessmentService) SubmitAssignment(studentID, assignmentID uint, files []string, notes string) (*models.AssignmentSubmission, error) {
	assignment, err := s.assignments.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.LessonID != nil {
		if _, err := s.enrollmentForLesson(studentID, *assignment.LessonID); err != nil {
			return nil, err
		}
	}
	now := time.Now()
	if assignment.IsOverdue(now) && !assignment.AllowLateSubmission {
		return nil, ErrLateNotAllowed
	}
	if _, err := s.assignments.GetSubmissionByStudent(assignmentID, studentID); err == nil {
		return nil, ErrAlreadySubmitted
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	submission := models.NewSubmission(assignment, studentID, files, notes, now)
	if err := s.assignments.CreateSubmission(submission); err != nil {
		return nil, err
	}
	if submission.IsLate {
		s.log.Info("late assignment submission",
			zap.Uint("assignment_id", assignmentID),
			zap.Uint("student_id", studentID),
			zap.Int("penalty_pct", submission.LatePenaltyApplied))
	}
	return submission, nil
}

// GradeSubmission records a grade from a teacher or admin and posts the
// penalized percentage to the student's enrollment.
func (s *AssessmentService) GradeSubmission(graderID, submissionID uint, points int, feedbackHTML string) (*models.AssignmentSubmission, error) {
	grader, err := s.users.GetByID(graderID)
	if err != nil {
		return nil, err
	}
	if !grader.CanGrade() {
		return nil, ErrNotGrader
	}
	submission, err := s.assignments.GetSubmission(submissionID)
	if err != nil {
		return nil, err
	}
	assignment := submission.Assignment
	if assignment == nil {
		assignment, err = s.assignments.GetByID(submission.AssignmentID)
		if err != nil {
			return nil, err
		}
		submission.Assignment = assignment
	}
	if points < 0 || points > assignment.MaxPoints {
		return nil, ErrInvalidGrade
	}
	submission.Grade(points, feedbackHTML, graderID, time.Now())
	if err := s.assignments.UpdateSubmission(submission); err != nil {
		return nil, err
	}
	if assignment.LessonID != nil {
		s.recordAssignmentScore(submission, assignment)
	}
	s.log.Info("submission graded",
		zap.Uint("submission_id", submissionID),
		zap.Uint("grader_id", graderID),
		zap.Int("points", points))
	return submission, nil
}

func (s *AssessmentService) recordAssignmentScore(submission *models.AssignmentSubmission, assignment *models.Assignment) {
	enrollment, err := s.enrollmentForLesson(submission.StudentID, *assignment.LessonID)
	if err != nil {
		s.log.Warn("assignment score not recorded on enrollment",
			zap.Uint("assignment_id", assignment.ID), zap.Error(err))
		return
	}
	enrollment.RecordAssignmentScore(assignment.ID, submission.FinalGradePercentage())
	if err := s.enrollments.Update(enrollment); err != nil {
		s.log.Error("updating enrollment scores failed", zap.Error(err))
	}
}

func (s *AssessmentService) ListSubmissions(assignmentID uint) ([]models.AssignmentSubmission, error) {
	return s.assignments.ListSubmissions(assignmentID)
}

func (s *AssessmentService) AddComment(authorID, submissionID uint, body string) (*models.Comment, error) {
	if _, err := s.assignments.GetSubmission(submissionID); err != nil {
		return nil, err
	}
	comment := &models.Comment{SubmissionID: submissionID, AuthorID: authorID, Body: body}
	if err := s.assignments.AddComment(comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// enrollmentForLesson resolves the lesson's course and requires an
// enrollment that still grants access.
func (s *AssessmentService) enrollmentForLesson(studentID, lessonID uint) (*models.Enrollment, error) {
	lesson, err := s.courses.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}
	enrollment, err := s.enrollments.GetByStudentCourse(studentID, lesson.CourseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}
	if !enrollment.CanAccessCourse() {
		return nil, ErrEnrollmentClosed
	}
	return enrollment, nil
}
