package service

import (
	"errors"
	"testing"
	"time"

	"maestro/internal/models"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func newAssessmentService(r *testRepos) *AssessmentService {
	return NewAssessmentService(r.quizzes, r.assignments, r.enrollments, r.courses, r.users, zap.NewNop())
}

func (r *testRepos) seedEnrollment(t *testing.T, studentID, courseID uint, totalLessons int) *models.Enrollment {
	t.Helper()
	e := models.NewEnrollment(studentID, courseID, totalLessons)
	if err := r.enrollments.Create(e); err != nil {
		t.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func (r *testRepos) seedQuiz(t *testing.T, lessonID uint) *models.Quiz {
	t.Helper()
	q := &models.Quiz{
		LessonID: lessonID,
		Questions: datatypes.JSONSlice[models.QuizQuestion]{
			{Prompt: "q1", Options: []string{"a", "b"}, Answer: 0, Points: 50},
			{Prompt: "q2", Options: []string{"a", "b"}, Answer: 1, Points: 50},
		},
		PassMark:     70,
		AllowRetakes: true,
		MaxAttempts:  2,
	}
	if err := r.quizzes.Create(q); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return q
}

func TestQuizAttemptScoringAndRetakes(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 0, 2)
	r.seedEnrollment(t, student.ID, course.ID, 2)

	loaded, _ := r.courses.GetByID(course.ID)
	quiz := r.seedQuiz(t, loaded.Lessons[0].ID)
	svc := newAssessmentService(r)

	// First attempt: one of two answers right, under the pass mark.
	attempt, err := svc.StartQuizAttempt(student.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartQuizAttempt: %v", err)
	}
	attempt, err = svc.SubmitQuizAttempt(student.ID, attempt.ID, map[int]int{0: 0, 1: 0})
	if err != nil {
		t.Fatalf("SubmitQuizAttempt: %v", err)
	}
	if attempt.Score == nil || *attempt.Score != 50 {
		t.Fatalf("score = %v, want 50", attempt.Score)
	}
	if attempt.Passed == nil || *attempt.Passed {
		t.Fatalf("50/100 against pass mark 70 should fail")
	}

	// Second attempt: all right, passes at the boundary and above.
	retry, err := svc.StartQuizAttempt(student.ID, quiz.ID)
	if err != nil {
		t.Fatalf("second StartQuizAttempt: %v", err)
	}
	retry, err = svc.SubmitQuizAttempt(student.ID, retry.ID, map[int]int{0: 0, 1: 1})
	if err != nil {
		t.Fatalf("second SubmitQuizAttempt: %v", err)
	}
	if retry.Passed == nil || !*retry.Passed {
		t.Fatalf("full score should pass")
	}

	// Enrollment keeps the best percentage.
	enrollment, _ := r.enrollments.GetByStudentCourse(student.ID, course.ID)
	if got := enrollment.QuizScores.Data()[quiz.ID]; got != 100 {
		t.Fatalf("recorded quiz score = %v, want 100", got)
	}

	// MaxAttempts is 2; a third is refused.
	if _, err := svc.StartQuizAttempt(student.ID, quiz.ID); !errors.Is(err, ErrRetakeExhausted) {
		t.Fatalf("third attempt = %v, want ErrRetakeExhausted", err)
	}
}

func TestQuizAttemptDoubleSubmit(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 0, 1)
	r.seedEnrollment(t, student.ID, course.ID, 1)
	loaded, _ := r.courses.GetByID(course.ID)
	quiz := r.seedQuiz(t, loaded.Lessons[0].ID)
	svc := newAssessmentService(r)

	attempt, err := svc.StartQuizAttempt(student.ID, quiz.ID)
	if err != nil {
		t.Fatalf("StartQuizAttempt: %v", err)
	}
	if _, err := svc.SubmitQuizAttempt(student.ID, attempt.ID, map[int]int{0: 0}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := svc.SubmitQuizAttempt(student.ID, attempt.ID, map[int]int{0: 0, 1: 1}); !errors.Is(err, ErrAttemptClosed) {
		t.Fatalf("resubmit = %v, want ErrAttemptClosed", err)
	}
	// Someone else cannot submit my attempt.
	other := r.seedStudent(t, "other@example.com")
	if _, err := svc.SubmitQuizAttempt(other.ID, attempt.ID, nil); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("foreign submit = %v, want ErrNotOwner", err)
	}
}

func TestQuizRequiresEnrollment(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 0, 1)
	loaded, _ := r.courses.GetByID(course.ID)
	quiz := r.seedQuiz(t, loaded.Lessons[0].ID)
	svc := newAssessmentService(r)

	if _, err := svc.StartQuizAttempt(student.ID, quiz.ID); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("attempt without enrollment = %v, want ErrNotEnrolled", err)
	}
}

func TestAssignmentSubmitAndGrade(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 0, 1)
	r.seedEnrollment(t, student.ID, course.ID, 1)
	loaded, _ := r.courses.GetByID(course.ID)
	svc := newAssessmentService(r)

	due := time.Now().Add(-2 * time.Hour)
	lessonID := loaded.Lessons[0].ID
	assignment := &models.Assignment{
		LessonID:            &lessonID,
		Title:               "Scales practice recording",
		MaxPoints:           100,
		DueAt:               &due,
		AllowLateSubmission: true,
		LatePenalty:         10,
	}
	if err := svc.CreateAssignment(assignment); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}

	submission, err := svc.SubmitAssignment(student.ID, assignment.ID, []string{"uploads/scales.mp3"}, "first take")
	if err != nil {
		t.Fatalf("SubmitAssignment: %v", err)
	}
	if !submission.IsLate || submission.LatePenaltyApplied != 10 {
		t.Fatalf("lateness not stamped: %+v", submission)
	}
	if _, err := svc.SubmitAssignment(student.ID, assignment.ID, nil, "again"); !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("second submit = %v, want ErrAlreadySubmitted", err)
	}

	// Students cannot grade.
	if _, err := svc.GradeSubmission(student.ID, submission.ID, 80, ""); !errors.Is(err, ErrNotGrader) {
		t.Fatalf("student grading = %v, want ErrNotGrader", err)
	}
	// Out-of-range points are rejected.
	if _, err := svc.GradeSubmission(teacher.ID, submission.ID, 101, ""); !errors.Is(err, ErrInvalidGrade) {
		t.Fatalf("overshoot grade = %v, want ErrInvalidGrade", err)
	}

	graded, err := svc.GradeSubmission(teacher.ID, submission.ID, 80, "solid work")
	if err != nil {
		t.Fatalf("GradeSubmission: %v", err)
	}
	if fg := graded.FinalGrade(); fg == nil || *fg != 72 {
		t.Fatalf("final grade = %v, want 72", fg)
	}

	enrollment, _ := r.enrollments.GetByStudentCourse(student.ID, course.ID)
	if got := enrollment.AssignmentScores.Data()[assignment.ID]; got != 72 {
		t.Fatalf("recorded assignment score = %v, want 72", got)
	}
}

func TestAssignmentLateRefusedWhenNotAllowed(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 0, 1)
	r.seedEnrollment(t, student.ID, course.ID, 1)
	loaded, _ := r.courses.GetByID(course.ID)
	svc := newAssessmentService(r)

	due := time.Now().Add(-time.Hour)
	lessonID := loaded.Lessons[0].ID
	assignment := &models.Assignment{LessonID: &lessonID, Title: "Etude", MaxPoints: 100, DueAt: &due}
	if err := svc.CreateAssignment(assignment); err != nil {
		t.Fatalf("CreateAssignment: %v", err)
	}
	if _, err := svc.SubmitAssignment(student.ID, assignment.ID, nil, ""); !errors.Is(err, ErrLateNotAllowed) {
		t.Fatalf("late submit = %v, want ErrLateNotAllowed", err)
	}
}
