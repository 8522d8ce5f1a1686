package service

import (
	"errors"
	"testing"

	"maestro/internal/domain"

	"go.uber.org/zap"
)

func TestProgressCompletionFlow(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 5000, 2)
	r.seedEnrollment(t, student.ID, course.ID, 2)

	loaded, _ := r.courses.GetByID(course.ID)
	first, second := loaded.Lessons[0].ID, loaded.Lessons[1].ID

	svc := NewProgressService(r.enrollments, r.courses, zap.NewNop())

	e, err := svc.MarkLessonComplete(student.ID, course.ID, first)
	if err != nil {
		t.Fatalf("mark first: %v", err)
	}
	if e.ProgressPct != 50 {
		t.Fatalf("progress = %v, want 50", e.ProgressPct)
	}

	e, err = svc.MarkLessonComplete(student.ID, course.ID, second)
	if err != nil {
		t.Fatalf("mark second: %v", err)
	}
	if e.Status != domain.EnrollmentCompleted || e.CompletedAt == nil {
		t.Fatalf("finishing every lesson should complete the enrollment, got %q", e.Status)
	}

	// The change survives a reload through the repository.
	stored, err := svc.Get(student.ID, course.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.ProgressPct != 100 {
		t.Fatalf("stored progress = %v", stored.ProgressPct)
	}

	// Unmarking reopens nothing (completion is sticky) but the percentage drops.
	e, err = svc.UnmarkLessonComplete(student.ID, course.ID, second)
	if err != nil {
		t.Fatalf("unmark: %v", err)
	}
	if e.ProgressPct != 50 {
		t.Fatalf("progress after unmark = %v, want 50", e.ProgressPct)
	}
}

func TestProgressAccessGuards(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 5000, 2)
	other := r.seedCourse(t, teacher.ID, 5000, 1)

	loaded, _ := r.courses.GetByID(course.ID)
	lessonID := loaded.Lessons[0].ID

	svc := NewProgressService(r.enrollments, r.courses, zap.NewNop())

	// Not enrolled at all.
	if _, err := svc.MarkLessonComplete(student.ID, course.ID, lessonID); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("unenrolled mark = %v, want ErrNotEnrolled", err)
	}

	r.seedEnrollment(t, student.ID, course.ID, 2)

	// Lesson from a different course.
	otherLoaded, _ := r.courses.GetByID(other.ID)
	if _, err := svc.MarkLessonComplete(student.ID, course.ID, otherLoaded.Lessons[0].ID); !errors.Is(err, ErrLessonNotInCourse) {
		t.Fatalf("foreign lesson = %v, want ErrLessonNotInCourse", err)
	}

	// Cancelled enrollment blocks access.
	if _, err := svc.SetStatus(student.ID, course.ID, domain.EnrollmentCancelled); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if _, err := svc.MarkLessonComplete(student.ID, course.ID, lessonID); !errors.Is(err, ErrEnrollmentClosed) {
		t.Fatalf("cancelled mark = %v, want ErrEnrollmentClosed", err)
	}

	// Bogus status is rejected.
	if _, err := svc.SetStatus(student.ID, course.ID, "frozen"); err == nil {
		t.Fatalf("unknown status should be rejected")
	}
}
