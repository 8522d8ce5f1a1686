package models

import (
	"testing"

	"maestro/internal/domain"
)

func TestEnrollmentProgress(t *testing.T) {
	e := NewEnrollment(1, 2, 3)
	if !e.IsActive() || e.ProgressPct != 0 {
		t.Fatalf("new enrollment: status=%q progress=%v", e.Status, e.ProgressPct)
	}

	if !e.MarkLessonComplete(10) {
		t.Fatalf("first completion should change state")
	}
	if e.ProgressPct != 33.33 {
		t.Fatalf("progress after 1/3 = %v, want 33.33", e.ProgressPct)
	}

	// Re-marking the same lesson changes nothing.
	if e.MarkLessonComplete(10) {
		t.Fatalf("duplicate completion should be a no-op")
	}
	if e.LessonsCompleted != 1 || e.ProgressPct != 33.33 {
		t.Fatalf("duplicate completion mutated state: %d lessons, %v%%", e.LessonsCompleted, e.ProgressPct)
	}

	e.MarkLessonComplete(11)
	if e.ProgressPct != 66.67 {
		t.Fatalf("progress after 2/3 = %v, want 66.67", e.ProgressPct)
	}

	e.MarkLessonComplete(12)
	if e.ProgressPct != 100 {
		t.Fatalf("progress after 3/3 = %v", e.ProgressPct)
	}
	if !e.IsCompleted() {
		t.Fatalf("finishing every lesson should complete the enrollment, got %q", e.Status)
	}
	if e.CompletedAt == nil {
		t.Fatalf("CompletedAt not stamped")
	}

	first := *e.CompletedAt
	e.SetStatus(domain.EnrollmentCompleted)
	if !e.CompletedAt.Equal(first) {
		t.Fatalf("CompletedAt moved on repeat SetStatus")
	}
}

func TestEnrollmentUnmarkLesson(t *testing.T) {
	e := NewEnrollment(1, 2, 2)
	e.MarkLessonComplete(10)
	e.MarkLessonComplete(11)
	if !e.IsCompleted() {
		t.Fatalf("expected completed, got %q", e.Status)
	}

	if !e.UnmarkLessonComplete(11) {
		t.Fatalf("unmark should change state")
	}
	if e.ProgressPct != 50 || e.LessonsCompleted != 1 {
		t.Fatalf("after unmark: %v%% %d lessons", e.ProgressPct, e.LessonsCompleted)
	}
	if e.UnmarkLessonComplete(99) {
		t.Fatalf("unmarking an unknown lesson should be a no-op")
	}
}

func TestEnrollmentZeroLessonsNeverCompletes(t *testing.T) {
	e := NewEnrollment(1, 2, 0)
	e.MarkLessonComplete(10)
	if e.ProgressPct != 0 {
		t.Fatalf("zero-lesson snapshot progress = %v, want 0", e.ProgressPct)
	}
	if e.IsCompleted() {
		t.Fatalf("zero-lesson enrollment must not auto-complete")
	}
}

func TestEnrollmentOverallScore(t *testing.T) {
	e := NewEnrollment(1, 2, 5)
	if e.OverallScore() != 0 {
		t.Fatalf("empty score maps: %v", e.OverallScore())
	}

	e.RecordQuizScore(1, 80)
	e.RecordQuizScore(2, 90)
	if got := e.OverallScore(); got != 85 {
		t.Fatalf("quiz-only overall = %v, want 85", got)
	}

	e.RecordAssignmentScore(1, 70)
	// (85 + 70) / 2
	if got := e.OverallScore(); got != 77.5 {
		t.Fatalf("combined overall = %v, want 77.5", got)
	}

	// Re-recording a quiz replaces its entry rather than appending.
	e.RecordQuizScore(1, 100)
	if got := e.AverageQuizScore(); got != 95 {
		t.Fatalf("quiz average after overwrite = %v, want 95", got)
	}
}
