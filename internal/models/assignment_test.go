package models

import (
	"testing"
	"time"
)

func TestSubmissionLatenessStamping(t *testing.T) {
	due := time.Now().Add(-time.Hour)
	a := &Assignment{ID: 1, MaxPoints: 100, LatePenalty: 10, AllowLateSubmission: true, DueAt: &due}

	s := NewSubmission(a, 5, nil, "", time.Now())
	if !s.IsLate {
		t.Fatalf("submission after due date should be late")
	}
	if s.LatePenaltyApplied != 10 {
		t.Fatalf("penalty not copied: %d", s.LatePenaltyApplied)
	}

	// Raising the penalty later must not reprice this submission.
	a.LatePenalty = 50
	s.Grade(80, "", 9, time.Now())
	if fg := s.FinalGrade(); fg == nil || *fg != 72 {
		t.Fatalf("final grade = %v, want 72 (80 minus 10%%)", fg)
	}
}

func TestSubmissionOnTimeNoPenalty(t *testing.T) {
	due := time.Now().Add(time.Hour)
	a := &Assignment{ID: 1, MaxPoints: 100, LatePenalty: 25, DueAt: &due}
	s := NewSubmission(a, 5, nil, "", time.Now())
	if s.IsLate || s.LatePenaltyApplied != 0 {
		t.Fatalf("on-time submission marked late")
	}
	s.Grade(80, "good", 9, time.Now())
	if fg := s.FinalGrade(); fg == nil || *fg != 80 {
		t.Fatalf("final grade = %v, want 80", fg)
	}
}

func TestFinalGradeFloorsAndClamps(t *testing.T) {
	s := &AssignmentSubmission{IsLate: true, LatePenaltyApplied: 33}
	g := 10
	s.GradePoints = &g
	// 10 - 3.3 = 6.7 floors to 6.
	if fg := s.FinalGrade(); fg == nil || *fg != 6 {
		t.Fatalf("final grade = %v, want 6", fg)
	}

	full := &AssignmentSubmission{IsLate: true, LatePenaltyApplied: 100}
	full.GradePoints = &g
	if fg := full.FinalGrade(); fg == nil || *fg != 0 {
		t.Fatalf("final grade with 100%% penalty = %v, want 0", fg)
	}

	ungraded := &AssignmentSubmission{}
	if ungraded.FinalGrade() != nil {
		t.Fatalf("ungraded submission should have nil final grade")
	}
}

func TestAssignmentTarget(t *testing.T) {
	lessonID := uint(4)
	sessionID := uint(9)

	lesson := &Assignment{LessonID: &lessonID}
	if tgt := lesson.Target(); tgt.Kind != TargetLesson || tgt.ID != 4 {
		t.Fatalf("lesson target = %+v", tgt)
	}
	session := &Assignment{SessionID: &sessionID}
	if tgt := session.Target(); tgt.Kind != TargetSession || tgt.ID != 9 {
		t.Fatalf("session target = %+v", tgt)
	}
	standalone := &Assignment{}
	if tgt := standalone.Target(); tgt.Kind != TargetStandalone || tgt.ID != 0 {
		t.Fatalf("standalone target = %+v", tgt)
	}
}
