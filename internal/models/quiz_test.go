package models

import (
	"testing"
	"time"

	"gorm.io/datatypes"
)

func passQuiz() *Quiz {
	return &Quiz{
		Questions: datatypes.JSONSlice[QuizQuestion]{
			{Prompt: "q1", Points: 40, Answer: 0},
			{Prompt: "q2", Points: 30, Answer: 1},
			{Prompt: "q3", Points: 30, Answer: 2},
		},
		PassMark:     70,
		AllowRetakes: true,
		MaxAttempts:  3,
	}
}

func TestQuizTotalPoints(t *testing.T) {
	q := passQuiz()
	if q.TotalPoints() != 100 {
		t.Fatalf("TotalPoints = %d", q.TotalPoints())
	}
	// Unweighted questions count one point each.
	q2 := &Quiz{Questions: datatypes.JSONSlice[QuizQuestion]{{}, {}, {}}}
	if q2.TotalPoints() != 3 {
		t.Fatalf("unweighted TotalPoints = %d, want 3", q2.TotalPoints())
	}
}

func TestQuizPassBoundary(t *testing.T) {
	q := passQuiz()
	now := time.Now()

	a := &QuizAttempt{StartedAt: now.Add(-time.Minute)}
	a.Complete(q, 70, now)
	if a.Passed == nil || !*a.Passed {
		t.Fatalf("score equal to pass mark should pass")
	}
	if a.TimeSpentSeconds == nil || *a.TimeSpentSeconds != 60 {
		t.Fatalf("time spent = %v", a.TimeSpentSeconds)
	}

	b := &QuizAttempt{StartedAt: now}
	b.Complete(q, 69, now)
	if b.Passed == nil || *b.Passed {
		t.Fatalf("one point under pass mark should fail")
	}
}

func TestQuizRetakePolicy(t *testing.T) {
	noRetakes := &Quiz{AllowRetakes: false, MaxAttempts: 3}
	if !noRetakes.CanAttempt(0) {
		t.Fatalf("first attempt must always be allowed")
	}
	if noRetakes.CanAttempt(1) {
		t.Fatalf("retakes disabled means exactly one attempt, max_attempts is ignored")
	}

	limited := &Quiz{AllowRetakes: true, MaxAttempts: 2}
	if !limited.CanAttempt(1) {
		t.Fatalf("second attempt under limit should be allowed")
	}
	if limited.CanAttempt(2) {
		t.Fatalf("attempts at the limit should be refused")
	}
}

func TestGradeLetter(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{95, "A"}, {90, "A"}, {89.9, "B"}, {80, "B"},
		{79, "C"}, {70, "C"}, {69, "D"}, {60, "D"},
		{59, "F"}, {0.1, "F"}, {0, ""},
	}
	for _, c := range cases {
		if got := GradeLetter(c.pct); got != c.want {
			t.Fatalf("GradeLetter(%v) = %q, want %q", c.pct, got, c.want)
		}
	}
}
