package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuizQuestion is stored inline on the quiz as JSON.
type QuizQuestion struct {
	Type    string   `json:"type"` // multiple_choice | true_false | short_answer
	Prompt  string   `json:"prompt"`
	Options []string `json:"options,omitempty"`
	Answer  int      `json:"answer"` // index into Options for choice questions
	Points  int      `json:"points"`
}

type Quiz struct {
	ID                 uint                                 `gorm:"primaryKey" json:"id"`
	LessonID           uint                                 `gorm:"not null;index" json:"lesson_id"`
	Questions          datatypes.JSONSlice[QuizQuestion]    `json:"questions"`
	PassMark           int                                  `gorm:"not null" json:"pass_mark"` // absolute points, not a percentage
	Instructions       string                               `gorm:"type:text" json:"instructions"`
	TimeLimitMinutes   int                                  `gorm:"default:0" json:"time_limit_minutes"` // 0 = no limit
	AllowRetakes       bool                                 `gorm:"default:true" json:"allow_retakes"`
	MaxAttempts        int                                  `gorm:"default:3" json:"max_attempts"`
	ShuffleQuestions   bool                                 `gorm:"default:false" json:"shuffle_questions"`
	ShowCorrectAnswers bool                                 `gorm:"default:false" json:"show_correct_answers"`
	CreatedAt          time.Time                            `json:"created_at"`

	Lesson *Lesson `gorm:"foreignKey:LessonID" json:"-"`
}

func (q *Quiz) QuestionCount() int { return len(q.Questions) }

func (q *Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		if question.Points > 0 {
			total += question.Points
		} else {
			total++
		}
	}
	return total
}

func (q *Quiz) PassMarkPercentage() float64 {
	total := q.TotalPoints()
	if total == 0 {
		return 0
	}
	return float64(q.PassMark) / float64(total) * 100
}

func (q *Quiz) HasTimeLimit() bool { return q.TimeLimitMinutes > 0 }

// CanAttempt reports whether a student with the given prior attempt count
// may start another attempt. No retakes means exactly one attempt ever.
func (q *Quiz) CanAttempt(priorAttempts int) bool {
	if !q.AllowRetakes {
		return priorAttempts == 0
	}
	return priorAttempts < q.MaxAttempts
}

type QuizAttempt struct {
	ID               uint               `gorm:"primaryKey" json:"id"`
	QuizID           uint               `gorm:"not null;index" json:"quiz_id"`
	StudentID        uint               `gorm:"not null;index" json:"student_id"`
	Score            *int               `json:"score,omitempty"`
	Passed           *bool              `json:"passed,omitempty"`
	Responses        datatypes.JSONMap  `json:"responses"`
	StartedAt        time.Time          `json:"started_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty"`
	SubmittedAt      *time.Time         `json:"submitted_at,omitempty"`
	TimeSpentSeconds *int               `json:"time_spent_seconds,omitempty"`
	Notes            string             `gorm:"type:text" json:"notes,omitempty"`

	Quiz    *Quiz `gorm:"foreignKey:QuizID" json:"-"`
	Student *User `gorm:"foreignKey:StudentID" json:"-"`
}

// Complete scores the attempt against the quiz. Pass is score >= pass mark
// in absolute points.
func (a *QuizAttempt) Complete(quiz *Quiz, score int, now time.Time) {
	a.Score = &score
	passed := score >= quiz.PassMark
	a.Passed = &passed
	a.CompletedAt = &now
	a.SubmittedAt = &now
	spent := int(now.Sub(a.StartedAt).Seconds())
	if spent < 0 {
		spent = 0
	}
	a.TimeSpentSeconds = &spent
}

func (a *QuizAttempt) IsCompleted() bool { return a.CompletedAt != nil }

func (a *QuizAttempt) MaxScore() int {
	if a.Quiz == nil {
		return 0
	}
	return a.Quiz.TotalPoints()
}

func (a *QuizAttempt) ScorePercentage() float64 {
	max := a.MaxScore()
	if a.Score == nil || max == 0 {
		return 0
	}
	return float64(*a.Score) / float64(max) * 100
}

func (a *QuizAttempt) GradeLetter() string {
	return GradeLetter(a.ScorePercentage())
}

// GradeLetter maps a percentage to a letter grade. A zero percentage means
// ungraded and yields no letter.
func GradeLetter(pct float64) string {
	switch {
	case pct >= 90:
		return "A"
	case pct >= 80:
		return "B"
	case pct >= 70:
		return "C"
	case pct >= 60:
		return "D"
	case pct > 0:
		return "F"
	default:
		return ""
	}
}
