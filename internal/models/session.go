package models

import (
	"fmt"
	"time"

	"maestro/internal/domain"

	"gorm.io/gorm"
)

// Session is a scheduled tutoring slot backed by a Google Calendar event.
type Session struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TutorID       uint           `gorm:"not null;index" json:"tutor_id"`
	CourseID      *uint          `gorm:"index" json:"course_id,omitempty"`
	Title         string         `gorm:"size:255;not null" json:"title"`
	StartAt       time.Time      `gorm:"not null" json:"start_at"`
	EndAt         time.Time      `gorm:"not null" json:"end_at"`
	Status        string         `gorm:"size:20;not null;default:'scheduled'" json:"status"`
	Notes         string         `gorm:"type:text" json:"notes,omitempty"`
	JoinURL       *string        `gorm:"size:512" json:"join_url,omitempty"`
	GoogleEventID *string        `gorm:"size:255" json:"-"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Tutor    *User   `gorm:"foreignKey:TutorID" json:"tutor,omitempty"`
	Course   *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Students []User  `gorm:"many2many:session_students" json:"students,omitempty"`
}

func (s *Session) IsScheduled() bool { return s.Status == domain.SessionScheduled }

func (s *Session) DurationMinutes() int {
	return int(s.EndAt.Sub(s.StartAt).Minutes())
}

// EventTitle is the summary pushed to the calendar event.
func (s *Session) EventTitle() string {
	if s.Course != nil {
		return fmt.Sprintf("%s — %s", s.Course.Title, s.Title)
	}
	return s.Title
}

func (s *Session) AttendeeEmails() []string {
	emails := make([]string, 0, len(s.Students))
	for _, st := range s.Students {
		emails = append(emails, st.Email)
	}
	return emails
}
