package models

import (
	"time"

	"gorm.io/gorm"
)

// Note is free-form teacher commentary about a student, optionally pinned
// to a lesson.
type Note struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	StudentID uint           `gorm:"not null;index" json:"student_id"`
	LessonID  *uint          `gorm:"index" json:"lesson_id,omitempty"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	Private   bool           `gorm:"default:true" json:"private"` // hidden from the student when true
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Author  *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Student *User `gorm:"foreignKey:StudentID" json:"-"`
}
