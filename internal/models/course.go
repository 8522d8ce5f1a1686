package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	TeacherID   uint           `gorm:"not null;index" json:"teacher_id"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Code        string         `gorm:"size:10;uniqueIndex" json:"code"` // serial prefix on certificates
	Description string         `gorm:"type:text" json:"description"`
	Level       string         `gorm:"size:30" json:"level"` // beginner | intermediate | advanced
	Instrument  string         `gorm:"size:50" json:"instrument"`
	PriceCents  int64          `gorm:"not null" json:"price_cents"`
	Currency    string         `gorm:"size:3;default:'usd'" json:"currency"`
	Published   bool           `gorm:"default:false;index" json:"published"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Teacher *User    `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Lessons []Lesson `gorm:"foreignKey:CourseID" json:"lessons,omitempty"`
}

func (c *Course) Price() float64 { return float64(c.PriceCents) / 100 }

// SerialCode is the certificate serial prefix: the course code, or the
// first three letters of the title when no code is set.
func (c *Course) SerialCode() string {
	if c.Code != "" {
		return strings.ToUpper(c.Code)
	}
	t := strings.ToUpper(c.Title)
	if len(t) >= 3 {
		return t[:3]
	}
	if t == "" {
		return "GEN"
	}
	return t
}

type Lesson struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	CourseID        uint           `gorm:"not null;index" json:"course_id"`
	Position        int            `gorm:"not null;default:0" json:"position"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	ContentHTML     string         `gorm:"type:text" json:"content_html"`
	VideoURL        string         `gorm:"size:512" json:"video_url"`
	DurationMinutes int            `gorm:"default:0" json:"duration_minutes"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
