package models

import (
	"time"

	"maestro/internal/domain"

	"gorm.io/gorm"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FullName     string         `gorm:"size:255;not null" json:"full_name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	IsTeacher    bool           `gorm:"default:false" json:"is_teacher"`
	IsAdmin      bool           `gorm:"default:false" json:"is_admin"`
	GoogleID     *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups (avoids duplicate '' on unique index)
	AvatarURL    string         `gorm:"size:512" json:"avatar_url"`
	Timezone     string         `gorm:"size:64;default:'UTC'" json:"timezone"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Role derives the effective role from the stored flags. Admin wins over
// teacher; everyone else is a student.
func (u *User) Role() string {
	switch {
	case u.IsAdmin:
		return domain.RoleAdmin
	case u.IsTeacher:
		return domain.RoleTeacher
	default:
		return domain.RoleStudent
	}
}

// Roles returns the full role set. Every account carries STUDENT.
func (u *User) Roles() []string {
	roles := []string{domain.RoleStudent}
	if u.IsTeacher {
		roles = append(roles, domain.RoleTeacher)
	}
	if u.IsAdmin {
		roles = append(roles, domain.RoleAdmin)
	}
	return roles
}

func (u *User) CanGrade() bool { return u.IsTeacher || u.IsAdmin }
