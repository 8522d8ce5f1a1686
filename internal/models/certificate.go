package models

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"gorm.io/datatypes"
)

const (
	serialCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	serialLength  = 8

	// Certificates stay verifiable for five years from issue. Expiry is
	// derived at read time and independent of revocation.
	certificateValidity = 5 * 365 * 24 * time.Hour
)

// Certificate is issued once per (student, course) after completion.
// Immutable after issue except for revocation, which is one-way.
type Certificate struct {
	ID               uint              `gorm:"primaryKey" json:"id"`
	UserID           uint              `gorm:"not null;uniqueIndex:uniq_cert_user_course" json:"user_id"`
	CourseID         uint              `gorm:"not null;uniqueIndex:uniq_cert_user_course" json:"course_id"`
	IssuedAt         time.Time         `json:"issued_at"`
	CertificateURL   string            `gorm:"size:500" json:"certificate_url"`
	Serial           string            `gorm:"size:100;uniqueIndex" json:"serial"`
	FinalScore       float64           `gorm:"type:decimal(5,2)" json:"final_score"`
	Grade            string            `gorm:"size:20" json:"grade"`
	Notes            string            `gorm:"type:text" json:"notes,omitempty"`
	Metadata         datatypes.JSONMap `json:"metadata"`
	IsValid          bool              `gorm:"default:true" json:"is_valid"`
	RevokedAt        *time.Time        `json:"revoked_at,omitempty"`
	RevocationReason string            `gorm:"type:text" json:"revocation_reason,omitempty"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

func NewCertificate(userID, courseID uint, finalScore float64) *Certificate {
	return &Certificate{
		UserID:     userID,
		CourseID:   courseID,
		IssuedAt:   time.Now(),
		Serial:     generateSerial(),
		FinalScore: finalScore,
		Grade:      GradeLetter(finalScore),
		Metadata:   datatypes.JSONMap{},
		IsValid:    true,
	}
}

func (c *Certificate) IsRevoked() bool { return c.RevokedAt != nil }

// Revoke invalidates the certificate and records who did it. Revocation is
// one-way; a second call is a no-op and keeps the original timestamp and
// reason.
func (c *Certificate) Revoke(reason string, by *User) {
	if c.IsRevoked() {
		return
	}
	now := time.Now()
	c.IsValid = false
	c.RevokedAt = &now
	c.RevocationReason = reason
	if c.Metadata == nil {
		c.Metadata = datatypes.JSONMap{}
	}
	c.Metadata["revoked_by"] = by.ID
	c.Metadata["revoked_by_name"] = by.FullName
}

func (c *Certificate) Status() string {
	switch {
	case c.IsRevoked():
		return "revoked"
	case !c.IsValid:
		return "invalid"
	default:
		return "valid"
	}
}

// FullSerial is the public verification string: course code, issue year,
// zero-padded student id, and the random serial.
func (c *Certificate) FullSerial() string {
	code := "GEN"
	if c.Course != nil {
		code = c.Course.SerialCode()
	}
	return fmt.Sprintf("%s-%d-%04d-%s", code, c.IssuedAt.Year(), c.UserID, c.Serial)
}

func (c *Certificate) VerificationPath() string {
	return "/verify/certificate/" + c.FullSerial()
}

func (c *Certificate) ExpiryDate() time.Time {
	return c.IssuedAt.Add(certificateValidity)
}

// IsExpired is derived only; it never flips IsValid or Status.
func (c *Certificate) IsExpired(now time.Time) bool {
	return now.After(c.ExpiryDate())
}

func (c *Certificate) CertificateNumber() string {
	return fmt.Sprintf("CERT-%06d", c.ID)
}

func generateSerial() string {
	out := make([]byte, serialLength)
	max := big.NewInt(int64(len(serialCharset)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			panic(err)
		}
		out[i] = serialCharset[n.Int64()]
	}
	return string(out)
}
