package service

import (
	"errors"
	"strings"
	"time"

	"maestro/internal/models"
	"maestro/internal/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrCourseNotCompleted = errors.New("course not completed")
	ErrCertificateExists  = errors.New("certificate already issued for course")
	ErrCertificateMissing = errors.New("certificate not found")
	ErrNotAuthorized      = errors.New("not authorized")
)

// VerificationResult is the public view returned for a serial lookup. It
// never exposes more than the holder's name and course title.
type VerificationResult struct {
	Status     string  `json:"status"` // valid | revoked | invalid | expired
	HolderName string  `json:"holder_name,omitempty"`
	Course     string  `json:"course,omitempty"`
	IssuedAt   string  `json:"issued_at,omitempty"`
	Grade      string  `json:"grade,omitempty"`
	FinalScore float64 `json:"final_score,omitempty"`
}

type CertificateService struct {
	certificates *repository.CertificateRepository
	enrollments  *repository.EnrollmentRepository
	courses      *repository.CourseRepository
	users        *repository.UserRepository
	log          *zap.Logger
}

func NewCertificateService(
	certificates *repository.CertificateRepository,
	enrollments *repository.EnrollmentRepository,
	courses *repository.CourseRepository,
	users *repository.UserRepository,
	log *zap.Logger,
) *CertificateService {
	return &CertificateService{
		certificates: certificates,
		enrollments:  enrollments,
		courses:      courses,
		users:        users,
		log:          log,
	}
}

// Issue creates the one certificate a student can hold for a course. The
// final score is the enrollment's overall score at issue time.
func (s *CertificateService) Issue(userID, courseID uint) (*models.Certificate, error) {
	enrollment, err := s.enrollments.GetByStudentCourse(userID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEnrolled
	}
	if err != nil {
		return nil, err
	}
	if !enrollment.IsCompleted() {
		return nil, ErrCourseNotCompleted
	}
	if _, err := s.certificates.GetByUserCourse(userID, courseID); err == nil {
		return nil, ErrCertificateExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cert := models.NewCertificate(userID, courseID, enrollment.OverallScore())
	if err := s.certificates.Create(cert); err != nil {
		return nil, err
	}
	cert.Course, _ = s.courses.GetByID(courseID)
	s.log.Info("certificate issued",
		zap.Uint("user_id", userID),
		zap.Uint("course_id", courseID),
		zap.String("serial", cert.FullSerial()))
	return cert, nil
}

func (s *CertificateService) ListForUser(userID uint) ([]models.Certificate, error) {
	return s.certificates.ListByUser(userID)
}

// Verify resolves a full serial string. Tampered or unknown serials come
// back invalid rather than erroring.
func (s *CertificateService) Verify(fullSerial string) (*VerificationResult, error) {
	serial := extractSerial(fullSerial)
	if serial == "" {
		return &VerificationResult{Status: "invalid"}, nil
	}
	cert, err := s.certificates.GetBySerial(serial)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &VerificationResult{Status: "invalid"}, nil
	}
	if err != nil {
		return nil, err
	}
	// The reconstructed serial must match the presented one; a serial
	// pasted onto the wrong course code or user id fails.
	if !strings.EqualFold(cert.FullSerial(), fullSerial) {
		return &VerificationResult{Status: "invalid"}, nil
	}
	result := &VerificationResult{
		Status:     cert.Status(),
		IssuedAt:   cert.IssuedAt.Format("2006-01-02"),
		Grade:      cert.Grade,
		FinalScore: cert.FinalScore,
	}
	if cert.IsExpired(time.Now()) && result.Status == "valid" {
		result.Status = "expired"
	}
	if cert.User != nil {
		result.HolderName = cert.User.FullName
	}
	if cert.Course != nil {
		result.Course = cert.Course.Title
	}
	return result, nil
}

// Revoke invalidates a certificate. Only an admin or the course's teacher
// may revoke; a second revocation is a no-op.
func (s *CertificateService) Revoke(actorID, certificateID uint, reason string) (*models.Certificate, error) {
	actor, err := s.users.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	cert, err := s.certificates.GetByID(certificateID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCertificateMissing
	}
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		course, err := s.courses.GetByID(cert.CourseID)
		if err != nil {
			return nil, err
		}
		if course.TeacherID != actorID {
			return nil, ErrNotAuthorized
		}
	}
	cert.Revoke(reason, actor)
	if err := s.certificates.Update(cert); err != nil {
		return nil, err
	}
	s.log.Info("certificate revoked",
		zap.Uint("certificate_id", certificateID),
		zap.Uint("actor_id", actorID),
		zap.String("reason", reason))
	return cert, nil
}

// extractSerial pulls the random serial segment off a full serial string.
func extractSerial(fullSerial string) string {
	parts := strings.Split(strings.TrimSpace(fullSerial), "-")
	if len(parts) < 4 {
		return ""
	}
	return strings.ToUpper(parts[len(parts)-1])
}
