package service

import (
	"errors"
	"testing"

	"maestro/internal/domain"

	"go.uber.org/zap"
)

func newCertificateService(r *testRepos) *CertificateService {
	return NewCertificateService(r.certificates, r.enrollments, r.courses, r.users, zap.NewNop())
}

func TestCertificateIssueRequiresCompletion(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 0, 1)
	svc := newCertificateService(r)

	// No enrollment at all.
	if _, err := svc.Issue(student.ID, course.ID); !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("issue without enrollment = %v, want ErrNotEnrolled", err)
	}

	enrollment := r.seedEnrollment(t, student.ID, course.ID, 1)
	if _, err := svc.Issue(student.ID, course.ID); !errors.Is(err, ErrCourseNotCompleted) {
		t.Fatalf("issue while active = %v, want ErrCourseNotCompleted", err)
	}

	enrollment.RecordQuizScore(1, 95)
	enrollment.SetStatus(domain.EnrollmentCompleted)
	if err := r.enrollments.Update(enrollment); err != nil {
		t.Fatalf("complete enrollment: %v", err)
	}

	cert, err := svc.Issue(student.ID, course.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if cert.FinalScore != 95 || cert.Grade != "A" {
		t.Fatalf("certificate score %v grade %q", cert.FinalScore, cert.Grade)
	}

	// One certificate per (student, course).
	if _, err := svc.Issue(student.ID, course.ID); !errors.Is(err, ErrCertificateExists) {
		t.Fatalf("second issue = %v, want ErrCertificateExists", err)
	}
}

func TestCertificateVerify(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 0, 1)
	enrollment := r.seedEnrollment(t, student.ID, course.ID, 1)
	enrollment.SetStatus(domain.EnrollmentCompleted)
	if err := r.enrollments.Update(enrollment); err != nil {
		t.Fatalf("complete enrollment: %v", err)
	}
	svc := newCertificateService(r)

	cert, err := svc.Issue(student.ID, course.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	full := cert.FullSerial()

	result, err := svc.Verify(full)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if result.Status != "valid" {
		t.Fatalf("status = %q, want valid", result.Status)
	}
	if result.HolderName != student.FullName || result.Course != course.Title {
		t.Fatalf("verification payload = %+v", result)
	}

	// A serial pasted onto a different user id fails verification.
	tampered := "PNO-2099-9999-" + cert.Serial
	result, err = svc.Verify(tampered)
	if err != nil {
		t.Fatalf("Verify tampered: %v", err)
	}
	if result.Status != "invalid" {
		t.Fatalf("tampered status = %q, want invalid", result.Status)
	}

	// Unknown serial is invalid, not an error.
	result, err = svc.Verify("XXX-2025-0001-NOPENOPE")
	if err != nil || result.Status != "invalid" {
		t.Fatalf("unknown serial: %v %+v", err, result)
	}
}

func TestCertificateRevokeAuthz(t *testing.T) {
	r := newTestDB(t)
	teacher := r.seedTeacher(t, "teacher@example.com")
	student := r.seedStudent(t, "student@example.com")
	course := r.seedCourse(t, teacher.ID, 0, 1)
	enrollment := r.seedEnrollment(t, student.ID, course.ID, 1)
	enrollment.SetStatus(domain.EnrollmentCompleted)
	if err := r.enrollments.Update(enrollment); err != nil {
		t.Fatalf("complete enrollment: %v", err)
	}
	svc := newCertificateService(r)

	cert, err := svc.Issue(student.ID, course.ID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// The student cannot revoke their own certificate.
	if _, err := svc.Revoke(student.ID, cert.ID, "nope"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("student revoke = %v, want ErrNotAuthorized", err)
	}

	// The course's teacher can.
	revoked, err := svc.Revoke(teacher.ID, cert.ID, "plagiarized final piece")
	if err != nil {
		t.Fatalf("teacher revoke: %v", err)
	}
	if revoked.Status() != "revoked" {
		t.Fatalf("status = %q", revoked.Status())
	}

	// Revoking again is a no-op, not an error.
	again, err := svc.Revoke(teacher.ID, cert.ID, "different reason")
	if err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if again.RevocationReason != "plagiarized final piece" {
		t.Fatalf("second revoke overwrote reason: %q", again.RevocationReason)
	}

	// A revoked serial verifies as revoked.
	result, err := svc.Verify(cert.FullSerial())
	if err != nil || result.Status != "revoked" {
		t.Fatalf("verify revoked: %v %+v", err, result)
	}
}
