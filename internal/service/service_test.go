package service

import (
	"fmt"
	"testing"

	"maestro/config"
	"maestro/internal/database"
	"maestro/internal/models"
	"maestro/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testRepos struct {
	db           *gorm.DB
	users        *repository.UserRepository
	courses      *repository.CourseRepository
	orders       *repository.OrderRepository
	enrollments  *repository.EnrollmentRepository
	quizzes      *repository.QuizRepository
	assignments  *repository.AssignmentRepository
	certificates *repository.CertificateRepository
	sessions     *repository.SessionRepository
	creds        *repository.OAuthCredentialRepository
}

func newTestDB(t *testing.T) *testRepos {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &testRepos{
		db:           db,
		users:        repository.NewUserRepository(db),
		courses:      repository.NewCourseRepository(db),
		orders:       repository.NewOrderRepository(db),
		enrollments:  repository.NewEnrollmentRepository(db),
		quizzes:      repository.NewQuizRepository(db),
		assignments:  repository.NewAssignmentRepository(db),
		certificates: repository.NewCertificateRepository(db),
		sessions:     repository.NewSessionRepository(db),
		creds:        repository.NewOAuthCredentialRepository(db),
	}
}

func stripeConfig() *config.StripeConfig {
	return &config.StripeConfig{
		SuccessURL: "http://localhost/checkout/success",
		CancelURL:  "http://localhost/checkout/cancel",
	}
}

func (r *testRepos) seedStudent(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test Student", Email: email}
	if err := r.users.Create(u); err != nil {
		t.Fatalf("seed student: %v", err)
	}
	return u
}

func (r *testRepos) seedTeacher(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test Teacher", Email: email, IsTeacher: true}
	if err := r.users.Create(u); err != nil {
		t.Fatalf("seed teacher: %v", err)
	}
	return u
}

func (r *testRepos) seedCourse(t *testing.T, teacherID uint, priceCents int64, lessons int) *models.Course {
	t.Helper()
	c := &models.Course{
		TeacherID:  teacherID,
		Title:      "Piano Foundations",
		Code:       "PNO",
		PriceCents: priceCents,
		Currency:   "usd",
		Published:  true,
	}
	if err := r.courses.Create(c); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	for i := 0; i < lessons; i++ {
		l := &models.Lesson{CourseID: c.ID, Position: i + 1, Title: fmt.Sprintf("Lesson %d", i+1)}
		if err := r.courses.CreateLesson(l); err != nil {
			t.Fatalf("seed lesson: %v", err)
		}
	}
	return c
}
