package service

import (
	"context"
	"errors"
	"fmt"

	"maestro/config"
	"maestro/internal/models"
	"maestro/internal/repository"
	"maestro/pkg/payment"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrAlreadyEnrolled   = errors.New("student already enrolled in course")
	ErrCourseUnavailable = errors.New("course is not available for purchase")
)

// CheckoutResult is what the frontend needs to continue a purchase. For a
// free course there is no gateway session; the enrollment is immediate.
type CheckoutResult struct {
	Order       *models.Order      `json:"order,omitempty"`
	CheckoutURL string             `json:"checkout_url,omitempty"`
	Enrollment  *models.Enrollment `json:"enrollment,omitempty"`
}

type CheckoutService struct {
	orders      *repository.OrderRepository
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	users       *repository.UserRepository
	gateway     payment.Gateway
	cfg         *config.StripeConfig
	log         *zap.Logger
}

func NewCheckoutService(
	orders *repository.OrderRepository,
	courses *repository.CourseRepository,
	enrollments *repository.EnrollmentRepository,
	users *repository.UserRepository,
	gateway payment.Gateway,
	cfg *config.StripeConfig,
	log *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		orders:      orders,
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		gateway:     gateway,
		cfg:         cfg,
		log:         log,
	}
}

// Start opens a checkout for a published course. Free courses skip the
// gateway and enroll immediately.
func (s *CheckoutService) Start(ctx context.Context, studentID, courseID uint) (*CheckoutResult, error) {
	course, err := s.courses.GetByID(courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseUnavailable
	}
	if err != nil {
		return nil, err
	}
	if !course.Published {
		return nil, ErrCourseUnavailable
	}
	enrolled, err := s.enrollments.ExistsByStudentCourse(studentID, courseID)
	if err != nil {
		return nil, err
	}
	if enrolled {
		return nil, ErrAlreadyEnrolled
	}

	if course.PriceCents == 0 {
		total, err := s.courses.CountLessons(courseID)
		if err != nil {
			return nil, err
		}
		enrollment := models.NewEnrollment(studentID, courseID, total)
		if err := s.enrollments.Create(enrollment); err != nil {
			return nil, err
		}
		s.log.Info("free enrollment created",
			zap.Uint("student_id", studentID),
			zap.Uint("course_id", courseID))
		return &CheckoutResult{Enrollment: enrollment}, nil
	}

	student, err := s.users.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	session, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutParams{
		CourseTitle:       course.Title,
		CourseDescription: course.Description,
		AmountCents:       course.PriceCents,
		Currency:          course.Currency,
		CustomerEmail:     student.Email,
		SuccessURL:        s.cfg.SuccessURL,
		CancelURL:         s.cfg.CancelURL,
		Metadata: map[string]string{
			"user_id":   fmt.Sprint(studentID),
			"course_id": fmt.Sprint(courseID),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	order := models.NewOrder(studentID, courseID, course.PriceCents, course.Currency, session.ID)
	if err := s.orders.Create(order); err != nil {
		return nil, err
	}
	s.log.Info("checkout started",
		zap.String("order", order.OrderNumber()),
		zap.Uint("course_id", courseID),
		zap.String("session_id", session.ID))
	return &CheckoutResult{Order: order, CheckoutURL: session.URL}, nil
}
