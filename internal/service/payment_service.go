package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"maestro/internal/domain"
	"maestro/internal/models"
	"maestro/internal/repository"
	"maestro/pkg/mailer"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService applies verified gateway events to the order lifecycle.
// Deliveries are at-least-once: duplicates and out-of-order events must
// settle into the same final state, and an event that cannot be matched
// to an order is logged and acknowledged, never retried into failure.
type PaymentService struct {
	orders      *repository.OrderRepository
	courses     *repository.CourseRepository
	enrollments *repository.EnrollmentRepository
	users       *repository.UserRepository
	mail        mailer.Mailer
	log         *zap.Logger
}

func NewPaymentService(
	orders *repository.OrderRepository,
	courses *repository.CourseRepository,
	enrollments *repository.EnrollmentRepository,
	users *repository.UserRepository,
	mail mailer.Mailer,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{
		orders:      orders,
		courses:     courses,
		enrollments: enrollments,
		users:       users,
		mail:        mail,
		log:         log,
	}
}

type checkoutSessionPayload struct {
	ID            string `json:"id"`
	PaymentIntent string `json:"payment_intent"`
}

type paymentIntentPayload struct {
	ID               string `json:"id"`
	LastPaymentError *struct {
		Message string `json:"message"`
	} `json:"last_payment_error"`
}

type chargePayload struct {
	PaymentIntent string `json:"payment_intent"`
}

// ApplyEvent dispatches a verified webhook event. A nil return means the
// delivery should be acknowledged; unknown event types are acknowledged
// without side effects.
func (s *PaymentService) ApplyEvent(eventType string, data json.RawMessage) error {
	switch eventType {
	case domain.EventCheckoutSessionCompleted:
		var p checkoutSessionPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		order, ok, err := s.findBySession(eventType, p.ID)
		if err != nil || !ok {
			return err
		}
		return s.applyPaid(order, p.PaymentIntent)

	case domain.EventPaymentIntentSucceeded:
		var p paymentIntentPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		order, ok, err := s.findByIntent(eventType, p.ID)
		if err != nil || !ok {
			return err
		}
		return s.applyPaid(order, p.ID)

	case domain.EventPaymentIntentFailed:
		var p paymentIntentPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		order, ok, err := s.findByIntent(eventType, p.ID)
		if err != nil || !ok {
			return err
		}
		reason := "payment failed"
		if p.LastPaymentError != nil && p.LastPaymentError.Message != "" {
			reason = p.LastPaymentError.Message
		}
		return s.applyFailed(order, reason)

	case domain.EventChargeRefunded:
		var p chargePayload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", eventType, err)
		}
		order, ok, err := s.findByIntent(eventType, p.PaymentIntent)
		if err != nil || !ok {
			return err
		}
		return s.applyRefunded(order)

	default:
		s.log.Debug("ignoring webhook event", zap.String("type", eventType))
		return nil
	}
}

func (s *PaymentService) applyPaid(order *models.Order, paymentIntentID string) error {
	if err := order.MarkPaid(paymentIntentID); err != nil {
		// Terminal order; a stale delivery must not flip it back.
		s.log.Warn("payment event conflicts with order state",
			zap.String("order", order.OrderNumber()),
			zap.String("status", order.Status),
			zap.Error(err))
		return nil
	}
	if err := s.orders.Update(order); err != nil {
		return err
	}
	if err := s.ensureEnrollment(order); err != nil {
		return err
	}
	s.log.Info("order paid",
		zap.String("order", order.OrderNumber()),
		zap.Uint("user_id", order.UserID),
		zap.Uint("course_id", order.CourseID))
	s.notify(order, "Payment received",
		fmt.Sprintf("Your payment for order %s was received. You now have access to the course.", order.OrderNumber()))
	return nil
}

func (s *PaymentService) applyFailed(order *models.Order, reason string) error {
	if err := order.MarkFailed(reason); err != nil {
		s.log.Warn("failure event conflicts with order state",
			zap.String("order", order.OrderNumber()),
			zap.String("status", order.Status),
			zap.Error(err))
		return nil
	}
	if err := s.orders.Update(order); err != nil {
		return err
	}
	s.log.Info("order failed",
		zap.String("order", order.OrderNumber()),
		zap.String("reason", reason))
	return nil
}

func (s *PaymentService) applyRefunded(order *models.Order) error {
	if err := order.MarkRefunded(); err != nil {
		s.log.Warn("refund event conflicts with order state",
			zap.String("order", order.OrderNumber()),
			zap.String("status", order.Status),
			zap.Error(err))
		return nil
	}
	if err := s.orders.Update(order); err != nil {
		return err
	}
	enrollment, err := s.enrollments.GetByStudentCourse(order.UserID, order.CourseID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if enrollment != nil && !enrollment.IsCancelled() {
		enrollment.SetStatus(domain.EnrollmentCancelled)
		if err := s.enrollments.Update(enrollment); err != nil {
			return err
		}
	}
	s.log.Info("order refunded", zap.String("order", order.OrderNumber()))
	s.notify(order, "Refund processed",
		fmt.Sprintf("Your payment for order %s was refunded and course access has been revoked.", order.OrderNumber()))
	return nil
}

// ensureEnrollment grants course access after payment. A duplicate paid
// event finds the existing row and does nothing.
func (s *PaymentService) ensureEnrollment(order *models.Order) error {
	exists, err := s.enrollments.ExistsByStudentCourse(order.UserID, order.CourseID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	total, err := s.courses.CountLessons(order.CourseID)
	if err != nil {
		return err
	}
	enrollment := models.NewEnrollment(order.UserID, order.CourseID, total)
	if err := s.enrollments.Create(enrollment); err != nil {
		return err
	}
	s.log.Info("enrollment created",
		zap.Uint("student_id", order.UserID),
		zap.Uint("course_id", order.CourseID),
		zap.Int("total_lessons", total))
	return nil
}

func (s *PaymentService) findBySession(eventType, sessionID string) (*models.Order, bool, error) {
	order, err := s.orders.GetByStripeSessionID(sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn("webhook event matched no order",
			zap.String("type", eventType),
			zap.String("session_id", sessionID))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return order, true, nil
}

func (s *PaymentService) findByIntent(eventType, paymentIntentID string) (*models.Order, bool, error) {
	if paymentIntentID == "" {
		s.log.Warn("webhook event carried no payment intent", zap.String("type", eventType))
		return nil, false, nil
	}
	order, err := s.orders.GetByPaymentIntentID(paymentIntentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.log.Warn("webhook event matched no order",
			zap.String("type", eventType),
			zap.String("payment_intent", paymentIntentID))
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return order, true, nil
}

// notify is best-effort; mail failures never fail the webhook.
func (s *PaymentService) notify(order *models.Order, subject, body string) {
	user, err := s.users.GetByID(order.UserID)
	if err != nil {
		s.log.Error("loading user for notification failed", zap.Uint("user_id", order.UserID), zap.Error(err))
		return
	}
	if err := s.mail.Send(user.FullName, user.Email, subject, body, ""); err != nil {
		s.log.Error("sending notification failed", zap.String("to", user.Email), zap.Error(err))
	}
}
