package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"maestro/internal/domain"
)

// ErrOrderTransition is returned when a status change is not allowed by the
// order state machine.
var ErrOrderTransition = errors.New("invalid order status transition")

// Order is a purchase attempt correlated with a Stripe checkout session.
// Status moves pending -> paid | failed, paid -> refunded; failed and
// refunded are terminal.
type Order struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	UserID                uint      `gorm:"not null;index" json:"user_id"`
	CourseID              uint      `gorm:"not null;index" json:"course_id"`
	AmountCents           int64     `gorm:"not null" json:"amount_cents"`
	Currency              string    `gorm:"size:3;default:'usd'" json:"currency"`
	Status                string    `gorm:"size:20;not null;index" json:"status"`
	StripeSessionID       *string   `gorm:"uniqueIndex;size:255" json:"-"`
	StripePaymentIntentID *string   `gorm:"index;size:255" json:"-"`
	FailureReason         *string   `gorm:"size:255" json:"failure_reason,omitempty"`
	Notes                 string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	User   *User   `gorm:"foreignKey:UserID" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID" json:"-"`
}

func NewOrder(userID, courseID uint, amountCents int64, currency, stripeSessionID string) *Order {
	sid := stripeSessionID
	return &Order{
		UserID:          userID,
		CourseID:        courseID,
		AmountCents:     amountCents,
		Currency:        strings.ToLower(currency),
		Status:          domain.OrderPending,
		StripeSessionID: &sid,
	}
}

func (o *Order) IsPending() bool  { return o.Status == domain.OrderPending }
func (o *Order) IsPaid() bool     { return o.Status == domain.OrderPaid }
func (o *Order) IsFailed() bool   { return o.Status == domain.OrderFailed }
func (o *Order) IsRefunded() bool { return o.Status == domain.OrderRefunded }

// MarkPaid transitions pending -> paid and records the payment intent once.
// Re-marking an already paid order is a no-op so webhook retries stay
// idempotent.
func (o *Order) MarkPaid(paymentIntentID string) error {
	switch o.Status {
	case domain.OrderPaid:
		return nil
	case domain.OrderPending:
		o.Status = domain.OrderPaid
		if paymentIntentID != "" {
			pi := paymentIntentID
			o.StripePaymentIntentID = &pi
		}
		o.FailureReason = nil
		return nil
	default:
		return ErrOrderTransition
	}
}

func (o *Order) MarkFailed(reason string) error {
	switch o.Status {
	case domain.OrderFailed:
		return nil
	case domain.OrderPending:
		o.Status = domain.OrderFailed
		r := reason
		o.FailureReason = &r
		return nil
	default:
		return ErrOrderTransition
	}
}

func (o *Order) MarkRefunded() error {
	switch o.Status {
	case domain.OrderRefunded:
		return nil
	case domain.OrderPaid:
		o.Status = domain.OrderRefunded
		return nil
	default:
		return ErrOrderTransition
	}
}

func (o *Order) Amount() float64 { return float64(o.AmountCents) / 100 }

func (o *Order) OrderNumber() string {
	return fmt.Sprintf("ORD-%06d", o.ID)
}
