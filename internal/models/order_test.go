package models

import (
	"errors"
	"testing"
)

func TestOrderLifecycle(t *testing.T) {
	o := NewOrder(7, 3, 9900, "usd", "cs_123")
	if !o.IsPending() {
		t.Fatalf("new order status = %q, want pending", o.Status)
	}
	if o.AmountCents != 9900 || o.Currency != "usd" {
		t.Fatalf("order amount = %d %s", o.AmountCents, o.Currency)
	}

	if err := o.MarkPaid("pi_abc"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if !o.IsPaid() {
		t.Fatalf("status after MarkPaid = %q", o.Status)
	}
	if o.StripePaymentIntentID == nil || *o.StripePaymentIntentID != "pi_abc" {
		t.Fatalf("payment intent not recorded")
	}

	// Duplicate delivery is a no-op, not an error.
	if err := o.MarkPaid("pi_abc"); err != nil {
		t.Fatalf("second MarkPaid: %v", err)
	}

	if err := o.MarkRefunded(); err != nil {
		t.Fatalf("MarkRefunded: %v", err)
	}
	if !o.IsRefunded() {
		t.Fatalf("status after refund = %q", o.Status)
	}

	// Refunded is terminal.
	if err := o.MarkPaid("pi_other"); !errors.Is(err, ErrOrderTransition) {
		t.Fatalf("MarkPaid on refunded order = %v, want ErrOrderTransition", err)
	}
}

func TestOrderMarkFailed(t *testing.T) {
	o := NewOrder(1, 1, 500, "usd", "cs_1")
	if err := o.MarkFailed("card declined"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if !o.IsFailed() || o.FailureReason == nil || *o.FailureReason != "card declined" {
		t.Fatalf("failed order = %q reason %v", o.Status, o.FailureReason)
	}
	// Idempotent on re-delivery.
	if err := o.MarkFailed("card declined"); err != nil {
		t.Fatalf("second MarkFailed: %v", err)
	}
	// A failed order cannot become paid.
	if err := o.MarkPaid("pi_1"); !errors.Is(err, ErrOrderTransition) {
		t.Fatalf("MarkPaid on failed order = %v, want ErrOrderTransition", err)
	}
	// And cannot be refunded without ever being paid.
	if err := o.MarkRefunded(); !errors.Is(err, ErrOrderTransition) {
		t.Fatalf("MarkRefunded on failed order = %v, want ErrOrderTransition", err)
	}
}

func TestOrderPaidClearsFailureReason(t *testing.T) {
	o := NewOrder(1, 1, 500, "usd", "cs_2")
	stale := "stale"
	o.FailureReason = &stale
	if err := o.MarkPaid("pi_2"); err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if o.FailureReason != nil {
		t.Fatalf("failure reason survived payment: %q", *o.FailureReason)
	}
}

func TestOrderNumber(t *testing.T) {
	o := NewOrder(1, 1, 500, "usd", "cs_3")
	o.ID = 42
	if got := o.OrderNumber(); got != "ORD-000042" {
		t.Fatalf("OrderNumber = %q", got)
	}
}
