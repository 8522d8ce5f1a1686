package payment

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrBadSignature means the webhook payload failed signature verification
// and must be rejected before any state mutation.
var ErrBadSignature = errors.New("webhook signature verification failed")

// ErrNoWebhookSecret means the endpoint secret is not configured; the
// request must be rejected without touching any state.
var ErrNoWebhookSecret = errors.New("webhook secret not configured")

// CheckoutParams describes a one-off course purchase.
type CheckoutParams struct {
	CourseTitle       string
	CourseDescription string
	AmountCents       int64
	Currency          string
	CustomerEmail     string
	SuccessURL        string
	CancelURL         string
	Metadata          map[string]string
}

// CheckoutSession is the gateway-hosted payment page reference.
type CheckoutSession struct {
	ID  string
	URL string
}

// Event is a verified webhook delivery: the gateway's event type string
// and the raw event object for type-specific decoding.
type Event struct {
	Type string
	Data json.RawMessage
}

// Gateway abstracts the payment processor so the order lifecycle can be
// exercised without network calls.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error)
	// VerifyEvent checks the signature header against the shared secret
	// and returns the decoded event. It must fail before any state is
	// touched.
	VerifyEvent(payload []byte, sigHeader string) (*Event, error)
}
