package domain

const (
	RoleStudent = "STUDENT"
	RoleTeacher = "TEACHER"
	RoleAdmin   = "ADMIN"
)

// Order lifecycle. pending -> paid | failed, paid -> refunded.
// failed and refunded are terminal.
const (
	OrderPending  = "pending"
	OrderPaid     = "paid"
	OrderFailed   = "failed"
	OrderRefunded = "refunded"
)

const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentPaused    = "paused"
	EnrollmentCancelled = "cancelled"
)

// Stripe webhook event types handled by the payment lifecycle.
// Anything else is acknowledged and ignored.
const (
	EventCheckoutSessionCompleted = "checkout.session.completed"
	EventPaymentIntentSucceeded   = "payment_intent.succeeded"
	EventPaymentIntentFailed      = "payment_intent.payment_failed"
	EventChargeRefunded           = "charge.refunded"
)

const (
	SessionScheduled = "scheduled"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

const OAuthProviderGoogle = "google"
