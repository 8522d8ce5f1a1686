package payment

import (
	"context"

	"maestro/config"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway drives Stripe Checkout and verifies webhook deliveries.
type StripeGateway struct {
	cfg *config.StripeConfig
}

func NewStripeGateway(cfg *config.StripeConfig) *StripeGateway {
	stripe.Key = cfg.SecretKey
	return &StripeGateway{cfg: cfg}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(p.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(p.CourseTitle),
					Description: stripe.String(p.CourseDescription),
				},
				UnitAmount: stripe.Int64(p.AmountCents),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(p.SuccessURL),
		CancelURL:  stripe.String(p.CancelURL),
	}
	if p.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(p.CustomerEmail)
	}
	for k, v := range p.Metadata {
		params.AddMetadata(k, v)
	}
	params.Context = ctx
	s, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	if g.cfg.WebhookSecret == "" {
		return nil, ErrNoWebhookSecret
	}
	event, err := webhook.ConstructEvent(payload, sigHeader, g.cfg.WebhookSecret)
	if err != nil {
		return nil, ErrBadSignature
	}
	return &Event{Type: string(event.Type), Data: event.Data.Raw}, nil
}
