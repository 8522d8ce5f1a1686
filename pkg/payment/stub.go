package payment

import (
	"context"
	"encoding/json"
	"fmt"
)

// StubGateway is a test double. Sessions get deterministic ids and
// VerifyEvent treats the signature header as the event type.
type StubGateway struct {
	Sessions []CheckoutParams
	FailNext bool
}

func (g *StubGateway) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if g.FailNext {
		g.FailNext = false
		return nil, fmt.Errorf("stub gateway failure")
	}
	g.Sessions = append(g.Sessions, p)
	id := fmt.Sprintf("cs_test_%03d", len(g.Sessions))
	return &CheckoutSession{ID: id, URL: "https://checkout.stub/" + id}, nil
}

func (g *StubGateway) VerifyEvent(payload []byte, sigHeader string) (*Event, error) {
	if sigHeader == "" {
		return nil, ErrBadSignature
	}
	return &Event{Type: sigHeader, Data: json.RawMessage(payload)}, nil
}
