package auth

import (
	"errors"
	"testing"
	"time"

	"maestro/config"
)

func ticketConfig() *config.JWTConfig {
	return &config.JWTConfig{
		TicketSecret: "test-ticket-secret",
		TicketExpiry: time.Minute,
		Issuer:       "maestro",
	}
}

func TestLoginTicketSingleUse(t *testing.T) {
	cfg := ticketConfig()
	reg := NewTicketRegistry()

	ticket, err := GenerateLoginTicket(cfg, 42)
	if err != nil {
		t.Fatalf("GenerateLoginTicket: %v", err)
	}

	userID, err := reg.Redeem(cfg, ticket)
	if err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if userID != 42 {
		t.Fatalf("redeemed user id = %d", userID)
	}

	if _, err := reg.Redeem(cfg, ticket); !errors.Is(err, ErrTicketUsed) {
		t.Fatalf("second redeem = %v, want ErrTicketUsed", err)
	}
}

func TestLoginTicketRejectsGarbage(t *testing.T) {
	cfg := ticketConfig()
	reg := NewTicketRegistry()
	if _, err := reg.Redeem(cfg, "not-a-jwt"); !errors.Is(err, ErrInvalidTicket) {
		t.Fatalf("garbage ticket = %v, want ErrInvalidTicket", err)
	}
}

func TestLoginTicketRejectsWrongSecret(t *testing.T) {
	cfg := ticketConfig()
	ticket, err := GenerateLoginTicket(cfg, 7)
	if err != nil {
		t.Fatalf("GenerateLoginTicket: %v", err)
	}

	other := ticketConfig()
	other.TicketSecret = "a-different-secret"
	reg := NewTicketRegistry()
	if _, err := reg.Redeem(other, ticket); !errors.Is(err, ErrInvalidTicket) {
		t.Fatalf("wrong secret = %v, want ErrInvalidTicket", err)
	}
}

func TestLoginTicketExpires(t *testing.T) {
	cfg := ticketConfig()
	cfg.TicketExpiry = -time.Second // already expired
	ticket, err := GenerateLoginTicket(cfg, 7)
	if err != nil {
		t.Fatalf("GenerateLoginTicket: %v", err)
	}
	reg := NewTicketRegistry()
	if _, err := reg.Redeem(cfg, ticket); !errors.Is(err, ErrInvalidTicket) {
		t.Fatalf("expired ticket = %v, want ErrInvalidTicket", err)
	}
}
