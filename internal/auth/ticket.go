package auth

import (
	"errors"
	"sync"
	"time"

	"maestro/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Login tickets bridge the OAuth callback and the token exchange: the
// callback issues a signed, short-lived, single-use ticket instead of
// trusting a session flag, and the exchange endpoint verifies it before
// minting JWTs.

var (
	ErrTicketUsed    = errors.New("login ticket already used")
	ErrInvalidTicket = errors.New("invalid login ticket")
)

type ticketClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

func GenerateLoginTicket(cfg *config.JWTConfig, userID uint) (string, error) {
	claims := ticketClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.TicketExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    cfg.Issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.TicketSecret))
}

// TicketRegistry burns ticket ids so each ticket redeems at most once.
type TicketRegistry struct {
	mu   sync.Mutex
	used map[string]time.Time
}

func NewTicketRegistry() *TicketRegistry {
	r := &TicketRegistry{used: make(map[string]time.Time)}
	go r.cleanup()
	return r
}

// Redeem verifies the ticket signature and expiry, then marks its id used.
func (r *TicketRegistry) Redeem(cfg *config.JWTConfig, ticket string) (uint, error) {
	claims := &ticketClaims{}
	token, err := jwt.ParseWithClaims(ticket, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.TicketSecret), nil
	})
	if err != nil || !token.Valid || claims.ID == "" {
		return 0, ErrInvalidTicket
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.used[claims.ID]; seen {
		return 0, ErrTicketUsed
	}
	r.used[claims.ID] = claims.ExpiresAt.Time
	return claims.UserID, nil
}

func (r *TicketRegistry) cleanup() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		now := time.Now()
		r.mu.Lock()
		for id, exp := range r.used {
			if now.After(exp) {
				delete(r.used, id)
			}
		}
		r.mu.Unlock()
	}
}
