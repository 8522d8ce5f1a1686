package service

import (
	"errors"
	"strings"

	"maestro/config"
	"maestro/internal/auth"
	"maestro/internal/domain"
	"maestro/internal/models"
	"maestro/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenPair is what a successful login returns.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService struct {
	users   *repository.UserRepository
	creds   *repository.OAuthCredentialRepository
	tickets *auth.TicketRegistry
	cfg     *config.JWTConfig
	log     *zap.Logger
}

func NewAuthService(users *repository.UserRepository, creds *repository.OAuthCredentialRepository, tickets *auth.TicketRegistry, cfg *config.JWTConfig, log *zap.Logger) *AuthService {
	return &AuthService{users: users, creds: creds, tickets: tickets, cfg: cfg, log: log}
}

func (s *AuthService) Register(fullName, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Uint("user_id", user.ID), zap.String("email", user.Email))
	return user, nil
}

func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, err
	}
	if user.PasswordHash == "" {
		return nil, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// GoogleProfile is the subset of the Google userinfo response the login
// flow needs.
type GoogleProfile struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// LoginWithGoogle finds or creates the user for a verified Google profile,
// stores the OAuth token for later calendar use, and returns a short-lived
// single-use login ticket the frontend exchanges for a token pair.
func (s *AuthService) LoginWithGoogle(profile *GoogleProfile, tok *oauth2.Token, scope string) (string, error) {
	user, err := s.users.GetByGoogleID(profile.Sub)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	if user == nil {
		// Link by email when the account predates Google login.
		user, err = s.users.GetByEmail(strings.ToLower(profile.Email))
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
		sub := profile.Sub
		if user == nil {
			user = &models.User{
				FullName:  profile.Name,
				Email:     strings.ToLower(profile.Email),
				GoogleID:  &sub,
				AvatarURL: profile.Picture,
			}
			if err := s.users.Create(user); err != nil {
				return "", err
			}
			s.log.Info("user created via google", zap.Uint("user_id", user.ID))
		} else {
			user.GoogleID = &sub
			if user.AvatarURL == "" {
				user.AvatarURL = profile.Picture
			}
			if err := s.users.Update(user); err != nil {
				return "", err
			}
		}
	}

	cred := &models.OAuthCredential{
		UserID:   user.ID,
		Provider: domain.OAuthProviderGoogle,
		Scope:    scope,
	}
	cred.ApplyToken(tok)
	if err := s.creds.Upsert(cred); err != nil {
		// Calendar access degrades, login still succeeds.
		s.log.Error("storing oauth credential failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return auth.GenerateLoginTicket(s.cfg, user.ID)
}

// RedeemLoginTicket burns the ticket and returns a token pair.
func (s *AuthService) RedeemLoginTicket(ticket string) (*models.User, *TokenPair, error) {
	userID, err := s.tickets.Redeem(s.cfg, ticket)
	if err != nil {
		return nil, nil, err
	}
	user, err := s.users.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, auth.ErrInvalidTicket
	}
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	userID, err := auth.ParseRefreshToken(s.cfg, refreshToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, auth.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(s.cfg, user.ID, user.Email, user.Role())
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(s.cfg, user.ID)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
