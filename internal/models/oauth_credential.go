package models

import (
	"time"

	"golang.org/x/oauth2"
)

// OAuthCredential holds a user's provider tokens for calendar access.
type OAuthCredential struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:uniq_user_provider" json:"user_id"`
	Provider     string    `gorm:"size:20;not null;uniqueIndex:uniq_user_provider" json:"provider"`
	AccessToken  string    `gorm:"type:text;not null" json:"-"`
	RefreshToken string    `gorm:"type:text" json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `gorm:"size:512" json:"scope"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// NeedsRefresh reports whether the access token expires within buffer.
func (c *OAuthCredential) NeedsRefresh(buffer time.Duration) bool {
	return time.Now().Add(buffer).After(c.ExpiresAt)
}

// Token converts the stored credential to an oauth2 token.
func (c *OAuthCredential) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		Expiry:       c.ExpiresAt,
		TokenType:    "Bearer",
	}
}

// ApplyToken stores a rotated token. Some providers omit the refresh token
// on renewal; keep the old one in that case.
func (c *OAuthCredential) ApplyToken(tok *oauth2.Token) {
	c.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		c.RefreshToken = tok.RefreshToken
	}
	c.ExpiresAt = tok.Expiry
}
