package repository

import (
	"errors"

	"maestro/internal/models"

	"gorm.io/gorm"
)

type OAuthCredentialRepository struct {
	db *gorm.DB
}

func NewOAuthCredentialRepository(db *gorm.DB) *OAuthCredentialRepository {
	return &OAuthCredentialRepository{db: db}
}

func (r *OAuthCredentialRepository) GetByUserProvider(userID uint, provider string) (*models.OAuthCredential, error) {
	var c models.OAuthCredential
	err := r.db.Where("user_id = ? AND provider = ?", userID, provider).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Upsert stores or replaces the credential for (user, provider).
func (r *OAuthCredentialRepository) Upsert(c *models.OAuthCredential) error {
	existing, err := r.GetByUserProvider(c.UserID, c.Provider)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(c).Error
	}
	if err != nil {
		return err
	}
	existing.AccessToken = c.AccessToken
	if c.RefreshToken != "" {
		existing.RefreshToken = c.RefreshToken
	}
	existing.ExpiresAt = c.ExpiresAt
	existing.Scope = c.Scope
	*c = *existing
	return r.db.Save(existing).Error
}

func (r *OAuthCredentialRepository) Update(c *models.OAuthCredential) error {
	return r.db.Save(c).Error
}
