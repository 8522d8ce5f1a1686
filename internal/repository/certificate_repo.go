package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type CertificateRepository struct {
	db *gorm.DB
}

func NewCertificateRepository(db *gorm.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

func (r *CertificateRepository) Create(c *models.Certificate) error {
	return r.db.Create(c).Error
}

func (r *CertificateRepository) Update(c *models.Certificate) error {
	return r.db.Save(c).Error
}

func (r *CertificateRepository) GetByID(id uint) (*models.Certificate, error) {
	var c models.Certificate
	if err := r.db.Preload("User").Preload("Course").First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepository) GetByUserCourse(userID, courseID uint) (*models.Certificate, error) {
	var c models.Certificate
	err := r.db.Preload("Course").
		Where("user_id = ? AND course_id = ?", userID, courseID).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetBySerial looks up the random serial component of a full serial.
func (r *CertificateRepository) GetBySerial(serial string) (*models.Certificate, error) {
	var c models.Certificate
	err := r.db.Preload("User").Preload("Course").
		Where("serial = ?", serial).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CertificateRepository) ListByUser(userID uint) ([]models.Certificate, error) {
	var list []models.Certificate
	err := r.db.Preload("Course").Where("user_id = ?", userID).
		Order("issued_at DESC").Find(&list).Error
	return list, err
}
