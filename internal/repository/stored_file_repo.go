package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type StoredFileRepository struct {
	db *gorm.DB
}

func NewStoredFileRepository(db *gorm.DB) *StoredFileRepository {
	return &StoredFileRepository{db: db}
}

func (r *StoredFileRepository) Create(f *models.StoredFile) error {
	return r.db.Create(f).Error
}

func (r *StoredFileRepository) GetByBlobName(blobName string) (*models.StoredFile, error) {
	var f models.StoredFile
	if err := r.db.Where("blob_name = ?", blobName).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *StoredFileRepository) Delete(f *models.StoredFile) error {
	return r.db.Delete(f).Error
}

func (r *StoredFileRepository) ListByUploader(userID uint) ([]models.StoredFile, error) {
	var files []models.StoredFile
	err := r.db.Where("uploaded_by_id = ?", userID).Order("created_at DESC").Find(&files).Error
	return files, err
}
