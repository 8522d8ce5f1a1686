package models

import "time"

// StoredFile is the database record for a blob uploaded to cloud storage.
type StoredFile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	BlobName     string    `gorm:"size:512;uniqueIndex;not null" json:"blob_name"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	ContentType  string    `gorm:"size:100" json:"content_type"`
	Size         int64     `json:"size"`
	URL          string    `gorm:"size:1024" json:"url"`
	UploadedByID uint      `gorm:"not null;index" json:"uploaded_by_id"`
	CreatedAt    time.Time `json:"created_at"`

	UploadedBy *User `gorm:"foreignKey:UploadedByID" json:"-"`
}
