package database

import (
	"maestro/config"
	"maestro/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lesson{},
		&models.Order{},
		&models.Enrollment{},
		&models.Quiz{},
		&models.QuizAttempt{},
		&models.Assignment{},
		&models.AssignmentSubmission{},
		&models.Comment{},
		&models.Certificate{},
		&models.Session{},
		&models.StoredFile{},
		&models.Note{},
		&models.OAuthCredential{},
	)
}

// SeedAdmin creates the initial admin account if none exists.
func SeedAdmin(db *gorm.DB) {
	var n int64
	db.Model(&models.User{}).Where("is_admin = ?", true).Count(&n)
	if n > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-change-me"), bcrypt.DefaultCost)
	if err != nil {
		return
	}
	db.Create(&models.User{
		FullName:     "Administrator",
		Email:        "admin@maestro.app",
		PasswordHash: string(hash),
		IsAdmin:      true,
		IsTeacher:    true,
	})
}
