package database

import (
	"fmt"
	"log"
	"strings"

	"github.com/confops/conference-api/internal/config"
	"github.com/confops/conference-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	// busy_timeout queues concurrent writers instead of failing with
	// "database is locked"; immediate transactions take the write lock
	// up front, so a check-in transaction never deadlocks upgrading a
	// read lock. foreign_keys is a per-connection pragma and has to
	// ride the DSN to reach every pooled connection.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on", cfg.DatabasePath)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.Participant{},
		&models.Track{},
		&models.Session{},
		&models.AdmissionRecord{},
		&models.SessionRegistration{},
		&models.Proceeding{},
		&models.APIKey{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}

// IsUniqueViolation reports whether err is the sqlite unique
// constraint error. Matched on the driver text because gorm only
// translates it when TranslateError is on, which rewrites other
// errors as well.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
