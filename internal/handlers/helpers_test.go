package handlers

import (
	"errors"
	"fmt"
	"testing"

	"github.com/confops/conference-api/internal/auth"
	"github.com/confops/conference-api/internal/config"
	"github.com/confops/conference-api/internal/credentials"
	"github.com/confops/conference-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	// keep the in-memory database on a single connection
	sqlDB.SetMaxOpenConns(1)

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
		t.Fatalf("failed to auto migrate: %v", err)
	}
	return db
}

func newTestAuth(db *gorm.DB) *auth.AuthHandler {
	return auth.NewAuthHandler(&config.Config{JWTSecret: "test-secret"}, db)
}

func createTestParticipant(t *testing.T, db *gorm.DB, name, email string, organizer bool) models.Participant {
	t.Helper()

	hash, err := credentials.HashPassword("test-password")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	participant := models.Participant{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		IdentityToken: credentials.MintToken(name, email),
		Organizer:     organizer,
	}
	if err := db.Create(&participant).Error; err != nil {
		t.Fatalf("failed to create participant: %v", err)
	}
	return participant
}

func createTestSession(t *testing.T, db *gorm.DB, capacity int) models.Session {
	t.Helper()

	track := models.Track{Title: "Main Track"}
	if err := db.Create(&track).Error; err != nil {
		t.Fatalf("failed to create track: %v", err)
	}

	session := models.Session{
		TrackID: track.ID,
		SessionFields: models.SessionFields{
			Title:    "Opening Keynote",
			Speaker:  "A. Speaker",
			Venue:    "Hall 1",
			Capacity: capacity,
		},
	}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session
}

func authInputFor(t *testing.T, authHandler *auth.AuthHandler, participantID uint) auth.AuthInput {
	t.Helper()

	token, err := authHandler.GenerateToken(participantID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return auth.AuthInput{Cookie: "auth_token=" + token}
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", want)
	}
	var statusErr huma.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected huma status error, got %v", err)
	}
	if statusErr.GetStatus() != want {
		t.Fatalf("expected status %d, got %d (%v)", want, statusErr.GetStatus(), err)
	}
}

func uniqueEmail(i int) string {
	return fmt.Sprintf("attendee%d@example.com", i)
}
