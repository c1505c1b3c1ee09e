package handlers

import (
	"context"
	"encoding/hex"
	"net/http"
	"testing"

	"github.com/confops/conference-api/internal/models"
)

func TestHandleCreateAPIKey(t *testing.T) {
	db := setupTestDB(t)
	authHandler := newTestAuth(db)
	handler := NewAPIKeyHandler(db, authHandler)

	organizer := createTestParticipant(t, db, "Org", "org@example.com", true)

	input := CreateAPIKeyInput{AuthInput: authInputFor(t, authHandler, organizer.ID)}
	input.Body.Name = "door scanner"

	out, err := handler.HandleCreate(context.Background(), &input)
	if err != nil {
		t.Fatalf("HandleCreate failed: %v", err)
	}
	if out.Body.Name != "door scanner" {
		t.Errorf("expected name kept, got %q", out.Body.Name)
	}
	if _, err := hex.DecodeString(out.Body.Key); err != nil || len(out.Body.Key) != 64 {
		t.Errorf("expected 64 hex characters, got %q", out.Body.Key)
	}

	var stored models.APIKey
	if err := db.First(&stored, out.Body.ID).Error; err != nil {
		t.Fatalf("expected stored key row: %v", err)
	}
	if stored.Key != out.Body.Key {
		t.Error("stored key does not match the one handed out")
	}
	if stored.ParticipantID != organizer.ID {
		t.Errorf("expected key owned by %d, got %d", organizer.ID, stored.ParticipantID)
	}

	t.Run("AttendeeForbidden", func(t *testing.T) {
		attendee := createTestParticipant(t, db, "Ann", "ann@example.com", false)

		input := CreateAPIKeyInput{AuthInput: authInputFor(t, authHandler, attendee.ID)}
		input.Body.Name = "rogue scanner"

		_, err := handler.HandleCreate(context.Background(), &input)
		assertStatus(t, err, http.StatusForbidden)

		var count int64
		db.Model(&models.APIKey{}).Count(&count)
		if count != 1 {
			t.Errorf("forbidden create must not add keys, got %d", count)
		}
	})
}

func TestHandleListAPIKeys(t *testing.T) {
	db := setupTestDB(t)
	authHandler := newTestAuth(db)
	handler := NewAPIKeyHandler(db, authHandler)

	organizer := createTestParticipant(t, db, "Org", "org@example.com", true)
	other := createTestParticipant(t, db, "Ann", "ann@example.com", false)

	db.Create(&models.APIKey{ParticipantID: organizer.ID, Key: "abcdef0123456789", Name: "door scanner"})

	t.Run("KeysAreMasked", func(t *testing.T) {
		input := ListAPIKeysInput{AuthInput: authInputFor(t, authHandler, organizer.ID)}
		out, err := handler.HandleList(context.Background(), &input)
		if err != nil {
			t.Fatalf("HandleList failed: %v", err)
		}
		if len(out.Body) != 1 {
			t.Fatalf("expected 1 key, got %d", len(out.Body))
		}
		if out.Body[0].Key != "...6789" {
			t.Errorf("expected masked key ...6789, got %q", out.Body[0].Key)
		}
	})

	t.Run("ScopedToOwner", func(t *testing.T) {
		input := ListAPIKeysInput{AuthInput: authInputFor(t, authHandler, other.ID)}
		out, err := handler.HandleList(context.Background(), &input)
		if err != nil {
			t.Fatalf("HandleList failed: %v", err)
		}
		if len(out.Body) != 0 {
			t.Errorf("expected no keys for non-owner, got %d", len(out.Body))
		}
	})
}

func TestHandleDeleteAPIKey_OwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	authHandler := newTestAuth(db)
	handler := NewAPIKeyHandler(db, authHandler)

	organizer := createTestParticipant(t, db, "Org", "org@example.com", true)
	other := createTestParticipant(t, db, "Ann", "ann@example.com", false)

	key := models.APIKey{ParticipantID: organizer.ID, Key: "abcdef0123456789", Name: "door scanner"}
	db.Create(&key)

	// A delete by someone else's ID must leave the key in place.
	foreign := DeleteAPIKeyInput{AuthInput: authInputFor(t, authHandler, other.ID), ID: key.ID}
	if _, err := handler.HandleDelete(context.Background(), &foreign); err != nil {
		t.Fatalf("HandleDelete failed: %v", err)
	}

	var count int64
	db.Model(&models.APIKey{}).Count(&count)
	if count != 1 {
		t.Fatalf("foreign delete must not remove the key, got %d rows", count)
	}

	own := DeleteAPIKeyInput{AuthInput: authInputFor(t, authHandler, organizer.ID), ID: key.ID}
	if _, err := handler.HandleDelete(context.Background(), &own); err != nil {
		t.Fatalf("HandleDelete failed: %v", err)
	}

	db.Model(&models.APIKey{}).Count(&count)
	if count != 0 {
		t.Errorf("owner delete must remove the key, got %d rows", count)
	}
}
