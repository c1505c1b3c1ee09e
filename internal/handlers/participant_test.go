package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/confops/conference-api/internal/auth"
	"github.com/confops/conference-api/internal/credentials"
	"github.com/confops/conference-api/internal/models"
	"github.com/go-chi/chi/v5"
)

func TestHandleRegister_DuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	handler := NewParticipantHandler(db, nil, newTestAuth(db))

	first := RegisterRequest{}
	first.Body.Name = "Ann"
	first.Body.Email = "ann@example.com"
	first.Body.Password = "pw-for-ann-1"

	resp, err := handler.HandleRegister(context.Background(), &first)
	if err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if resp.Body.IdentityToken == "" {
		t.Error("expected identity token in response")
	}

	second := RegisterRequest{}
	second.Body.Name = "Bob"
	second.Body.Email = "ann@example.com"
	second.Body.Password = "pw-for-bob-2"

	_, err = handler.HandleRegister(context.Background(), &second)
	assertStatus(t, err, http.StatusConflict)

	var count int64
	db.Model(&models.Participant{}).Count(&count)
	if count != 1 {
		t.Errorf("expected 1 participant, got %d", count)
	}

	var participant models.Participant
	if err := db.Where("email = ?", "ann@example.com").First(&participant).Error; err != nil {
		t.Fatalf("failed to load participant: %v", err)
	}
	if participant.Name != "Ann" {
		t.Errorf("first participant must be untouched, got name %q", participant.Name)
	}
}

func TestHandleRegister_StoreFailures(t *testing.T) {
	t.Run("UniqueViolationIsConflict", func(t *testing.T) {
		db := setupTestDB(t)
		handler := NewParticipantHandler(db, nil, newTestAuth(db))

		// Occupy the identity token the registration below will mint,
		// so the insert itself trips a unique index after the email
		// pre-check has passed.
		squatter := models.Participant{
			Name:          "Squatter",
			Email:         "squatter@example.com",
			IdentityToken: credentials.MintToken("Ann", "ann@example.com"),
		}
		if err := db.Create(&squatter).Error; err != nil {
			t.Fatalf("failed to create squatter: %v", err)
		}

		req := RegisterRequest{}
		req.Body.Name = "Ann"
		req.Body.Email = "ann@example.com"
		req.Body.Password = "pw-for-ann-1"

		_, err := handler.HandleRegister(context.Background(), &req)
		assertStatus(t, err, http.StatusConflict)
	})

	t.Run("OtherStoreErrorsAreServerErrors", func(t *testing.T) {
		db := setupTestDB(t)
		handler := NewParticipantHandler(db, nil, newTestAuth(db))

		db.Exec(`CREATE TRIGGER participants_read_only BEFORE INSERT ON participants
			BEGIN SELECT RAISE(ABORT, 'storage offline'); END`)

		req := RegisterRequest{}
		req.Body.Name = "Ann"
		req.Body.Email = "ann@example.com"
		req.Body.Password = "pw-for-ann-1"

		_, err := handler.HandleRegister(context.Background(), &req)
		assertStatus(t, err, http.StatusInternalServerError)
	})
}

func TestHandleRegister_CredentialHandling(t *testing.T) {
	db := setupTestDB(t)
	handler := NewParticipantHandler(db, nil, newTestAuth(db))

	req := RegisterRequest{}
	req.Body.Name = "Ann"
	req.Body.Email = "ann@example.com"
	req.Body.Organization = "Example Corp"
	req.Body.Password = "cleartext-secret"

	if _, err := handler.HandleRegister(context.Background(), &req); err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	var participant models.Participant
	if err := db.Where("email = ?", "ann@example.com").First(&participant).Error; err != nil {
		t.Fatalf("failed to load participant: %v", err)
	}

	if participant.PasswordHash == "cleartext-secret" {
		t.Error("password stored in cleartext")
	}
	if !credentials.CheckPassword(participant.PasswordHash, "cleartext-secret") {
		t.Error("stored hash does not verify the original password")
	}
	if participant.IdentityToken != credentials.MintToken("Ann", "ann@example.com") {
		t.Error("identity token is not derived deterministically from name and email")
	}
}

func TestHandleRegister_MailFailureDoesNotFail(t *testing.T) {
	db := setupTestDB(t)
	mailer := &failingMailer{}
	handler := NewParticipantHandler(db, mailer, newTestAuth(db))

	req := RegisterRequest{}
	req.Body.Name = "Ann"
	req.Body.Email = "ann@example.com"
	req.Body.Password = "pw-for-ann-1"

	if _, err := handler.HandleRegister(context.Background(), &req); err != nil {
		t.Fatalf("a mail failure must not fail registration: %v", err)
	}

	var count int64
	db.Model(&models.Participant{}).Count(&count)
	if count != 1 {
		t.Errorf("expected participant row despite mail failure, got %d", count)
	}
}

type failingMailer struct{}

func (m *failingMailer) Send(to, subject, body string) error {
	return fmt.Errorf("smtp unreachable")
}

func TestHandleListParticipants(t *testing.T) {
	db := setupTestDB(t)
	authHandler := newTestAuth(db)
	handler := NewParticipantHandler(db, nil, authHandler)

	organizer := createTestParticipant(t, db, "Org", "org@example.com", true)
	attendee := createTestParticipant(t, db, "Ann", "ann@example.com", false)
	session := createTestSession(t, db, 10)
	db.Create(&models.SessionRegistration{ParticipantID: attendee.ID, SessionID: session.ID})

	t.Run("OrganizerSeesRegistrations", func(t *testing.T) {
		req := ListParticipantsRequest{AuthInput: authInputFor(t, authHandler, organizer.ID)}
		resp, err := handler.HandleList(context.Background(), &req)
		if err != nil {
			t.Fatalf("HandleList failed: %v", err)
		}
		if len(resp.Body.Participants) != 2 {
			t.Fatalf("expected 2 participants, got %d", len(resp.Body.Participants))
		}

		var annSummary *ParticipantSummary
		for i := range resp.Body.Participants {
			if resp.Body.Participants[i].Email == "ann@example.com" {
				annSummary = &resp.Body.Participants[i]
			}
		}
		if annSummary == nil {
			t.Fatal("attendee missing from listing")
		}
		if len(annSummary.RegisteredSessions) != 1 || annSummary.RegisteredSessions[0] != session.ID {
			t.Errorf("expected registered sessions [%d], got %v", session.ID, annSummary.RegisteredSessions)
		}
	})

	t.Run("AttendeeForbidden", func(t *testing.T) {
		req := ListParticipantsRequest{AuthInput: authInputFor(t, authHandler, attendee.ID)}
		_, err := handler.HandleList(context.Background(), &req)
		assertStatus(t, err, http.StatusForbidden)
	})
}

func TestHandleBadge(t *testing.T) {
	db := setupTestDB(t)
	authHandler := newTestAuth(db)
	handler := NewParticipantHandler(db, nil, authHandler)

	participant := createTestParticipant(t, db, "Ann", "ann@example.com", false)
	other := createTestParticipant(t, db, "Bob", "bob@example.com", false)

	badgeRequest := func(callerID, targetID uint) *httptest.ResponseRecorder {
		r := httptest.NewRequest("GET", fmt.Sprintf("/participants/%d/badge", targetID), nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", fmt.Sprint(targetID))
		ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
		ctx = context.WithValue(ctx, auth.ParticipantIDKey, callerID)
		w := httptest.NewRecorder()
		handler.HandleBadge(w, r.WithContext(ctx))
		return w
	}

	t.Run("OwnBadge", func(t *testing.T) {
		w := badgeRequest(participant.ID, participant.ID)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("expected image/png, got %s", ct)
		}
		if !bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")) {
			t.Error("response is not a PNG")
		}
	})

	t.Run("ForeignBadgeForbidden", func(t *testing.T) {
		w := badgeRequest(other.ID, participant.ID)
		if w.Code != http.StatusForbidden {
			t.Errorf("expected 403, got %d", w.Code)
		}
	})
}
