package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/confops/conference-api/internal/auth"
	"github.com/confops/conference-api/internal/credentials"
	"github.com/confops/conference-api/internal/database"
	"github.com/confops/conference-api/internal/models"
	"github.com/confops/conference-api/internal/notifier"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type ParticipantHandler struct {
	db          *gorm.DB
	mailer      notifier.Mailer
	authHandler *auth.AuthHandler
}

func NewParticipantHandler(db *gorm.DB, mailer notifier.Mailer, authHandler *auth.AuthHandler) *ParticipantHandler {
	return &ParticipantHandler{db: db, mailer: mailer, authHandler: authHandler}
}

type RegisterRequest struct {
	Body struct {
		Name         string `json:"name" required:"true" doc:"Full name"`
		Email        string `json:"email" required:"true" format:"email"`
		Organization string `json:"organization" doc:"Affiliation printed on the badge"`
		Password     string `json:"password" required:"true" minLength:"8"`
	}
}

type RegisterResponse struct {
	Body struct {
		ID            uint   `json:"id"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		IdentityToken string `json:"identity_token" doc:"QR payload presented at check-in"`
	}
}

func (h *ParticipantHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*RegisterResponse, error) {
	var existing models.Participant
	err := h.db.Where("email = ?", input.Body.Email).First(&existing).Error
	if err == nil {
		return nil, huma.Error409Conflict("A participant with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Failed to look up participant by email: %v", err)
		return nil, huma.Error500InternalServerError("Database error")
	}

	hash, err := credentials.HashPassword(input.Body.Password)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	participant := models.Participant{
		Name:          input.Body.Name,
		Email:         input.Body.Email,
		Organization:  input.Body.Organization,
		PasswordHash:  hash,
		IdentityToken: credentials.MintToken(input.Body.Name, input.Body.Email),
	}

	if err := h.db.Create(&participant).Error; err != nil {
		// The unique email index closes the lookup/insert race
		if database.IsUniqueViolation(err) {
			return nil, huma.Error409Conflict("A participant with this email already exists")
		}
		log.Printf("Failed to create participant: %v", err)
		return nil, huma.Error500InternalServerError("Failed to store participant")
	}

	// Best effort: a flaky mail dependency must never roll back the
	// participant row.
	if h.mailer != nil {
		go func(p models.Participant) {
			if err := h.mailer.Send(p.Email, "Your conference registration", notifier.WelcomeBody(p)); err != nil {
				log.Printf("Failed to send welcome mail to %s: %v", p.Email, err)
			}
		}(participant)
	}

	res := &RegisterResponse{}
	res.Body.ID = participant.ID
	res.Body.Name = participant.Name
	res.Body.Email = participant.Email
	res.Body.IdentityToken = participant.IdentityToken
	return res, nil
}

type ListParticipantsRequest struct {
	auth.AuthInput
}

type ParticipantSummary struct {
	ID                 uint   `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Organization       string `json:"organization"`
	RegisteredSessions []uint `json:"registered_sessions"`
}

type ListParticipantsResponse struct {
	Body struct {
		Participants []ParticipantSummary `json:"participants"`
	}
}

func (h *ParticipantHandler) HandleList(ctx context.Context, input *ListParticipantsRequest) (*ListParticipantsResponse, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var participants []models.Participant
	if err := h.db.Order("id").Find(&participants).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list participants")
	}

	var registrations []models.SessionRegistration
	if err := h.db.Order("session_id").Find(&registrations).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list registrations")
	}

	sessionsByParticipant := make(map[uint][]uint)
	for _, reg := range registrations {
		sessionsByParticipant[reg.ParticipantID] = append(sessionsByParticipant[reg.ParticipantID], reg.SessionID)
	}

	res := &ListParticipantsResponse{}
	for _, p := range participants {
		res.Body.Participants = append(res.Body.Participants, ParticipantSummary{
			ID:                 p.ID,
			Name:               p.Name,
			Email:              p.Email,
			Organization:       p.Organization,
			RegisteredSessions: sessionsByParticipant[p.ID],
		})
	}
	return res, nil
}

// HandleBadge serves the participant's identity token as a QR PNG.
// Plain chi handler: huma operations are JSON-only.
func (h *ParticipantHandler) HandleBadge(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(auth.ParticipantIDKey).(uint)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid participant ID", http.StatusBadRequest)
		return
	}

	if callerID != uint(id) && !h.authHandler.IsOrganizer(callerID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var participant models.Participant
	if err := h.db.First(&participant, uint(id)).Error; err != nil {
		http.Error(w, "Participant not found", http.StatusNotFound)
		return
	}

	png, err := credentials.BadgePNG(participant.IdentityToken, 256)
	if err != nil {
		log.Printf("Failed to render badge for participant %d: %v", participant.ID, err)
		http.Error(w, "Failed to render badge", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}
