package handlers

import (
	"context"
	"errors"

	"github.com/confops/conference-api/internal/auth"
	"github.com/confops/conference-api/internal/database"
	"github.com/confops/conference-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type RegistrationHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewRegistrationHandler(db *gorm.DB, authHandler *auth.AuthHandler) *RegistrationHandler {
	return &RegistrationHandler{db: db, authHandler: authHandler}
}

type RegisterForSessionRequest struct {
	auth.AuthInput
	Body struct {
		SessionID uint `json:"session_id" required:"true" doc:"Session the participant plans to attend"`
	}
}

type RegisterForSessionResponse struct {
	Body struct {
		SessionIDs []uint `json:"session_ids" doc:"All sessions the participant is registered for"`
	}
}

// HandleRegisterForSession adds a session to the caller's registered
// set. Registering twice is a no-op, not an error, and intent never
// consumes capacity; seats are only claimed at check-in.
func (h *RegistrationHandler) HandleRegisterForSession(ctx context.Context, input *RegisterForSessionRequest) (*RegisterForSessionResponse, error) {
	participantID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := h.db.First(&session, input.Body.SessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Session not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	registration := models.SessionRegistration{ParticipantID: participantID, SessionID: session.ID}
	err = h.db.Where(models.SessionRegistration{ParticipantID: participantID, SessionID: session.ID}).
		FirstOrCreate(&registration).Error
	// A unique violation means a concurrent call won the insert; both
	// agree on the end state, so it is not an error.
	if err != nil && !database.IsUniqueViolation(err) {
		return nil, huma.Error500InternalServerError("Failed to record registration")
	}

	ids, err := h.registeredSessionIDs(participantID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read registrations")
	}

	res := &RegisterForSessionResponse{}
	res.Body.SessionIDs = ids
	return res, nil
}

type MyRegistrationsRequest struct {
	auth.AuthInput
}

type MyRegistrationsResponse struct {
	Body struct {
		SessionIDs []uint `json:"session_ids"`
	}
}

func (h *RegistrationHandler) HandleMyRegistrations(ctx context.Context, input *MyRegistrationsRequest) (*MyRegistrationsResponse, error) {
	participantID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	ids, err := h.registeredSessionIDs(participantID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read registrations")
	}

	res := &MyRegistrationsResponse{}
	res.Body.SessionIDs = ids
	return res, nil
}

func (h *RegistrationHandler) registeredSessionIDs(participantID uint) ([]uint, error) {
	var ids []uint
	err := h.db.Model(&models.SessionRegistration{}).
		Where("participant_id = ?", participantID).
		Order("session_id").
		Pluck("session_id", &ids).Error
	return ids, err
}
