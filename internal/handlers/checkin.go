package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/confops/conference-api/internal/admission"
	"github.com/confops/conference-api/internal/auth"
	"github.com/confops/conference-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type CheckinHandler struct {
	db          *gorm.DB
	controller  *admission.Controller
	authHandler *auth.AuthHandler
}

func NewCheckinHandler(db *gorm.DB, controller *admission.Controller, authHandler *auth.AuthHandler) *CheckinHandler {
	return &CheckinHandler{db: db, controller: controller, authHandler: authHandler}
}

type CheckInRequest struct {
	auth.AuthInput
	Body struct {
		ParticipantID uint   `json:"participant_id,omitempty" doc:"Participant to admit; omit when identity_token is given"`
		IdentityToken string `json:"identity_token,omitempty" doc:"QR token scanned at the door"`
		SessionID     uint   `json:"session_id" required:"true"`
	}
}

type CheckInResponse struct {
	Body struct {
		ParticipantID uint      `json:"participant_id"`
		SessionID     uint      `json:"session_id"`
		CheckedInAt   time.Time `json:"checked_in_at"`
	}
}

// HandleCheckIn is the admission desk operation. The capacity decision
// itself lives in the admission package; this handler resolves the
// participant (by ID or scanned token) and maps the outcome onto the
// API error taxonomy. "Already checked in" and "session full" are
// both conflicts but carry distinct details, so scanners can tell a
// repeat scan from a full room.
func (h *CheckinHandler) HandleCheckIn(ctx context.Context, input *CheckInRequest) (*CheckInResponse, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	participantID := input.Body.ParticipantID
	if input.Body.IdentityToken != "" {
		var participant models.Participant
		err := h.db.Where("identity_token = ?", input.Body.IdentityToken).First(&participant).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, huma.Error404NotFound("No participant matches this identity token")
			}
			return nil, huma.Error500InternalServerError("Database error")
		}
		participantID = participant.ID
	}
	if participantID == 0 {
		return nil, huma.Error422UnprocessableEntity("Either participant_id or identity_token is required")
	}

	record, err := h.controller.CheckIn(participantID, input.Body.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, admission.ErrParticipantNotFound), errors.Is(err, admission.ErrSessionNotFound):
			return nil, huma.Error404NotFound(err.Error())
		case errors.Is(err, admission.ErrAlreadyAdmitted):
			return nil, huma.Error409Conflict("Participant already checked in to this session")
		case errors.Is(err, admission.ErrSessionFull):
			return nil, huma.Error409Conflict("Session is at capacity")
		default:
			log.Printf("Check-in failed for participant %d, session %d: %v", participantID, input.Body.SessionID, err)
			return nil, huma.Error500InternalServerError("Failed to check in")
		}
	}

	res := &CheckInResponse{}
	res.Body.ParticipantID = record.ParticipantID
	res.Body.SessionID = record.SessionID
	res.Body.CheckedInAt = record.CheckedInAt
	return res, nil
}

type ListAdmissionsRequest struct {
	auth.AuthInput
	SessionID uint `path:"id"`
}

type ListAdmissionsResponse struct {
	Body struct {
		Admissions []models.AdmissionRecord `json:"admissions"`
		Count      int                      `json:"count"`
	}
}

func (h *CheckinHandler) HandleListAdmissions(ctx context.Context, input *ListAdmissionsRequest) (*ListAdmissionsResponse, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	records, err := h.controller.Ledger(input.SessionID)
	if err != nil {
		if errors.Is(err, admission.ErrSessionNotFound) {
			return nil, huma.Error404NotFound("Session not found")
		}
		return nil, huma.Error500InternalServerError("Failed to list admissions")
	}

	res := &ListAdmissionsResponse{}
	res.Body.Admissions = records
	res.Body.Count = len(records)
	return res, nil
}
