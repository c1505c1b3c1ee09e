package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/confops/conference-api/internal/admission"
	"github.com/confops/conference-api/internal/auth"
	"github.com/confops/conference-api/internal/models"
	"github.com/confops/conference-api/internal/notifier"
	"github.com/danielgtaylor/huma/v2"
	"gorm.io/gorm"
)

type CatalogHandler struct {
	db          *gorm.DB
	controller  *admission.Controller
	announcer   notifier.Announcer
	authHandler *auth.AuthHandler
}

func NewCatalogHandler(db *gorm.DB, controller *admission.Controller, announcer notifier.Announcer, authHandler *auth.AuthHandler) *CatalogHandler {
	return &CatalogHandler{db: db, controller: controller, announcer: announcer, authHandler: authHandler}
}

type SessionBody struct {
	TrackID  uint      `json:"track_id" required:"true"`
	Title    string    `json:"title" required:"true"`
	Speaker  string    `json:"speaker"`
	StartsAt time.Time `json:"starts_at"`
	Venue    string    `json:"venue"`
	Capacity int       `json:"capacity" required:"true" doc:"Maximum number of check-ins"`
}

type CreateTrackRequest struct {
	auth.AuthInput
	Body struct {
		Title       string `json:"title" required:"true"`
		Description string `json:"description"`
	}
}

type TrackResponse struct {
	Body struct {
		ID          uint   `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
}

func (h *CatalogHandler) HandleCreateTrack(ctx context.Context, input *CreateTrackRequest) (*TrackResponse, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	track := models.Track{
		Title:       input.Body.Title,
		Description: input.Body.Description,
	}
	if err := h.db.Create(&track).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create track")
	}

	return trackResponse(track), nil
}

type UpdateTrackRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Title       string `json:"title" required:"true"`
		Description string `json:"description"`
	}
}

func (h *CatalogHandler) HandleUpdateTrack(ctx context.Context, input *UpdateTrackRequest) (*TrackResponse, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var track models.Track
	if err := h.db.First(&track, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Track not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	track.Title = input.Body.Title
	track.Description = input.Body.Description
	if err := h.db.Save(&track).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update track")
	}

	return trackResponse(track), nil
}

type DeleteTrackRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// HandleDeleteTrack removes a track, its sessions, and everything the
// sessions own. Ledger and registration rows go first, while the
// session subquery still sees the rows.
func (h *CatalogHandler) HandleDeleteTrack(ctx context.Context, input *DeleteTrackRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var track models.Track
	if err := h.db.First(&track, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Track not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		sessionIDs := tx.Model(&models.Session{}).Select("id").Where("track_id = ?", track.ID)

		if err := tx.Where("session_id IN (?)", sessionIDs).Delete(&models.AdmissionRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id IN (?)", sessionIDs).Delete(&models.SessionRegistration{}).Error; err != nil {
			return err
		}
		if err := tx.Where("track_id = ?", track.ID).Delete(&models.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&track).Error
	})
	if err != nil {
		log.Printf("Failed to delete track %d: %v", track.ID, err)
		return nil, huma.Error500InternalServerError("Failed to delete track")
	}

	return nil, nil
}

type CreateSessionRequest struct {
	auth.AuthInput
	Body SessionBody
}

type SessionResponse struct {
	Body struct {
		ID uint `json:"id"`
		models.SessionFields
		TrackID uint `json:"track_id"`
	}
}

func (h *CatalogHandler) HandleCreateSession(ctx context.Context, input *CreateSessionRequest) (*SessionResponse, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	if input.Body.Capacity < 1 {
		return nil, huma.Error422UnprocessableEntity("Capacity must be a positive integer")
	}

	var track models.Track
	if err := h.db.First(&track, input.Body.TrackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Track not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	session := models.Session{
		TrackID: track.ID,
		SessionFields: models.SessionFields{
			Title:    input.Body.Title,
			Speaker:  input.Body.Speaker,
			StartsAt: input.Body.StartsAt,
			Venue:    input.Body.Venue,
			Capacity: input.Body.Capacity,
		},
	}
	if err := h.db.Create(&session).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create session")
	}

	h.announce("added to the schedule", session)
	return sessionResponse(session), nil
}

type UpdateSessionRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body SessionBody
}

func (h *CatalogHandler) HandleUpdateSession(ctx context.Context, input *UpdateSessionRequest) (*SessionResponse, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	if input.Body.Capacity < 1 {
		return nil, huma.Error422UnprocessableEntity("Capacity must be a positive integer")
	}

	var session models.Session
	if err := h.db.First(&session, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Session not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	// Capacity can never drop below the ledger; admitted counts must
	// stay within capacity at all times.
	admitted, err := h.controller.AdmittedCount(session.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to read admission count")
	}
	if int64(input.Body.Capacity) < admitted {
		return nil, huma.Error409Conflict("Capacity cannot drop below the number of participants already checked in")
	}

	if input.Body.TrackID != session.TrackID {
		var track models.Track
		if err := h.db.First(&track, input.Body.TrackID).Error; err != nil {
			return nil, huma.Error404NotFound("Track not found")
		}
		session.TrackID = track.ID
	}

	session.SessionFields = models.SessionFields{
		Title:    input.Body.Title,
		Speaker:  input.Body.Speaker,
		StartsAt: input.Body.StartsAt,
		Venue:    input.Body.Venue,
		Capacity: input.Body.Capacity,
	}
	if err := h.db.Save(&session).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update session")
	}

	h.announce("updated", session)
	return sessionResponse(session), nil
}

type DeleteSessionRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *CatalogHandler) HandleDeleteSession(ctx context.Context, input *DeleteSessionRequest) (*struct{}, error) {
	if _, err := h.authHandler.RequireOrganizer(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	var session models.Session
	if err := h.db.First(&session, input.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, huma.Error404NotFound("Session not found")
		}
		return nil, huma.Error500InternalServerError("Database error")
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", session.ID).Delete(&models.AdmissionRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", session.ID).Delete(&models.SessionRegistration{}).Error; err != nil {
			return err
		}
		return tx.Delete(&session).Error
	})
	if err != nil {
		log.Printf("Failed to delete session %d: %v", session.ID, err)
		return nil, huma.Error500InternalServerError("Failed to delete session")
	}

	h.announce("cancelled", session)
	return nil, nil
}

type ScheduleResponse struct {
	Body struct {
		Tracks []ScheduleTrack `json:"tracks"`
	}
}

type ScheduleTrack struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Sessions    []ScheduleSession `json:"sessions"`
}

type ScheduleSession struct {
	ID       uint      `json:"id"`
	Title    string    `json:"title"`
	Speaker  string    `json:"speaker"`
	StartsAt time.Time `json:"starts_at"`
	Venue    string    `json:"venue"`
	Capacity int       `json:"capacity"`
	Admitted int64     `json:"admitted"`
}

func (h *CatalogHandler) HandleSchedule(ctx context.Context, input *struct{}) (*ScheduleResponse, error) {
	var tracks []models.Track
	if err := h.db.Preload("Sessions").Order("id").Find(&tracks).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to load schedule")
	}

	counts, err := h.controller.CountsBySession()
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to load admission counts")
	}

	res := &ScheduleResponse{}
	for _, track := range tracks {
		entry := ScheduleTrack{
			ID:          track.ID,
			Title:       track.Title,
			Description: track.Description,
		}
		for _, session := range track.Sessions {
			entry.Sessions = append(entry.Sessions, ScheduleSession{
				ID:       session.ID,
				Title:    session.Title,
				Speaker:  session.Speaker,
				StartsAt: session.StartsAt,
				Venue:    session.Venue,
				Capacity: session.Capacity,
				Admitted: counts[session.ID],
			})
		}
		res.Body.Tracks = append(res.Body.Tracks, entry)
	}
	return res, nil
}

func (h *CatalogHandler) announce(action string, session models.Session) {
	if h.announcer == nil {
		return
	}
	go func() {
		if err := h.announcer.AnnounceSession(action, session); err != nil {
			log.Printf("Failed to announce session %d: %v", session.ID, err)
		}
	}()
}

func trackResponse(track models.Track) *TrackResponse {
	res := &TrackResponse{}
	res.Body.ID = track.ID
	res.Body.Title = track.Title
	res.Body.Description = track.Description
	return res
}

func sessionResponse(session models.Session) *SessionResponse {
	res := &SessionResponse{}
	res.Body.ID = session.ID
	res.Body.SessionFields = session.SessionFields
	res.Body.TrackID = session.TrackID
	return res
}
