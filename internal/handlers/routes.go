package handlers

import (
	"net/http"

	"github.com/confops/conference-api/internal/auth"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func RegisterRoutes(
	r *chi.Mux,
	authHandler *auth.AuthHandler,
	participantHandler *ParticipantHandler,
	catalogHandler *CatalogHandler,
	registrationHandler *RegistrationHandler,
	checkinHandler *CheckinHandler,
	proceedingsHandler *ProceedingsHandler,
	apiKeyHandler *APIKeyHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Initialize Huma API
	config := huma.DefaultConfig("Conference Operations API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	secured := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}, {"apiKeyAuth": {}}}
	}

	// Public routes
	huma.Post(api, "/participants", participantHandler.HandleRegister)
	huma.Post(api, "/login", authHandler.HandleLogin)
	huma.Get(api, "/schedule", catalogHandler.HandleSchedule)
	huma.Get(api, "/proceedings", proceedingsHandler.HandleList)

	// Protected routes
	huma.Get(api, "/participants", participantHandler.HandleList, secured)
	huma.Post(api, "/tracks", catalogHandler.HandleCreateTrack, secured)
	huma.Put(api, "/tracks/{id}", catalogHandler.HandleUpdateTrack, secured)
	huma.Delete(api, "/tracks/{id}", catalogHandler.HandleDeleteTrack, secured)
	huma.Post(api, "/sessions", catalogHandler.HandleCreateSession, secured)
	huma.Put(api, "/sessions/{id}", catalogHandler.HandleUpdateSession, secured)
	huma.Delete(api, "/sessions/{id}", catalogHandler.HandleDeleteSession, secured)
	huma.Post(api, "/registrations", registrationHandler.HandleRegisterForSession, secured)
	huma.Get(api, "/me/registrations", registrationHandler.HandleMyRegistrations, secured)
	huma.Post(api, "/checkin", checkinHandler.HandleCheckIn, secured)
	huma.Get(api, "/sessions/{id}/admissions", checkinHandler.HandleListAdmissions, secured)
	huma.Post(api, "/keys", apiKeyHandler.HandleCreate, secured)
	huma.Get(api, "/keys", apiKeyHandler.HandleList, secured)
	huma.Delete(api, "/keys/{id}", apiKeyHandler.HandleDelete, secured)

	// Binary responses stay on plain chi handlers
	r.Group(func(r chi.Router) {
		r.Use(authHandler.AuthMiddleware)
		r.Get("/participants/{id}/badge", participantHandler.HandleBadge)
		r.Post("/proceedings", proceedingsHandler.HandleUpload)
		r.Get("/proceedings/{id}/file", proceedingsHandler.HandleDownload)
	})
}
