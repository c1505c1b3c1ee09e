package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/confops/conference-api/internal/admission"
	"github.com/confops/conference-api/internal/auth"
	"github.com/confops/conference-api/internal/config"
	"github.com/confops/conference-api/internal/database"
	"github.com/confops/conference-api/internal/handlers"
	"github.com/confops/conference-api/internal/notifier"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	// Initialize Notifiers
	var mailer notifier.Mailer
	if cfg.MailEnabled {
		m, err := notifier.NewSESMailer(cfg.AWSRegion, cfg.MailFrom)
		if err != nil {
			log.Printf("Mailer not initialized: %v", err)
		} else {
			mailer = m
		}
	}

	var announcer notifier.Announcer
	if a, err := notifier.NewDiscordAnnouncer(cfg.DiscordBotToken, cfg.DiscordAnnounceChannelID); err != nil {
		log.Printf("Discord announcer not initialized: %v", err)
	} else {
		announcer = a
	}

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	controller := admission.NewController(db)
	participantHandler := handlers.NewParticipantHandler(db, mailer, authHandler)
	catalogHandler := handlers.NewCatalogHandler(db, controller, announcer, authHandler)
	registrationHandler := handlers.NewRegistrationHandler(db, authHandler)
	checkinHandler := handlers.NewCheckinHandler(db, controller, authHandler)
	proceedingsHandler := handlers.NewProceedingsHandler(db, cfg, authHandler)
	apiKeyHandler := handlers.NewAPIKeyHandler(db, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, participantHandler, catalogHandler,
		registrationHandler, checkinHandler, proceedingsHandler, apiKeyHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
