package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/confops/conference-api/internal/config"
	"github.com/confops/conference-api/internal/credentials"
	"github.com/confops/conference-api/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const TokenDuration = 24 * time.Hour

type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// AuthInput carries the credentials huma operations authorize with:
// the session cookie or an API key header.
type AuthInput struct {
	Cookie string `header:"Cookie"`
	APIKey string `header:"X-API-KEY"`
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email" required:"true" doc:"Registered email address"`
		Password string `json:"password" required:"true"`
	}
}

type LoginResponse struct {
	SetCookie http.Cookie `header:"Set-Cookie"`
	Body      struct {
		ParticipantID uint   `json:"participant_id"`
		Name          string `json:"name"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	var participant models.Participant
	if err := h.db.Where("email = ?", input.Body.Email).First(&participant).Error; err != nil {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}

	if !credentials.CheckPassword(participant.PasswordHash, input.Body.Password) {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}

	token, err := h.GenerateToken(participant.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	res := &LoginResponse{
		SetCookie: http.Cookie{
			Name:     "auth_token",
			Value:    token,
			Expires:  time.Now().Add(TokenDuration),
			HttpOnly: true,
			Path:     "/",
		},
	}
	res.Body.ParticipantID = participant.ID
	res.Body.Name = participant.Name
	return res, nil
}

func (h *AuthHandler) GenerateToken(participantID uint) (string, error) {
	claims := jwt.MapClaims{
		"participant_id": participantID,
		"exp":            time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// Authorize resolves the calling participant from either an API key
// or the auth cookie.
func (h *AuthHandler) Authorize(ctx context.Context, input AuthInput) (uint, error) {
	if input.APIKey != "" {
		var keyModel models.APIKey
		if err := h.db.Where("key = ?", input.APIKey).First(&keyModel).Error; err == nil {
			if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
				return 0, huma.Error401Unauthorized("API key expired")
			}

			h.db.Model(&keyModel).Update("last_used_at", time.Now())

			return keyModel.ParticipantID, nil
		}
	}

	tokenString := cookieValue(input.Cookie, "auth_token")
	if tokenString == "" {
		return 0, huma.Error401Unauthorized("No token found")
	}

	participantID, _, err := h.parseToken(tokenString)
	if err != nil {
		return 0, huma.Error401Unauthorized("Invalid token")
	}
	return participantID, nil
}

// RequireOrganizer authorizes the caller and additionally checks the
// organizer flag. Catalog changes, the admission desk, and uploads go
// through this.
func (h *AuthHandler) RequireOrganizer(ctx context.Context, input AuthInput) (uint, error) {
	participantID, err := h.Authorize(ctx, input)
	if err != nil {
		return 0, err
	}

	var participant models.Participant
	if err := h.db.First(&participant, participantID).Error; err != nil {
		return 0, huma.Error401Unauthorized("Unknown participant")
	}
	if !participant.Organizer {
		return 0, huma.Error403Forbidden("Organizer access required")
	}
	return participantID, nil
}

// IsOrganizer reports whether the participant carries the organizer flag.
func (h *AuthHandler) IsOrganizer(participantID uint) bool {
	var participant models.Participant
	if err := h.db.First(&participant, participantID).Error; err != nil {
		return false
	}
	return participant.Organizer
}

func (h *AuthHandler) parseToken(tokenString string) (uint, time.Time, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, time.Time{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, time.Time{}, errors.New("invalid token claims")
	}

	idFloat, ok := claims["participant_id"].(float64)
	if !ok {
		return 0, time.Time{}, errors.New("invalid token claims")
	}

	var expiry time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiry = time.Unix(int64(exp), 0)
	}

	return uint(idFloat), expiry, nil
}

func cookieValue(header, name string) string {
	request := http.Request{Header: http.Header{"Cookie": []string{header}}}
	cookie, err := request.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
