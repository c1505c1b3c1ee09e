package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey lets organizer tooling (door scanners, upload scripts) call
// the API without a browser session.
type APIKey struct {
	gorm.Model
	ParticipantID uint        `json:"participant_id"`
	Participant   Participant `json:"-"`
	Key           string      `json:"key" gorm:"uniqueIndex"`
	Name          string      `json:"name"`
	ExpiresAt     *time.Time  `json:"expires_at"`
	LastUsedAt    *time.Time  `json:"last_used_at"`
}
