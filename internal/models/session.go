package models

import (
	"time"

	"gorm.io/gorm"
)

type SessionFields struct {
	Title    string    `json:"title"`
	Speaker  string    `json:"speaker"`
	StartsAt time.Time `json:"starts_at"`
	Venue    string    `json:"venue"`
	Capacity int       `json:"capacity"`
}

// Session belongs to a Track. Capacity bounds the admission ledger,
// not the registration list; the admitted count is always derived by
// counting AdmissionRecords.
type Session struct {
	gorm.Model
	TrackID       uint `json:"track_id"`
	SessionFields `gorm:"embedded"`
}
