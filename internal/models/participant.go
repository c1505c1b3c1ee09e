package models

import (
	"gorm.io/gorm"
)

// Participant is a registered conference attendee. PasswordHash and
// IdentityToken never appear in JSON responses; the token is handed
// out once through the welcome mail and the badge endpoint.
type Participant struct {
	gorm.Model
	Name          string `json:"name"`
	Email         string `json:"email" gorm:"uniqueIndex"`
	Organization  string `json:"organization"`
	PasswordHash  string `json:"-"`
	IdentityToken string `json:"-" gorm:"uniqueIndex"`
	Organizer     bool   `json:"organizer"`
}
