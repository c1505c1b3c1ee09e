package models

import (
	"time"
)

// SessionRegistration records a participant's intent to attend a
// session. One row per pair; the unique index gives the registered
// set idempotent-add semantics however often the same registration is
// submitted. Intent is unbounded, capacity applies at check-in only.
type SessionRegistration struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	ParticipantID uint      `json:"participant_id" gorm:"uniqueIndex:idx_registration_pair"`
	SessionID     uint      `json:"session_id" gorm:"uniqueIndex:idx_registration_pair"`
	CreatedAt     time.Time `json:"created_at"`
}
