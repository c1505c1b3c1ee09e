package models

import (
	"time"
)

// AdmissionRecord is one successful check-in. The composite unique
// index backs both the repeat-check-in rejection and the capacity
// guard in the admission package. No soft delete here: cascades remove
// rows for real, and counting must only ever see live admissions.
type AdmissionRecord struct {
	ID            uint      `json:"id" gorm:"primarykey"`
	ParticipantID uint      `json:"participant_id" gorm:"uniqueIndex:idx_admission_pair"`
	SessionID     uint      `json:"session_id" gorm:"uniqueIndex:idx_admission_pair"`
	CheckedInAt   time.Time `json:"checked_in_at"`
}
