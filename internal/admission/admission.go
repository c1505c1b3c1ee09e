// Package admission enforces the one invariant that matters: a
// session never holds more check-ins than its capacity, no matter how
// many requests race for the last seat.
package admission

import (
	"errors"
	"time"

	"github.com/confops/conference-api/internal/database"
	"github.com/confops/conference-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrAlreadyAdmitted     = errors.New("participant already checked in to this session")
	ErrSessionFull         = errors.New("session is at capacity")
)

type Controller struct {
	db *gorm.DB
}

func NewController(db *gorm.DB) *Controller {
	return &Controller{db: db}
}

// CheckIn admits a participant to a session if a seat is free and the
// pair has not been admitted before. The capacity check and the ledger
// insert run as a single conditional statement inside one transaction,
// so two check-ins racing for the last seat cannot both land; the
// unique (participant, session) index closes the same race for repeat
// check-ins. On success the created record is returned.
func (c *Controller) CheckIn(participantID, sessionID uint) (*models.AdmissionRecord, error) {
	var participant models.Participant
	if err := c.db.First(&participant, participantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipantNotFound
		}
		return nil, err
	}

	var session models.Session
	if err := c.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	record := models.AdmissionRecord{
		ParticipantID: participantID,
		SessionID:     sessionID,
		CheckedInAt:   time.Now(),
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		var existing models.AdmissionRecord
		err := tx.Where("participant_id = ? AND session_id = ?", participantID, sessionID).
			First(&existing).Error
		if err == nil {
			return ErrAlreadyAdmitted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		res := tx.Exec(
			`INSERT INTO admission_records (participant_id, session_id, checked_in_at)
			 SELECT ?, ?, ?
			 WHERE (SELECT COUNT(*) FROM admission_records WHERE session_id = ?) < ?`,
			participantID, sessionID, record.CheckedInAt, sessionID, session.Capacity,
		)
		if res.Error != nil {
			if database.IsUniqueViolation(res.Error) {
				return ErrAlreadyAdmitted
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionFull
		}

		return tx.Where("participant_id = ? AND session_id = ?", participantID, sessionID).
			First(&record).Error
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// AdmittedCount derives the live check-in count for one session.
func (c *Controller) AdmittedCount(sessionID uint) (int64, error) {
	var count int64
	err := c.db.Model(&models.AdmissionRecord{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	return count, err
}

// CountsBySession returns admitted counts for all sessions that have
// at least one check-in.
func (c *Controller) CountsBySession() (map[uint]int64, error) {
	var rows []struct {
		SessionID uint
		Total     int64
	}
	err := c.db.Model(&models.AdmissionRecord{}).
		Select("session_id, count(*) as total").
		Group("session_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uint]int64, len(rows))
	for _, row := range rows {
		counts[row.SessionID] = row.Total
	}
	return counts, nil
}

// Ledger lists a session's admissions, newest first.
func (c *Controller) Ledger(sessionID uint) ([]models.AdmissionRecord, error) {
	var session models.Session
	if err := c.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	var records []models.AdmissionRecord
	err := c.db.Where("session_id = ?", sessionID).
		Order("checked_in_at desc").
		Find(&records).Error
	return records, err
}
