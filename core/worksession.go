package core

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// WorkSession is the derived record of one complete entry→exit span.
// Immutable after creation.
type WorkSession struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeId      uint      `gorm:"index;not null" json:"employeeId"`
	SessionDate     time.Time `gorm:"type:date;not null" json:"sessionDate"`
	EntryTime       time.Time `gorm:"index;not null" json:"entryTime"`
	ExitTime        time.Time `gorm:"not null" json:"exitTime"`
	DurationMinutes int       `gorm:"not null" json:"durationMinutes"`
}

func (WorkSession) TableName() string {
	return "work_sessions"
}

func NewWorkSession(employeeID uint, entry, exit time.Time) WorkSession {
	return WorkSession{
		EmployeeId:      employeeID,
		SessionDate:     time.Date(entry.Year(), entry.Month(), entry.Day(), 0, 0, 0, 0, entry.Location()),
		EntryTime:       entry,
		ExitTime:        exit,
		DurationMinutes: int(exit.Sub(entry).Seconds()) / 60,
	}
}

// ErrUnpairedExit means an exit reached the commit step with no successful
// entry to pair against. Presence only flips through the gate engine, so the
// entry must exist; its absence is a consistency fault, not a data gap.
var ErrUnpairedExit = errors.New("exit has no prior successful entry to pair")

// PairExit derives a WorkSession for a successful exit by pairing it with the
// most recent successful entry. A missing entry aborts the commit, so a stale
// or tampered presence flag can never mint an unpaired exit.
func PairExit(tx *gorm.DB, employeeID uint, exit *AttemptRecord) (*WorkSession, error) {
	entry, err := LastSuccessfulEntry(tx, employeeID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrUnpairedExit
	}

	session := NewWorkSession(employeeID, entry.Timestamp, exit.Timestamp)
	if err := tx.Create(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}
