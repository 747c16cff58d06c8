package core

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

type Direction string

const (
	DirectionEntry Direction = "entry"
	DirectionExit  Direction = "exit"
)

type DenialReason string

const (
	DenialNoReferencePhoto        DenialReason = "no_reference_photo"
	DenialNoActiveToken           DenialReason = "no_active_token"
	DenialInvalidToken            DenialReason = "invalid_token"
	DenialFaceMismatch            DenialReason = "face_mismatch"
	DenialVerificationUnavailable DenialReason = "verification_unavailable"
)

// AttemptRecord is the audit trail: one row per swipe, written before any
// validation runs. Rows are inserted tentatively unsuccessful and only ever
// updated once, either to flip Successful or to set the denial reason.
type AttemptRecord struct {
	ID           uint          `gorm:"primaryKey;autoIncrement" json:"id"`
	EmployeeId   uint          `gorm:"index;not null" json:"employeeId"`
	Timestamp    time.Time     `gorm:"index;not null" json:"timestamp"`
	Direction    Direction     `gorm:"size:8;not null" json:"direction"`
	Successful   bool          `gorm:"not null" json:"successful"`
	DenialReason *DenialReason `gorm:"size:32" json:"denialReason"`
}

func (AttemptRecord) TableName() string {
	return "attempt_records"
}

// LastSuccessfulEntry finds the most recent admitted entry for the employee,
// or nil if they have never successfully entered.
func LastSuccessfulEntry(db *gorm.DB, employeeID uint) (*AttemptRecord, error) {
	var rec AttemptRecord
	err := db.
		Where("employee_id = ? AND successful = ? AND direction = ?", employeeID, true, DirectionEntry).
		Order("timestamp DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
