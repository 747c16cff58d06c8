package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"secureentry.com/secureentry/security"
)

// PhotoStore persists reference photos and forensic swipe snapshots.
type PhotoStore interface {
	Save(name string, data []byte) error
	Read(name string) ([]byte, error)
}

// FaceMatcher is the external face-comparison oracle. The engine only relies
// on the boolean contract; algorithm and tolerance semantics live elsewhere.
type FaceMatcher interface {
	Match(ctx context.Context, reference, probe []byte, tolerance float64) (bool, error)
}

// Notifier receives out-of-band alerts for consistency faults.
type Notifier interface {
	Error(message string) error
}

var ErrEmployeeNotFound = errors.New("employee not found")

// SwipeResult is the structured outcome of one terminal submission. A denial
// is a valid result, not an error; errors are reserved for validation and
// consistency faults.
type SwipeResult struct {
	Granted        bool          `json:"granted"`
	Direction      Direction     `json:"direction"`
	DenialReason   *DenialReason `json:"denialReason,omitempty"`
	IsPresent      bool          `json:"isPresent"`
	SessionMinutes *int          `json:"workTimeMinutes,omitempty"`
}

// GateEngine runs the verification pipeline for each swipe and is the single
// writer of presence, tokens and the attendance ledger.
type GateEngine struct {
	db        *gorm.DB
	tokens    *TokenAuthority
	photos    PhotoStore
	matcher   FaceMatcher
	tolerance float64
	notifier  Notifier
	locks     *personLocks
}

func NewGateEngine(db *gorm.DB, photos PhotoStore, matcher FaceMatcher, tolerance float64) *GateEngine {
	return &GateEngine{
		db:        db,
		tokens:    NewTokenAuthority(db),
		photos:    photos,
		matcher:   matcher,
		tolerance: tolerance,
		locks:     newPersonLocks(),
	}
}

// SetNotifier wires an optional ops channel for consistency faults.
func (e *GateEngine) SetNotifier(n Notifier) {
	e.notifier = n
}

// Swipe executes the pipeline for one submission:
//
//	infer direction → log attempt + snapshot → reference photo →
//	active token → token secret → face match → commit
//
// Every step past logging short-circuits to a denial; the attempt row and the
// snapshot are never rolled back. Presence and tokens are only touched on the
// commit step.
func (e *GateEngine) Swipe(ctx context.Context, employeeID uint, secret string, photo []byte) (*SwipeResult, error) {
	unlock := e.locks.lock(employeeID)
	defer unlock()

	emp, err := FindEmployeeByID(e.db, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}

	direction := DirectionEntry
	if emp.IsPresent {
		direction = DirectionExit
	}

	record := AttemptRecord{
		EmployeeId: employeeID,
		Timestamp:  time.Now(),
		Direction:  direction,
		Successful: false,
	}
	if err := e.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("log attempt: %w", err)
	}

	// Forensic snapshot, keyed to the attempt row. A photo store outage must
	// not block the audit trail, so the swipe continues in degraded form.
	snapshotName := fmt.Sprintf("%s_attempt_%d.png", direction, record.ID)
	if err := e.photos.Save(snapshotName, photo); err != nil {
		log.Printf("gate: snapshot %s not stored: %v", snapshotName, err)
	}

	if emp.PhotoName == nil {
		return e.deny(&record, emp, DenialNoReferencePhoto)
	}

	token, err := e.tokens.Active(employeeID)
	if err != nil {
		e.reportFault(employeeID, err)
		return nil, err
	}
	if token == nil {
		return e.deny(&record, emp, DenialNoActiveToken)
	}
	if !e.tokens.Validate(secret, token) {
		return e.deny(&record, emp, DenialInvalidToken)
	}

	reference, err := e.photos.Read(*emp.PhotoName)
	if err != nil {
		log.Printf("gate: reference photo %s unreadable: %v", *emp.PhotoName, err)
		return e.deny(&record, emp, DenialVerificationUnavailable)
	}

	match, err := e.matcher.Match(ctx, reference, photo, e.tolerance)
	if err != nil {
		log.Printf("gate: face match for employee %d failed: %v", employeeID, err)
		return e.deny(&record, emp, DenialVerificationUnavailable)
	}
	if !match {
		return e.deny(&record, emp, DenialFaceMismatch)
	}

	referenceName := fmt.Sprintf("user_%d.png", emp.EmployeeId)
	newPresence := !emp.IsPresent

	var session *WorkSession
	err = e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&AttemptRecord{}).Where("id = ?", record.ID).
			Update("successful", true).Error; err != nil {
			return err
		}
		if err := tx.Model(&Employee{}).Where("employee_id = ?", emp.EmployeeId).
			Updates(map[string]any{"is_present": newPresence, "photo_name": referenceName}).Error; err != nil {
			return err
		}
		if direction == DirectionExit {
			s, err := PairExit(tx, employeeID, &record)
			if err != nil {
				return err
			}
			session = s
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrUnpairedExit) {
			e.reportFault(employeeID, err)
		}
		return nil, fmt.Errorf("commit swipe: %w", err)
	}

	// The admitted probe becomes the new reference photo.
	if err := e.photos.Save(referenceName, photo); err != nil {
		log.Printf("gate: reference photo %s not refreshed: %v", referenceName, err)
	}

	result := &SwipeResult{
		Granted:   true,
		Direction: direction,
		IsPresent: newPresence,
	}
	if session != nil {
		minutes := session.DurationMinutes
		result.SessionMinutes = &minutes
	}
	return result, nil
}

func (e *GateEngine) deny(record *AttemptRecord, emp *Employee, reason DenialReason) (*SwipeResult, error) {
	if err := e.db.Model(&AttemptRecord{}).Where("id = ?", record.ID).
		Update("denial_reason", reason).Error; err != nil {
		return nil, fmt.Errorf("record denial: %w", err)
	}

	return &SwipeResult{
		Granted:      false,
		Direction:    record.Direction,
		DenialReason: &reason,
		IsPresent:    emp.IsPresent,
	}, nil
}

// IssueCredential issues a fresh token under the employee's lock and returns
// the encoded QR payload. The plaintext secret is not retrievable afterwards.
func (e *GateEngine) IssueCredential(employeeID uint) (string, error) {
	unlock := e.locks.lock(employeeID)
	defer unlock()

	emp, err := FindEmployeeByID(e.db, employeeID)
	if err != nil {
		return "", err
	}
	if emp == nil {
		return "", ErrEmployeeNotFound
	}

	_, secret, err := e.tokens.Issue(employeeID)
	if err != nil {
		return "", err
	}
	return security.EncodeCredential(employeeID, secret), nil
}

// RevokeCredential revokes the employee's active token, if any.
func (e *GateEngine) RevokeCredential(employeeID uint) error {
	unlock := e.locks.lock(employeeID)
	defer unlock()

	emp, err := FindEmployeeByID(e.db, employeeID)
	if err != nil {
		return err
	}
	if emp == nil {
		return ErrEmployeeNotFound
	}
	return e.tokens.Revoke(employeeID)
}

// Tokens exposes the authority for read paths (admin listings, tests).
func (e *GateEngine) Tokens() *TokenAuthority {
	return e.tokens
}

func (e *GateEngine) reportFault(employeeID uint, fault error) {
	log.Printf("gate: consistency fault for employee %d: %v", employeeID, fault)
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Error(fmt.Sprintf("gate consistency fault for employee %d: %v", employeeID, fault)); err != nil {
		log.Printf("gate: fault notification failed: %v", err)
	}
}
