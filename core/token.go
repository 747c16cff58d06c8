package core

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"secureentry.com/secureentry/security"
)

// TokenValidity is how long an issued credential stays usable.
const TokenValidity = 28 * 24 * time.Hour

// ErrTokenConflict means the store holds more than one active token for one
// employee. That state is structurally impossible while issuance goes through
// Issue, so it is surfaced as a fatal consistency fault instead of silently
// picking a winner.
var ErrTokenConflict = errors.New("more than one active token for employee")

// AccessToken is the stored half of an issued credential. Rows are only ever
// mutated to flip Revoked and are never deleted.
type AccessToken struct {
	TokenId      string    `gorm:"primaryKey;size:36"`
	EmployeeId   uint      `gorm:"index;not null"`
	SecretDigest string    `gorm:"size:64;not null"`
	ExpiresAt    time.Time `gorm:"not null"`
	Revoked      bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
}

func (AccessToken) TableName() string {
	return "access_tokens"
}

// TokenAuthority issues and revokes per-employee credentials.
type TokenAuthority struct {
	db *gorm.DB
}

func NewTokenAuthority(db *gorm.DB) *TokenAuthority {
	return &TokenAuthority{db: db}
}

// Issue creates a fresh token for the employee and returns the plaintext
// secret exactly once. Any previously active token is revoked in the same
// transaction as the insert, so two tokens can never be active together even
// under concurrent issuance.
func (ta *TokenAuthority) Issue(employeeID uint) (*AccessToken, string, error) {
	secret, err := security.NewSecret()
	if err != nil {
		return nil, "", err
	}

	token := &AccessToken{
		TokenId:      uuid.New().String(),
		EmployeeId:   employeeID,
		SecretDigest: security.DigestSecret(secret),
		ExpiresAt:    time.Now().Add(TokenValidity),
	}

	err = ta.db.Transaction(func(tx *gorm.DB) error {
		if err := revokeActive(tx, employeeID); err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		return nil, "", err
	}
	return token, secret, nil
}

// Revoke marks the currently active token revoked. No-op when none is active.
func (ta *TokenAuthority) Revoke(employeeID uint) error {
	return revokeActive(ta.db, employeeID)
}

func revokeActive(db *gorm.DB, employeeID uint) error {
	return db.Model(&AccessToken{}).
		Where("employee_id = ? AND revoked = ?", employeeID, false).
		Update("revoked", true).Error
}

// Active returns the employee's non-revoked, non-expired token, or nil when
// there is none.
func (ta *TokenAuthority) Active(employeeID uint) (*AccessToken, error) {
	var tokens []AccessToken
	err := ta.db.
		Where("employee_id = ? AND revoked = ? AND expires_at > ?", employeeID, false, time.Now()).
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}

	switch len(tokens) {
	case 0:
		return nil, nil
	case 1:
		return &tokens[0], nil
	}
	return nil, ErrTokenConflict
}

// Validate checks a presented secret against the stored digest.
func (ta *TokenAuthority) Validate(secret string, token *AccessToken) bool {
	return security.VerifySecret(secret, token.SecretDigest)
}
