package core

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueRevokesPreviousToken(t *testing.T) {
	db := newTestDB(t)
	ta := NewTokenAuthority(db)

	emp := seedEmployee(t, db, newMemPhotoStore(), "tokens@example.com", false)

	// any sequence of issuances leaves exactly one active token
	for i := 1; i <= 5; i++ {
		token, secret, err := ta.Issue(emp.EmployeeId)
		require.NoError(t, err)
		require.NotEmpty(t, secret)
		assert.False(t, token.Revoked)

		active, err := ta.Active(emp.EmployeeId)
		require.NoError(t, err)
		require.NotNil(t, active)
		assert.Equal(t, token.TokenId, active.TokenId)

		var total, revoked int64
		require.NoError(t, db.Model(&AccessToken{}).Where("employee_id = ?", emp.EmployeeId).Count(&total).Error)
		require.NoError(t, db.Model(&AccessToken{}).
			Where("employee_id = ? AND revoked = ?", emp.EmployeeId, true).Count(&revoked).Error)
		assert.Equal(t, int64(i), total, "tokens are never deleted")
		assert.Equal(t, int64(i-1), revoked)
	}
}

func TestActiveExcludesExpiredAndRevoked(t *testing.T) {
	db := newTestDB(t)
	ta := NewTokenAuthority(db)
	emp := seedEmployee(t, db, newMemPhotoStore(), "expiry@example.com", false)

	token, _, err := ta.Issue(emp.EmployeeId)
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		require.NoError(t, db.Model(&AccessToken{}).Where("token_id = ?", token.TokenId).
			Update("expires_at", time.Now().Add(-24*time.Hour)).Error)

		active, err := ta.Active(emp.EmployeeId)
		require.NoError(t, err)
		assert.Nil(t, active)
	})

	t.Run("revoked", func(t *testing.T) {
		token2, _, err := ta.Issue(emp.EmployeeId)
		require.NoError(t, err)

		require.NoError(t, ta.Revoke(emp.EmployeeId))
		active, err := ta.Active(emp.EmployeeId)
		require.NoError(t, err)
		assert.Nil(t, active)

		var stored AccessToken
		require.NoError(t, db.First(&stored, "token_id = ?", token2.TokenId).Error)
		assert.True(t, stored.Revoked)
	})
}

func TestRevokeWithoutActiveTokenIsNoop(t *testing.T) {
	db := newTestDB(t)
	ta := NewTokenAuthority(db)
	emp := seedEmployee(t, db, newMemPhotoStore(), "noop@example.com", false)

	require.NoError(t, ta.Revoke(emp.EmployeeId))
}

func TestValidateSecret(t *testing.T) {
	db := newTestDB(t)
	ta := NewTokenAuthority(db)
	emp := seedEmployee(t, db, newMemPhotoStore(), "validate@example.com", false)

	token, secret, err := ta.Issue(emp.EmployeeId)
	require.NoError(t, err)

	assert.True(t, ta.Validate(secret, token))

	// flipping a single byte must fail
	tampered := []byte(secret)
	if tampered[0] == 'a' {
		tampered[0] = 'b'
	} else {
		tampered[0] = 'a'
	}
	assert.False(t, ta.Validate(string(tampered), token))
	assert.False(t, ta.Validate("", token))
}

func TestActiveConflictIsFatal(t *testing.T) {
	db := newTestDB(t)
	ta := NewTokenAuthority(db)
	emp := seedEmployee(t, db, newMemPhotoStore(), "conflict@example.com", false)

	// bypass Issue to build the structurally impossible state
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&AccessToken{
			TokenId:      uuid.New().String(),
			EmployeeId:   emp.EmployeeId,
			SecretDigest: "deadbeef",
			ExpiresAt:    time.Now().Add(time.Hour),
		}).Error)
	}

	active, err := ta.Active(emp.EmployeeId)
	assert.Nil(t, active)
	assert.ErrorIs(t, err, ErrTokenConflict)
}
