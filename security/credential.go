package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// A credential is what the terminal scans out of the QR code:
// base64("<employeeID>:<secret>"). The secret is random and only its sha-256
// digest is ever stored, so the encoded form exists exactly once, at issuance.

const secretBytes = 32

var ErrMalformedCredential = errors.New("malformed credential payload")

func NewSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func DigestSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// VerifySecret digests the presented secret and compares it against the
// stored digest in constant time.
func VerifySecret(secret, storedDigest string) bool {
	digest := DigestSecret(secret)
	return subtle.ConstantTimeCompare([]byte(digest), []byte(storedDigest)) == 1
}

func EncodeCredential(employeeID uint, secret string) string {
	payload := fmt.Sprintf("%d:%s", employeeID, secret)
	return base64.StdEncoding.EncodeToString([]byte(payload))
}

func DecodeCredential(encoded string) (uint, string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return 0, "", ErrMalformedCredential
	}

	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 || parts[1] == "" {
		return 0, "", ErrMalformedCredential
	}

	id, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil || id == 0 {
		return 0, "", ErrMalformedCredential
	}

	return uint(id), parts[1], nil
}
