package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes is bcrypt's input limit. Hash and check both truncate to
// this length, so the two paths always agree on what was hashed; the HTTP
// validation layer rejects longer passwords before they get here.
const MaxPasswordBytes = 72

// ErrMalformedHash reports a stored hash that bcrypt cannot parse. It is
// distinct from a plain mismatch so corrupt rows show up in logs instead of
// looking like wrong passwords.
var ErrMalformedHash = errors.New("malformed password hash")

// dummyHash is compared against on the unknown-email login path so that
// lookup misses cost the same as a real bcrypt check.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy-password-for-timing"), bcrypt.DefaultCost)

func truncatePassword(password string) []byte {
	b := []byte(password)
	if len(b) > MaxPasswordBytes {
		b = b[:MaxPasswordBytes]
	}
	return b
}

// HashPassword hashes password with bcrypt at the given cost. Every call
// salts freshly, so equal passwords produce different hash strings.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncatePassword(password), cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. The comparison is
// bcrypt's own constant-time check. A hash bcrypt cannot parse yields
// ErrMalformedHash rather than a mismatch.
func CheckPassword(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncatePassword(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrMalformedHash, err)
	}
}

// BurnCheck performs a bcrypt comparison against a fixed dummy hash and
// discards the result. Login calls it when the email lookup misses.
func BurnCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, truncatePassword(password))
}
