// Package auth implements the two stateless credential primitives of the
// server: bcrypt password hashing and HS256 access tokens.
package auth

import (
	"errors"
	"time"

	"github.com/dsavelev/userpost/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the access-token claim set. Subject carries the user email;
// expiry and issue time come from the registered claims.
type Claims struct {
	jwt.RegisteredClaims
}

// GenerateToken signs a new access token for subject with the given
// validity window. A zero or negative validity produces a token that is
// already expired, which verification reports as such.
func GenerateToken(subject string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
			// unique jti so two tokens minted in the same second still differ
			ID: uuid.NewString(),
		},
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSubjectFromToken verifies tokenString and returns its subject claim.
//
// Failures are split into two sentinel values so callers can log the
// distinction while responding identically:
//   - common.ErrTokenExpired: structurally valid signature, past expiry.
//   - common.ErrInvalidToken: everything else (malformed, tampered, wrong
//     algorithm, empty subject).
func GetSubjectFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
