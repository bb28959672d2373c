package models

import "time"

// RefreshToken is a persisted long-lived session credential. Token is an
// opaque crypto-random string; validity is decided by comparing Expires
// against the clock, expired rows stay in place until explicitly revoked.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	Expires   time.Time
	CreatedAt time.Time
}
