// Package models declares the server-side row types shared by repositories
// and services.
package models

// User is an account row. PasswordHash is only ever written through the
// credential hasher; the plaintext never reaches a repository or a log line.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
}
