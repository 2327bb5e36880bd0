// Package model defines domain entities for the application.
package model

import "time"

// User is a registered donor account.
// PasswordHash holds an Argon2id PHC string and PasswordSalt the
// base64-encoded salt embedded in it. The salt is persisted in its own
// column so the login path can recompute the hash with the same
// parameters as registration.
type User struct {
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	PasswordSalt string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
