package model

import "time"

// Session is the authenticated identity attached to a request.
// It is stored in Redis keyed by the session token and carried through
// the request context by the auth middleware.
type Session struct {
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
