package model

import "time"

// AuditEvent is one row of the append-only donation audit trail.
type AuditEvent struct {
	ID         int64     `json:"id"`
	DonationID int64     `json:"donation_id"`
	Email      string    `json:"email"`
	Amount     string    `json:"amount"`
	ProjectID  string    `json:"project_id"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}
