package model

import "time"

// Donation is one recorded gift against a project/teacher pair.
// ID is allocated by the ledger at insert time and is unique and
// monotonic across the ledger. Donations are immutable once written.
type Donation struct {
	ID         int64     `json:"donation_id"`
	TeacherID  string    `json:"teacher_id"`
	ProjectID  string    `json:"project_id"`
	Amount     string    `json:"amount"`
	Date       time.Time `json:"donation_date"`
	DonorEmail string    `json:"donor_email"`
	Receipt    string    `json:"receipt"`
}
