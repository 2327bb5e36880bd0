package dto

import "time"

// CreateDonationRequest represents the request body for recording a
// donation.
type CreateDonationRequest struct {
	Amount    string `json:"amount"`
	TeacherID string `json:"teacher_id"`
	ProjectID string `json:"project_id"`
}

// DonationResponse represents a recorded donation.
type DonationResponse struct {
	Status     string    `json:"status,omitempty"`
	DonationID int64     `json:"donation_id"`
	Receipt    string    `json:"receipt"`
	Amount     string    `json:"amount"`
	TeacherID  string    `json:"teacher_id"`
	ProjectID  string    `json:"project_id"`
	Date       time.Time `json:"date"`
}
