package dto

import (
	"time"

	"github.com/classfund/classfund/internal/model"
)

// FundingResponse represents a project funding snapshot. Text fields
// arrive pre-escaped from the funding service.
type FundingResponse struct {
	ProjectID        string    `json:"project_id"`
	Title            string    `json:"title"`
	Subject          string    `json:"subject,omitempty"`
	ShortDescription string    `json:"short_description"`
	TeacherName      string    `json:"teacher_name"`
	SchoolID         string    `json:"school_id"`
	SchoolName       string    `json:"school_name"`
	NumStudents      int       `json:"num_students"`
	PercentFunded    float64   `json:"percent_funded"`
	PercentDisplay   string    `json:"percent_display"`
	LowFunding       bool      `json:"low_funding"`
	TotalPrice       string    `json:"total_price"`
	ExpirationDate   time.Time `json:"expiration_date"`
}

// FundingListResponse represents the project listing.
type FundingListResponse struct {
	Data []FundingResponse `json:"data"`
}

// ToFundingResponse converts a funding snapshot.
func ToFundingResponse(p *model.ProjectFunding) FundingResponse {
	return FundingResponse{
		ProjectID:        p.ProjectID,
		Title:            p.Title,
		Subject:          p.Subject,
		ShortDescription: p.ShortDescription,
		TeacherName:      p.TeacherName,
		SchoolID:         p.SchoolID,
		SchoolName:       p.SchoolName,
		NumStudents:      p.NumStudents,
		PercentFunded:    p.PercentFunded,
		PercentDisplay:   p.PercentDisplay(),
		LowFunding:       p.IsLowFunded(),
		TotalPrice:       p.TotalPrice,
		ExpirationDate:   p.ExpirationDate,
	}
}

// ToFundingListResponse converts a list of funding snapshots.
func ToFundingListResponse(projects []*model.ProjectFunding) FundingListResponse {
	data := make([]FundingResponse, 0, len(projects))
	for _, p := range projects {
		data = append(data, ToFundingResponse(p))
	}
	return FundingListResponse{Data: data}
}
