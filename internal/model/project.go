package model

import (
	"fmt"
	"math"
	"time"
)

// LowFundingThreshold is the funded fraction below which a project is
// flagged as critically underfunded. Exactly at the threshold is not low.
const LowFundingThreshold = 0.15

// ProjectFunding is the read-side snapshot of a project joined with its
// school and teacher. PercentFunded is maintained by the external
// project workflow; this service only displays it.
type ProjectFunding struct {
	ProjectID        string    `json:"project_id"`
	Title            string    `json:"title"`
	Subject          string    `json:"subject,omitempty"`
	ShortDescription string    `json:"short_description"`
	TeacherName      string    `json:"teacher_name"`
	SchoolID         string    `json:"school_id"`
	SchoolName       string    `json:"school_name"`
	NumStudents      int       `json:"num_students"`
	PercentFunded    float64   `json:"percent_funded"`
	TotalPrice       string    `json:"total_price"`
	ExpirationDate   time.Time `json:"expiration_date"`
}

// IsLowFunded reports whether the project should carry the low-funding
// alert.
func (p *ProjectFunding) IsLowFunded() bool {
	return p.PercentFunded < LowFundingThreshold
}

// PercentDisplay formats the funded fraction as an integer percentage,
// e.g. 0.127 -> "13%".
func (p *ProjectFunding) PercentDisplay() string {
	return fmt.Sprintf("%d%%", int(math.Round(p.PercentFunded*100)))
}
