// internal/models/enquiry.go
package models

import "time"

type EnquiryStatus string

const (
	EnquiryStatusNew       EnquiryStatus = "new"
	EnquiryStatusForwarded EnquiryStatus = "forwarded"
)

type Enquiry struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	Email               string        `json:"email"`
	Phone               string        `json:"phone,omitempty"`
	Country             string        `json:"country,omitempty"`
	VisaType            string        `json:"visaType,omitempty"`
	Message             string        `json:"message"`
	AssessmentSessionID string        `json:"assessmentSessionId,omitempty"`
	Source              string        `json:"source"`
	Status              EnquiryStatus `json:"status"`
	CreatedAt           time.Time     `json:"createdAt"`
}
