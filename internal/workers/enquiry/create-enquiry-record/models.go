package createenquiryrecord

type Input struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone,omitempty"`
	Country             string `json:"country,omitempty"`
	VisaType            string `json:"visaType,omitempty"`
	Message             string `json:"message"`
	AssessmentSessionID string `json:"assessmentSessionId,omitempty"`
	Source              string `json:"source,omitempty"`
}

type Output struct {
	EnquiryID     string `json:"enquiryId"`
	EnquiryStatus string `json:"enquiryStatus"`
	CreatedAt     string `json:"createdAt"` // ISO 8601
}
