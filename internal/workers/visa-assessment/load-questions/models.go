package loadquestions

import "visa-portal/internal/models"

const (
	SourceBackend  = "backend"
	SourceCache    = "cache"
	SourceFallback = "fallback"
)

type Input struct {
	VisaType string `json:"visaType"`
}

type Output struct {
	VisaType       models.VisaType   `json:"visaType"`
	Questions      []models.Question `json:"questions"`
	Source         string            `json:"source"`
	RootQuestionID int               `json:"rootQuestionId"`
	Sections       []string          `json:"sections"`
}
