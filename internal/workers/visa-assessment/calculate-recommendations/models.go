package calculaterecommendations

import "visa-portal/internal/models"

type Input struct {
	VisaType           string                     `json:"visaType"`
	Answers            []models.Answer            `json:"answers"`
	MultiSelectAnswers []models.MultiSelectAnswer `json:"multiSelectAnswers"`
	// QuestionSource is the source of the question set the answers came
	// from. "fallback" pins the result to the embedded recommendation rows.
	QuestionSource string `json:"questionSource,omitempty"`
}

type Output struct {
	Result models.AssessmentResult `json:"result"`
	Source string                  `json:"source"`
}
