package generatereport

import (
	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/observability"
	"visa-portal/internal/models"
)

const ContentType = "application/pdf"

type Input struct {
	VisaType           string                     `json:"visaType"`
	Answers            []models.Answer            `json:"answers"`
	MultiSelectAnswers []models.MultiSelectAnswer `json:"multiSelectAnswers"`
	Results            *Results                   `json:"results,omitempty"`
	QuestionSource     string                     `json:"questionSource,omitempty"`
}

type Results struct {
	Recommendations []models.Recommendation `json:"recommendations"`
}

type Output struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"-"`
	Size        int    `json:"size"`
	Score       int    `json:"score"`
}

type ServiceDependencies struct {
	Logger        logger.Logger
	Observability *observability.Observability
}
