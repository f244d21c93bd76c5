package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/validation"
	calculaterecommendations "visa-portal/internal/workers/visa-assessment/calculate-recommendations"
	generatereport "visa-portal/internal/workers/visa-assessment/generate-report"
	loadquestions "visa-portal/internal/workers/visa-assessment/load-questions"
)

func (s *Server) questions(c *gin.Context) {
	if s.deps.Questions == nil {
		s.fail(c, apperrors.NewBackendNotConfiguredError("questions"))
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	out, err := s.deps.Questions.Execute(ctx, &loadquestions.Input{VisaType: c.Query("visa_type")})
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"visaType":       out.VisaType,
		"questions":      out.Questions,
		"source":         out.Source,
		"rootQuestionId": out.RootQuestionID,
		"sections":       out.Sections,
	})
}

func (s *Server) calculate(c *gin.Context) {
	var input calculaterecommendations.Input
	if !s.bind(c, validation.SchemaCalculate, &input) {
		return
	}
	if s.deps.Recommendations == nil {
		s.fail(c, apperrors.NewBackendNotConfiguredError("recommendations"))
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	out, err := s.deps.Recommendations.Execute(ctx, &input)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  out.Result,
		"source":  out.Source,
	})
}

func (s *Server) downloadPDF(c *gin.Context) {
	var input generatereport.Input
	if !s.bind(c, validation.SchemaDownloadPDF, &input) {
		return
	}
	if s.deps.Reports == nil {
		s.fail(c, apperrors.NewBackendNotConfiguredError("reports"))
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	// Clients that skipped calculate still get recommendations in the report.
	if input.Results == nil && s.deps.Recommendations != nil {
		calc, err := s.deps.Recommendations.Execute(ctx, &calculaterecommendations.Input{
			VisaType:           input.VisaType,
			Answers:            input.Answers,
			MultiSelectAnswers: input.MultiSelectAnswers,
			QuestionSource:     input.QuestionSource,
		})
		if err != nil {
			s.fail(c, err)
			return
		}
		input.Results = &generatereport.Results{Recommendations: calc.Result.Recommendations}
	}

	out, err := s.deps.Reports.Execute(ctx, &input)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", out.Filename))
	c.Data(http.StatusOK, out.ContentType, out.Content)
}
