// Package generatereport renders the assessment summary as a PDF.
package generatereport

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/observability"
	"visa-portal/internal/models"
)

type Service struct {
	config *Config
	logger logger.Logger
	obs    *observability.Observability
	now    func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		config: config,
		logger: log.WithFields(map[string]interface{}{"service": "generate-report"}),
		obs:    deps.Observability,
		now:    time.Now,
	}
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()

	visaType, ok := models.ParseVisaType(input.VisaType)
	if !ok {
		return nil, apperrors.NewInvalidVisaTypeError(input.VisaType)
	}
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewReportGenerationFailedError(err)
	}

	var recs []models.Recommendation
	if input.Results != nil {
		recs = input.Results.Recommendations
	}
	score := models.TotalPoints(input.Answers, input.MultiSelectAnswers)
	generatedAt := s.now()

	content, err := s.render(visaType, score, answeredCount(input), recs, generatedAt)
	if err != nil {
		return nil, apperrors.NewReportGenerationFailedError(err)
	}

	s.obs.RecordReport(ctx, string(visaType), time.Since(start), len(content))
	s.logger.Info("assessment report generated", map[string]interface{}{
		"visaType":        visaType,
		"recommendations": len(recs),
		"size":            len(content),
	})

	return &Output{
		Filename:    fmt.Sprintf("visa-assessment-%s-%s.pdf", visaType, generatedAt.Format("20060102")),
		ContentType: ContentType,
		Content:     content,
		Size:        len(content),
		Score:       score,
	}, nil
}

func (s *Service) render(visaType models.VisaType, score, answered int, recs []models.Recommendation, at time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(s.config.Compress)
	pdf.SetCreationDate(at)
	title := s.config.Title
	if title == "" {
		title = "Visa Assessment Report"
	}
	pdf.SetTitle(title, false)
	pdf.SetAuthor(s.config.CompanyName, false)
	pdf.SetCreator(s.config.CompanyName, false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s - page %d", tr(s.config.CompanyName), pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(90, 90, 90)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s visa - generated %s", visaLabel(visaType), at.Format("2 January 2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFillColor(235, 242, 250)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 10, fmt.Sprintf("  Total score: %d points across %d answered questions", score, answered), "", 1, "L", true, 0, "")
	pdf.Ln(6)

	var positive, attention []models.Recommendation
	for _, r := range recs {
		if r.IsPositive {
			positive = append(positive, r)
		} else {
			attention = append(attention, r)
		}
	}

	if len(recs) == 0 {
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, "No specific recommendations were produced for your answers.", "", "L", false)
	}
	writeSection(pdf, tr, "Strengths", positive, [3]int{30, 120, 60})
	writeSection(pdf, tr, "Points to address", attention, [3]int{170, 90, 20})

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, tr(s.config.ContactLine), "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSection(pdf *fpdf.Fpdf, tr func(string) string, heading string, recs []models.Recommendation, rgb [3]int) {
	if len(recs) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 13)
	pdf.SetTextColor(rgb[0], rgb[1], rgb[2])
	pdf.CellFormat(0, 8, heading, "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	for _, r := range recs {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr(r.Title), "", "L", false)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, tr(r.Description), "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(3)
}

func answeredCount(input *Input) int {
	return len(input.Answers) + len(input.MultiSelectAnswers)
}

func visaLabel(vt models.VisaType) string {
	s := string(vt)
	return strings.ToUpper(s[:1]) + s[1:]
}
