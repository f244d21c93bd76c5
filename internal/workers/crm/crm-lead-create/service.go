package crmleadcreate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/zoho"
)

type Service struct {
	config *Config
	logger logger.Logger
	client LeadClient
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	client := deps.Client
	if client == nil && config.ZohoOAuthToken != "" {
		client = zoho.NewCRMClient(config.ZohoBaseURL, config.ZohoOAuthToken)
	}

	return &Service{
		config: config,
		logger: deps.Logger,
		client: client,
	}
}

func (s *Service) Configured() bool {
	return s.client != nil
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Executing CRM lead create", map[string]interface{}{
		"enquiryId": input.EnquiryID,
		"visaType":  input.VisaType,
	})

	if err := validateEmail(input.Email); err != nil {
		return nil, apperrors.NewRequestValidationFailedError(err.Error())
	}

	if s.client == nil {
		return nil, apperrors.NewBackendNotConfiguredError("zoho crm")
	}

	existing, err := s.client.FindLeadByEmail(ctx, input.Email)
	switch {
	case err == nil:
		s.logger.Info("Lead already exists in CRM", map[string]interface{}{
			"enquiryId": input.EnquiryID,
			"leadId":    existing.ID,
		})
		return &Output{
			Success:     true,
			Message:     "Lead already exists in CRM",
			LeadID:      existing.ID,
			Existing:    true,
			CRMProvider: "zoho",
			CreatedAt:   time.Now(),
		}, nil
	case errors.Is(err, zoho.ErrLeadNotFound):
	default:
		// a failed lookup should not block the insert
		s.logger.Warn("Failed to search for existing lead", map[string]interface{}{
			"enquiryId": input.EnquiryID,
			"error":     err,
		})
	}

	first, last := splitName(input.Name)
	leadID, err := s.client.CreateLead(ctx, &zoho.Lead{
		Email:       strings.TrimSpace(input.Email),
		FirstName:   first,
		LastName:    last,
		Phone:       input.Phone,
		Country:     input.Country,
		VisaType:    input.VisaType,
		Source:      s.config.LeadSource,
		Description: input.Message,
	})
	if err != nil {
		return nil, apperrors.NewCRMLeadCreateFailedError(err)
	}

	s.logger.Info("CRM lead created successfully", map[string]interface{}{
		"enquiryId": input.EnquiryID,
		"leadId":    leadID,
		"provider":  "zoho",
	})

	return &Output{
		Success:     true,
		Message:     "CRM lead created successfully",
		LeadID:      leadID,
		CRMProvider: "zoho",
		CreatedAt:   time.Now(),
	}, nil
}

// splitName puts everything before the last word into the first name. Zoho
// requires a last name, so a single word becomes the last name.
func splitName(name string) (string, string) {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return "", "Unknown"
	case 1:
		return "", fields[0]
	}
	return strings.Join(fields[:len(fields)-1], " "), fields[len(fields)-1]
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid email format")
	}
	if !strings.Contains(parts[1], ".") {
		return fmt.Errorf("invalid email domain")
	}
	return nil
}
