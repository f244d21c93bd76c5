package crmleadcreate

import (
	"context"
	"time"

	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/zoho"
)

type Input struct {
	EnquiryID string `json:"enquiryId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country,omitempty"`
	VisaType  string `json:"visaType,omitempty"`
	Message   string `json:"message,omitempty"`
}

type Output struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	LeadID      string    `json:"leadId,omitempty"`
	Existing    bool      `json:"existing,omitempty"`
	CRMProvider string    `json:"crmProvider,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// LeadClient is the part of the Zoho client the service needs.
type LeadClient interface {
	CreateLead(ctx context.Context, lead *zoho.Lead) (string, error)
	FindLeadByEmail(ctx context.Context, email string) (*zoho.Lead, error)
}

type ServiceDependencies struct {
	Logger logger.Logger
	Client LeadClient
}
