// internal/workers/communication/send-enquiry-notification/models.go
package sendenquirynotification

import (
	"context"

	commonaws "visa-portal/internal/common/aws"
)

type Input struct {
	EnquiryID string `json:"enquiryId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Country   string `json:"country,omitempty"`
	VisaType  string `json:"visaType,omitempty"`
	Message   string `json:"message"`
	CRMLeadID string `json:"crmLeadId,omitempty"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Status         string   `json:"status"` // "sent", "disabled"
	Channels       []string `json:"channels,omitempty"`
	SentAt         string   `json:"sentAt"` // ISO 8601
}

// Statuses
const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

// Channels
const (
	ChannelOfficeEmail     = "office_email"
	ChannelAcknowledgement = "acknowledgement_email"
	ChannelOfficeSMS       = "office_sms"
)

// EmailSender is satisfied by the shared SES client.
type EmailSender interface {
	Send(ctx context.Context, email commonaws.Email) (string, error)
}

// SMSSender is satisfied by the shared SNS client.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message string) (string, error)
}
