// internal/workers/communication/send-enquiry-notification/handler.go
package sendenquirynotification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	commonaws "visa-portal/internal/common/aws"
	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/metrics"
)

const (
	TaskType = "send-enquiry-notification"
)

type Handler struct {
	config       *Config
	logger       logger.Logger
	email        EmailSender
	sms          SMSSender
	errorHandler *apperrors.ErrorHandler
}

// NewHandler takes the senders as interfaces; either may be nil when the
// channel is not configured.
func NewHandler(config *Config, email EmailSender, sms SMSSender, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		logger:       log,
		email:        email,
		sms:          sms,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.ErrCodeRequestValidationFailed)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, apperrors.NewRequestValidationFailedError(err.Error()))
		return
	}

	output, err := h.Execute(ctx, &input)
	if err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(apperrors.Normalize(err).Code)).Inc()
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	cmd, err := client.NewCompleteJobCommand().JobKey(job.Key).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{"error": err})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{"error": err})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

// Execute notifies the office of a new enquiry. Only the office email is
// required to succeed; the acknowledgement and the SMS are best effort.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	out := &Output{
		NotificationID: uuid.New().String(),
		Status:         StatusDisabled,
		SentAt:         time.Now().UTC().Format(time.RFC3339),
	}

	if h.emailReady() && h.config.OfficeEmail != "" {
		if err := h.sendOfficeEmail(ctx, input); err != nil {
			return nil, apperrors.NewNotificationSendFailedError("email", err)
		}
		out.Channels = append(out.Channels, ChannelOfficeEmail)
	}

	if h.emailReady() && h.config.SendAcknowledgement && input.Email != "" {
		if err := h.sendAcknowledgement(ctx, input); err != nil {
			h.logger.Warn("acknowledgement email failed", map[string]interface{}{
				"enquiryId": input.EnquiryID,
				"error":     err,
			})
		} else {
			out.Channels = append(out.Channels, ChannelAcknowledgement)
		}
	}

	if h.config.SMSEnabled && h.sms != nil && h.config.OfficePhone != "" {
		if err := h.sendOfficeSMS(ctx, input); err != nil {
			h.logger.Warn("office SMS failed", map[string]interface{}{
				"enquiryId": input.EnquiryID,
				"error":     err,
			})
		} else {
			out.Channels = append(out.Channels, ChannelOfficeSMS)
		}
	}

	if len(out.Channels) > 0 {
		out.Status = StatusSent
	}

	h.logger.Info("enquiry notification processed", map[string]interface{}{
		"enquiryId": input.EnquiryID,
		"status":    out.Status,
		"channels":  out.Channels,
	})
	return out, nil
}

func (h *Handler) emailReady() bool {
	return h.config.EmailEnabled && h.email != nil && h.config.FromEmail != ""
}

func (h *Handler) sendOfficeEmail(ctx context.Context, input *Input) error {
	subject, err := renderText(officeSubject, input)
	if err != nil {
		return fmt.Errorf("render subject: %w", err)
	}
	text, err := renderText(officeText, input)
	if err != nil {
		return fmt.Errorf("render text body: %w", err)
	}
	html, err := renderHTML(officeHTML, input)
	if err != nil {
		return fmt.Errorf("render html body: %w", err)
	}

	email := commonaws.Email{
		From:     h.config.FromEmail,
		To:       []string{h.config.OfficeEmail},
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	}
	if input.Email != "" {
		email.ReplyTo = []string{input.Email}
	}
	_, err = h.email.Send(ctx, email)
	return err
}

func (h *Handler) sendAcknowledgement(ctx context.Context, input *Input) error {
	text, err := renderText(ackText, input)
	if err != nil {
		return fmt.Errorf("render acknowledgement: %w", err)
	}
	_, err = h.email.Send(ctx, commonaws.Email{
		From:     h.config.FromEmail,
		To:       []string{input.Email},
		Subject:  "We received your enquiry",
		TextBody: text,
	})
	return err
}

func (h *Handler) sendOfficeSMS(ctx context.Context, input *Input) error {
	text, err := renderText(smsText, input)
	if err != nil {
		return fmt.Errorf("render sms: %w", err)
	}
	_, err = h.sms.SendSMS(ctx, h.config.OfficePhone, text)
	return err
}
