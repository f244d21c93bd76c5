package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/metrics"
	"visa-portal/internal/common/validation"
	crmleadcreate "visa-portal/internal/workers/crm/crm-lead-create"
	sendenquirynotification "visa-portal/internal/workers/communication/send-enquiry-notification"
	captchaverify "visa-portal/internal/workers/enquiry/captcha-verify"
	createenquiryrecord "visa-portal/internal/workers/enquiry/create-enquiry-record"
)

const (
	dispatchProcess = "process"
	dispatchInline  = "inline"
)

type enquiryRequest struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Phone               string `json:"phone"`
	Country             string `json:"country"`
	VisaType            string `json:"visaType"`
	Message             string `json:"message"`
	CaptchaID           string `json:"captchaId"`
	CaptchaValue        string `json:"captchaValue"`
	AssessmentSessionID string `json:"assessmentSessionId"`
}

func (s *Server) captcha(c *gin.Context) {
	if s.deps.Captcha == nil || !s.deps.Captcha.Enabled() {
		c.JSON(http.StatusOK, gin.H{"success": true, "enabled": false})
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	challenge, err := s.deps.Captcha.Issue(ctx, c.ClientIP())
	if err != nil {
		if errors.Is(err, captchaverify.ErrStoreNotConfigured) {
			err = apperrors.NewBackendNotConfiguredError("captcha store")
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"enabled":   true,
		"captchaId": challenge.CaptchaID,
		"challenge": challenge.Question,
		"expiresAt": challenge.ExpiresAt,
	})
}

func (s *Server) createEnquiry(c *gin.Context) {
	var req enquiryRequest
	if !s.bind(c, validation.SchemaEnquiry, &req) {
		return
	}
	if s.deps.Enquiries == nil {
		s.fail(c, apperrors.NewBackendNotConfiguredError("enquiries"))
		return
	}
	ctx, cancel := s.requestContext(c)
	defer cancel()

	if err := s.verifyCaptcha(ctx, c.ClientIP(), &req); err != nil {
		s.fail(c, err)
		return
	}

	record, err := s.deps.Enquiries.Execute(ctx, &createenquiryrecord.Input{
		Name:                strings.TrimSpace(req.Name),
		Email:               strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:               req.Phone,
		Country:             req.Country,
		VisaType:            req.VisaType,
		Message:             strings.TrimSpace(req.Message),
		AssessmentSessionID: req.AssessmentSessionID,
	})
	if err != nil {
		s.fail(c, enquiryError(err, req.Email))
		return
	}

	mode := s.dispatch(ctx, record.EnquiryID, &req)
	metrics.EnquiriesReceived.WithLabelValues(mode).Inc()

	s.log.Info("enquiry accepted", map[string]interface{}{
		"enquiryId": record.EnquiryID,
		"mode":      mode,
	})

	c.JSON(http.StatusCreated, gin.H{
		"success":   true,
		"enquiryId": record.EnquiryID,
		"status":    record.EnquiryStatus,
	})
}

func (s *Server) verifyCaptcha(ctx context.Context, clientIP string, req *enquiryRequest) error {
	if s.deps.Captcha == nil || !s.deps.Captcha.Enabled() {
		return nil
	}
	out, err := s.deps.Captcha.Execute(ctx, &captchaverify.Input{
		CaptchaID:    req.CaptchaID,
		CaptchaValue: req.CaptchaValue,
		ClientIP:     clientIP,
	})
	if errors.Is(err, captchaverify.ErrStoreNotConfigured) {
		return apperrors.NewBackendNotConfiguredError("captcha store")
	}
	if err != nil {
		return err
	}
	if out.Valid {
		return nil
	}
	if out.Reason == captchaverify.ReasonNotFound {
		return apperrors.NewCaptchaExpiredError(req.CaptchaID)
	}
	return apperrors.NewCaptchaInvalidError(out.Message).
		WithMetadata("reason", out.Reason).
		WithMetadata("attemptsRemaining", out.AttemptsRemaining)
}

func enquiryError(err error, email string) error {
	switch {
	case errors.Is(err, createenquiryrecord.ErrDuplicateEnquiry):
		return apperrors.NewDuplicateEnquiryError(email)
	case errors.Is(err, createenquiryrecord.ErrDatabaseNotConfigured):
		return apperrors.NewBackendNotConfiguredError("postgres")
	case errors.Is(err, createenquiryrecord.ErrDatabaseInsertFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	return err
}

// dispatch hands the stored enquiry to the intake process, or runs the CRM
// and notification steps in-process when no process engine is wired.
// Failures here never reject an enquiry that is already stored.
func (s *Server) dispatch(ctx context.Context, enquiryID string, req *enquiryRequest) string {
	if s.deps.Process != nil && s.deps.EnquiryProcess != "" {
		instance, err := s.deps.Process.StartProcess(ctx, s.deps.EnquiryProcess, map[string]interface{}{
			"enquiryId": enquiryID,
			"name":      req.Name,
			"email":     req.Email,
			"phone":     req.Phone,
			"country":   req.Country,
			"visaType":  req.VisaType,
			"message":   req.Message,
		})
		if err == nil {
			s.log.Debug("enquiry process started", map[string]interface{}{
				"enquiryId":          enquiryID,
				"processInstanceKey": instance.ProcessInstanceKey,
			})
			return dispatchProcess
		}
		s.log.WithError(err).Warn("enquiry process start failed, running inline", map[string]interface{}{
			"enquiryId": enquiryID,
		})
	}

	var leadID string
	if s.deps.Leads != nil && s.deps.Leads.Enabled() {
		lead, err := s.deps.Leads.Execute(ctx, &crmleadcreate.Input{
			EnquiryID: enquiryID,
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Country:   req.Country,
			VisaType:  req.VisaType,
			Message:   req.Message,
		})
		if err != nil {
			s.log.WithError(err).Warn("crm lead create failed", map[string]interface{}{"enquiryId": enquiryID})
		} else {
			leadID = lead.LeadID
		}
	}

	if s.deps.Notifier != nil {
		_, err := s.deps.Notifier.Execute(ctx, &sendenquirynotification.Input{
			EnquiryID: enquiryID,
			Name:      req.Name,
			Email:     req.Email,
			Phone:     req.Phone,
			Country:   req.Country,
			VisaType:  req.VisaType,
			Message:   req.Message,
			CRMLeadID: leadID,
		})
		if err != nil {
			s.log.WithError(err).Warn("enquiry notification failed", map[string]interface{}{"enquiryId": enquiryID})
		}
	}

	return dispatchInline
}
