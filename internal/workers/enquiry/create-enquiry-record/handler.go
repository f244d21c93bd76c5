// internal/workers/enquiry/create-enquiry-record/handler.go
package createenquiryrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"

	"visa-portal/internal/common/logger"
	"visa-portal/internal/models"
)

const (
	TaskType = "create-enquiry-record"
)

var (
	ErrDatabaseNotConfigured = errors.New("BACKEND_NOT_CONFIGURED")
	ErrDatabaseInsertFailed  = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateEnquiry      = errors.New("DUPLICATE_ENQUIRY")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	return &Handler{
		config: config,
		db:     db,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "UNKNOWN_ERROR"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrDatabaseInsertFailed):
			errorCode = "DATABASE_INSERT_FAILED"
			retries = 3
		case errors.Is(err, ErrDuplicateEnquiry):
			errorCode = "DUPLICATE_ENQUIRY"
		case errors.Is(err, ErrDatabaseNotConfigured):
			errorCode = "BACKEND_NOT_CONFIGURED"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if h.db == nil {
		return nil, ErrDatabaseNotConfigured
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	since := time.Now().UTC().Add(-h.config.DuplicateWindow)

	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM enquiries
			WHERE email = $1 AND message = $2 AND created_at > $3
		)`, email, input.Message, since).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: same enquiry already received from %s", ErrDuplicateEnquiry, email)
	}

	source := input.Source
	if source == "" {
		source = "website"
	}
	enquiryID := uuid.New().String()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO enquiries (
			id, name, email, phone, country, visa_type, message,
			assessment_session_id, source, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		enquiryID,
		strings.TrimSpace(input.Name),
		email,
		nullIfEmpty(input.Phone),
		nullIfEmpty(input.Country),
		nullIfEmpty(input.VisaType),
		input.Message,
		nullIfEmpty(input.AssessmentSessionID),
		source,
		string(models.EnquiryStatusNew),
		createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	// audit entry is best effort
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"email":    email,
		"visaType": input.VisaType,
		"source":   source,
	})
	if err != nil {
		auditDetailsJSON = []byte("{}")
	}
	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"enquiry_created",
		"enquiry",
		enquiryID,
		auditDetailsJSON,
		createdAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":     err,
			"enquiryId": enquiryID,
		})
	}

	h.logger.Info("enquiry record created", map[string]interface{}{
		"enquiryId": enquiryID,
		"visaType":  input.VisaType,
		"source":    source,
	})

	return &Output{
		EnquiryID:     enquiryID,
		EnquiryStatus: string(models.EnquiryStatusNew),
		CreatedAt:     createdAt,
	}, nil
}

func nullIfEmpty(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	} else {
		h.logger.Info("job completed successfully", map[string]interface{}{
			"jobKey": job.Key,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	if retries > 0 && job.Retries > 0 {
		_, err := client.NewFailJobCommand().
			JobKey(job.Key).
			Retries(job.Retries - 1).
			ErrorMessage(errorMessage).
			Send(context.Background())
		if err != nil {
			h.logger.Error("failed to fail job", map[string]interface{}{
				"error": err,
			})
		}
		return
	}

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
