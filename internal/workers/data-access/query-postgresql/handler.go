package querypostgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"visa-portal/internal/common/logger"
	"visa-portal/internal/models"
	"visa-portal/internal/workers/data-access/query-postgresql/queries"
)

const (
	TaskType = "query-postgresql"
)

var (
	ErrDatabaseNotConfigured = errors.New("BACKEND_NOT_CONFIGURED")
	ErrQueryExecutionFailed  = errors.New("QUERY_EXECUTION_FAILED")
	ErrQueryTimeout          = errors.New("QUERY_TIMEOUT")
	ErrInvalidQueryType      = errors.New("INVALID_QUERY_TYPE")
	ErrRecordNotFound        = errors.New("CONTENT_NOT_FOUND")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
}

// NewHandler accepts a nil db; every query then fails with
// ErrDatabaseNotConfigured so callers can serve fallback content.
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
		errorCode := "QUERY_EXECUTION_FAILED"
		retries := int32(0)
		switch {
		case errors.Is(err, ErrQueryTimeout):
			errorCode = "QUERY_TIMEOUT"
			retries = 2
		case errors.Is(err, ErrInvalidQueryType):
			errorCode = "INVALID_QUERY_TYPE"
		case errors.Is(err, ErrRecordNotFound):
			errorCode = "CONTENT_NOT_FOUND"
		case errors.Is(err, ErrDatabaseNotConfigured):
			errorCode = "BACKEND_NOT_CONFIGURED"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}

	queryType := models.QueryType(input.QueryType)
	if _, exists := queries.Registry[queryType]; !exists {
		return nil, fmt.Errorf("%w: %s", ErrInvalidQueryType, input.QueryType)
	}
	if h.db == nil {
		return nil, ErrDatabaseNotConfigured
	}

	params := make(map[string]interface{})
	if input.VisaType != "" {
		params["visaType"] = input.VisaType
	}
	if input.OptionIDs != nil {
		params["optionIds"] = input.OptionIDs
	}
	if input.Slug != "" {
		params["slug"] = input.Slug
	}
	if input.ID != 0 {
		params["id"] = input.ID
	}
	if input.CountrySlug != "" {
		params["countrySlug"] = input.CountrySlug
	}
	if input.Limit > 0 {
		params["limit"] = input.Limit
	}
	if input.Offset > 0 {
		params["offset"] = input.Offset
	}

	data, rowCount, execTime, err := queries.Execute(ctx, h.db, queryType, params)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrQueryTimeout
		}
		if errors.Is(err, queries.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, input.QueryType)
		}
		return nil, fmt.Errorf("%w: %v", ErrQueryExecutionFailed, err)
	}

	h.logger.Debug("query executed", map[string]interface{}{
		"queryType": input.QueryType,
		"rowCount":  rowCount,
		"execMs":    execTime,
	})

	return &Output{
		Data:               data,
		RowCount:           rowCount,
		QueryExecutionTime: execTime,
	}, nil
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
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

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

// Execute runs a registry query outside of a Zeebe job.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
