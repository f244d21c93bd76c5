// Package calculaterecommendations builds the assessment result from the
// options a visitor selected.
package calculaterecommendations

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"visa-portal/internal/assessment/questionbank"
	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/metrics"
	"visa-portal/internal/models"
	querypostgresql "visa-portal/internal/workers/data-access/query-postgresql"
)

const TaskType = "visa-calculate-recommendations"

const (
	SourceBackend  = "backend"
	SourceFallback = "fallback"
)

type Querier interface {
	Execute(ctx context.Context, input *querypostgresql.Input) (*querypostgresql.Output, error)
}

type Handler struct {
	config       *Config
	querier      Querier
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

func NewHandler(config *Config, querier Querier, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		querier:      querier,
		logger:       log,
		errorHandler: apperrors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	visaType, ok := models.ParseVisaType(input.VisaType)
	if !ok {
		return nil, apperrors.NewInvalidVisaTypeError(input.VisaType)
	}

	optionIDs := models.SelectedOptionIDs(input.Answers, input.MultiSelectAnswers)
	rows, source, err := h.fetchRows(ctx, visaType, optionIDs, input.QuestionSource)
	if err != nil {
		return nil, err
	}

	result := models.AssessmentResult{
		VisaType:        visaType,
		Recommendations: Aggregate(rows),
		Score:           models.TotalPoints(input.Answers, input.MultiSelectAnswers),
	}

	h.logger.Info("recommendations calculated", map[string]interface{}{
		"visaType":        visaType,
		"selectedOptions": len(optionIDs),
		"rows":            len(rows),
		"recommendations": len(result.Recommendations),
		"source":          source,
	})

	return &Output{Result: result, Source: source}, nil
}

func (h *Handler) fetchRows(ctx context.Context, visaType models.VisaType, optionIDs []int, questionSource string) ([]models.RecommendationRow, string, error) {
	if questionSource == SourceFallback {
		if len(optionIDs) == 0 {
			return nil, SourceFallback, nil
		}
		return fallbackRows(visaType, optionIDs)
	}
	if len(optionIDs) == 0 {
		return nil, SourceBackend, nil
	}

	var err error
	if h.querier != nil {
		var out *querypostgresql.Output
		out, err = h.querier.Execute(ctx, &querypostgresql.Input{
			QueryType: string(models.QueryTypeVisaRecommendations),
			OptionIDs: optionIDs,
		})
		if err == nil {
			rows, ok := out.Data.([]models.RecommendationRow)
			if !ok {
				return nil, "", apperrors.NewQueryExecutionFailedError(
					string(models.QueryTypeVisaRecommendations), fmt.Errorf("unexpected data %T", out.Data))
			}
			return rows, SourceBackend, nil
		}
	} else {
		err = querypostgresql.ErrDatabaseNotConfigured
	}

	if !h.config.UseFallback {
		return nil, "", apperrors.NewQueryExecutionFailedError(string(models.QueryTypeVisaRecommendations), err)
	}

	h.logger.Warn("recommendation backend unavailable, using fallback rows", map[string]interface{}{
		"visaType": visaType,
		"error":    err,
	})
	return fallbackRows(visaType, optionIDs)
}

// fallbackRows reads the embedded rows that belong to the embedded question set.
func fallbackRows(visaType models.VisaType, optionIDs []int) ([]models.RecommendationRow, string, error) {
	rows, err := questionbank.FallbackRecommendations(visaType, optionIDs)
	if err != nil {
		return nil, "", apperrors.NewQueryExecutionFailedError(string(models.QueryTypeVisaRecommendations), err)
	}
	return rows, SourceFallback, nil
}
