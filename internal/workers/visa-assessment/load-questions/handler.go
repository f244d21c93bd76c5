// Package loadquestions resolves the question set for a visa type: Redis
// cache, then the backend, then the embedded fallback dataset.
package loadquestions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"visa-portal/internal/assessment/navigator"
	"visa-portal/internal/assessment/questionbank"
	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/logger"
	"visa-portal/internal/common/metrics"
	"visa-portal/internal/models"
	querypostgresql "visa-portal/internal/workers/data-access/query-postgresql"
)

const TaskType = "visa-load-questions"

const cacheKeyPrefix = "visa:questions:"

// Querier runs registry queries against the backend.
type Querier interface {
	Execute(ctx context.Context, input *querypostgresql.Input) (*querypostgresql.Output, error)
}

type Handler struct {
	config       *Config
	querier      Querier
	redis        *redis.Client
	logger       logger.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewHandler accepts a nil redis client; the cache is then skipped.
func NewHandler(config *Config, querier Querier, redisClient *redis.Client, log logger.Logger) *Handler {
	if config == nil {
		config = LoadConfig()
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		querier:      querier,
		redis:        redisClient,
		logger:       log,
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

// Execute never fails on backend or cache errors; those degrade to the
// fallback dataset. Only an unknown visa type is an error.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	visaType, ok := models.ParseVisaType(input.VisaType)
	if !ok {
		return nil, apperrors.NewInvalidVisaTypeError(input.VisaType)
	}

	questions, source := h.resolve(ctx, visaType)
	if len(questions) == 0 {
		return nil, apperrors.NewQuestionSetUnavailableError(string(visaType), errors.New("no question set available"))
	}
	questionbank.MarkFanOut(questions, h.config.FanOutQuestionIDs)

	graph, err := navigator.NewGraph(questions)
	if err != nil {
		return nil, apperrors.NewQuestionSetUnavailableError(string(visaType), err)
	}

	metrics.QuestionSetSource.WithLabelValues(string(visaType), source).Inc()

	return &Output{
		VisaType:       visaType,
		Questions:      questions,
		Source:         source,
		RootQuestionID: graph.Root(),
		Sections:       graph.Sections(),
	}, nil
}

func (h *Handler) resolve(ctx context.Context, visaType models.VisaType) ([]models.Question, string) {
	if questions, ok := h.fromCache(ctx, visaType); ok {
		return questions, SourceCache
	}

	questions, err := h.fromBackend(ctx, visaType)
	switch {
	case err != nil:
		h.logger.Warn("question backend unavailable, using fallback", map[string]interface{}{
			"visaType": visaType,
			"error":    err,
		})
	case len(questions) == 0:
		h.logger.Info("backend returned no questions, using fallback", map[string]interface{}{
			"visaType": visaType,
		})
	default:
		if _, gerr := navigator.NewGraph(questions); gerr != nil {
			h.logger.Warn("backend question set is malformed, using fallback", map[string]interface{}{
				"visaType": visaType,
				"error":    gerr,
			})
			break
		}
		h.storeCache(ctx, visaType, questions)
		return questions, SourceBackend
	}

	fallback, err := questionbank.Fallback(visaType)
	if err != nil {
		h.logger.Error("fallback question set unavailable", map[string]interface{}{
			"visaType": visaType,
			"error":    err,
		})
		return nil, SourceFallback
	}
	return fallback, SourceFallback
}

func (h *Handler) fromBackend(ctx context.Context, visaType models.VisaType) ([]models.Question, error) {
	if h.querier == nil {
		return nil, querypostgresql.ErrDatabaseNotConfigured
	}
	out, err := h.querier.Execute(ctx, &querypostgresql.Input{
		QueryType: string(models.QueryTypeVisaQuestions),
		VisaType:  string(visaType),
	})
	if err != nil {
		return nil, err
	}
	questions, ok := out.Data.([]models.Question)
	if !ok {
		return nil, fmt.Errorf("unexpected question data %T", out.Data)
	}
	return questions, nil
}

func (h *Handler) fromCache(ctx context.Context, visaType models.VisaType) ([]models.Question, bool) {
	if h.redis == nil {
		return nil, false
	}
	val, err := h.redis.Get(ctx, cacheKeyPrefix+string(visaType)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			h.logger.Warn("question cache read failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}
	var questions []models.Question
	if err := json.Unmarshal(val, &questions); err != nil || len(questions) == 0 {
		return nil, false
	}
	return questions, true
}

func (h *Handler) storeCache(ctx context.Context, visaType models.VisaType, questions []models.Question) {
	if h.redis == nil || h.config.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(questions)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, cacheKeyPrefix+string(visaType), data, h.config.CacheTTL).Err(); err != nil {
		h.logger.Warn("question cache write failed", map[string]interface{}{"error": err})
	}
}

// Invalidate drops the cached question set for visaType.
func (h *Handler) Invalidate(ctx context.Context, visaType models.VisaType) error {
	if h.redis == nil {
		return nil
	}
	return h.redis.Del(ctx, cacheKeyPrefix+string(visaType)).Err()
}
