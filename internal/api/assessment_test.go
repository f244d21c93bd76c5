package api

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"visa-portal/internal/common/logger"
	"visa-portal/internal/models"
	querypostgresql "visa-portal/internal/workers/data-access/query-postgresql"
	calculaterecommendations "visa-portal/internal/workers/visa-assessment/calculate-recommendations"
	loadquestions "visa-portal/internal/workers/visa-assessment/load-questions"
)

// ==========================
// Questions, calculate and PDF
// ==========================

func TestQuestions_ServesFallbackSet(t *testing.T) {
	deps, _ := newTestDeps(t)
	router := NewRouter(deps)

	rec := do(t, router, http.MethodGet, "/api/visa-assessment/questions?visa_type=Visit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "fallback", body["source"])
	assert.Equal(t, "visit", body["visaType"])
	assert.Equal(t, float64(1), body["rootQuestionId"])
	assert.Len(t, body["questions"], 9)
}

func TestQuestions_UnknownVisaType(t *testing.T) {
	deps, _ := newTestDeps(t)

	rec := do(t, NewRouter(deps), http.MethodGet, "/api/visa-assessment/questions?visa_type=work", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_VISA_TYPE", errorCode(t, rec))
}

func TestCalculate(t *testing.T) {
	deps, _ := newTestDeps(t)
	router := NewRouter(deps)

	t.Run("aggregates fallback recommendations", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/visa-assessment/calculate", map[string]interface{}{
			"visaType": "visit",
			"answers": []map[string]interface{}{
				{"questionId": 4, "optionId": 402, "points": 3},
				{"questionId": 6, "optionId": 602, "points": 0},
			},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		body := decodeBody(t, rec)
		assert.Equal(t, "fallback", body["source"])
		result := body["result"].(map[string]interface{})
		assert.Equal(t, "visit", result["visaType"])
		assert.Equal(t, float64(3), result["score"])

		recs := result["recommendations"].([]interface{})
		require.Len(t, recs, 2)
		assert.Equal(t, "Bank statements", recs[0].(map[string]interface{})["title"])
		assert.Equal(t, "Previous refusal", recs[1].(map[string]interface{})["title"])
	})

	t.Run("schema rejects unknown visa type", func(t *testing.T) {
		rec := do(t, router, http.MethodPost, "/api/visa-assessment/calculate", map[string]interface{}{
			"visaType": "work",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "REQUEST_VALIDATION_FAILED", errorCode(t, rec))
	})
}

func TestDownloadPDF(t *testing.T) {
	deps, _ := newTestDeps(t)

	rec := do(t, NewRouter(deps), http.MethodPost, "/api/visa-assessment/download-pdf", map[string]interface{}{
		"visaType": "study",
		"answers": []map[string]interface{}{
			{"questionId": 2, "optionId": 201, "points": 10},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	disposition := rec.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, "attachment;"), disposition)
	assert.Contains(t, disposition, "visa-assessment-study-")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
	assert.Contains(t, rec.Body.String(), "Offer letter")
}

// ==========================
// Server-side sessions
// ==========================

func startVisitSession(t *testing.T, router http.Handler) (string, map[string]interface{}) {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/visa-assessment/sessions", map[string]interface{}{"visaType": "visit"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	sess := decodeBody(t, rec)["session"].(map[string]interface{})
	return sess["id"].(string), sess
}

func answer(t *testing.T, router http.Handler, id string, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	rec := do(t, router, http.MethodPost, "/api/visa-assessment/sessions/"+id+"/answers", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody(t, rec)["session"].(map[string]interface{})
}

func currentQuestionID(sess map[string]interface{}) float64 {
	q, ok := sess["question"].(map[string]interface{})
	if !ok {
		return 0
	}
	return q["id"].(float64)
}

func TestSession_FullWalkAndBack(t *testing.T) {
	deps, _ := newTestDeps(t)
	router := NewRouter(deps)

	id, sess := startVisitSession(t, router)
	assert.Equal(t, float64(1), currentQuestionID(sess))
	assert.Equal(t, "fallback", sess["source"])
	assert.Equal(t, false, sess["finished"])

	sess = answer(t, router, id, map[string]interface{}{"questionId": 1, "optionId": 101})
	assert.Equal(t, float64(2), currentQuestionID(sess))
	sess = answer(t, router, id, map[string]interface{}{"questionId": 2, "optionId": 201})
	sess = answer(t, router, id, map[string]interface{}{"questionId": 3, "optionId": 301})
	sess = answer(t, router, id, map[string]interface{}{"questionId": 4, "optionId": 401})
	assert.Equal(t, float64(5), currentQuestionID(sess))

	sess = answer(t, router, id, map[string]interface{}{"questionId": 5, "optionIds": []int{501}})
	assert.Equal(t, float64(6), currentQuestionID(sess))

	sess = answer(t, router, id, map[string]interface{}{"questionId": 6, "optionId": 601})
	assert.Equal(t, true, sess["finished"])
	assert.Nil(t, sess["question"])

	result := sess["result"].(map[string]interface{})
	assert.Equal(t, float64(50), result["score"])
	titles := make([]string, 0)
	for _, r := range result["recommendations"].([]interface{}) {
		titles = append(titles, r.(map[string]interface{})["title"].(string))
	}
	assert.ElementsMatch(t, []string{"Travel history", "Financial standing", "Ties to home"}, titles)

	// answering a finished walk is a conflict
	rec := do(t, router, http.MethodPost, "/api/visa-assessment/sessions/"+id+"/answers",
		map[string]interface{}{"questionId": 6, "optionId": 602})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "SESSION_FINISHED", errorCode(t, rec))

	rec = do(t, router, http.MethodPost, "/api/visa-assessment/sessions/"+id+"/back", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sess = decodeBody(t, rec)["session"].(map[string]interface{})
	assert.Equal(t, false, sess["finished"])
	assert.Equal(t, float64(6), currentQuestionID(sess))

	// back over the multi-select answer drops it too
	do(t, router, http.MethodPost, "/api/visa-assessment/sessions/"+id+"/back", nil)
	rec = do(t, router, http.MethodGet, "/api/visa-assessment/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sess = decodeBody(t, rec)["session"].(map[string]interface{})
	assert.Equal(t, float64(5), currentQuestionID(sess))
	assert.NotContains(t, sess["selectedOptionIds"], float64(501))
}

func TestSession_InvalidMoves(t *testing.T) {
	deps, _ := newTestDeps(t)
	router := NewRouter(deps)
	id, _ := startVisitSession(t, router)

	tests := []struct {
		name string
		path string
		body map[string]interface{}
		code string
	}{
		{"not the current question", "/answers", map[string]interface{}{"questionId": 3, "optionId": 301}, "INVALID_ANSWER"},
		{"option from another question", "/answers", map[string]interface{}{"questionId": 1, "optionId": 201}, "INVALID_ANSWER"},
		{"multi answer on single-select", "/answers", map[string]interface{}{"questionId": 1, "optionIds": []int{101}}, "INVALID_ANSWER"},
		{"back at the root", "/back", nil, "INVALID_ANSWER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/api/visa-assessment/sessions/"+id+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestSession_AnswerWithoutOptionUnvalidated(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Validator = nil
	router := NewRouter(deps)
	id, _ := startVisitSession(t, router)

	rec := do(t, router, http.MethodPost, "/api/visa-assessment/sessions/"+id+"/answers",
		map[string]interface{}{"questionId": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ANSWER", errorCode(t, rec))
}

func TestSession_FinishLogsAnswerCount(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	deps, _ := newTestDeps(t)
	deps.Logger = logger.NewZapAdapter(zap.New(core))
	router := NewRouter(deps)

	id, _ := startVisitSession(t, router)
	answer(t, router, id, map[string]interface{}{"questionId": 1, "optionId": 101})
	answer(t, router, id, map[string]interface{}{"questionId": 2, "optionId": 201})
	answer(t, router, id, map[string]interface{}{"questionId": 3, "optionId": 301})
	answer(t, router, id, map[string]interface{}{"questionId": 4, "optionId": 401})
	answer(t, router, id, map[string]interface{}{"questionId": 5, "optionIds": []int{501}})
	answer(t, router, id, map[string]interface{}{"questionId": 6, "optionId": 601})

	finished := logs.FilterMessage("assessment session finished").All()
	require.Len(t, finished, 1)
	assert.Equal(t, int64(6), finished[0].ContextMap()["answered"])
}

func TestSession_DeleteAndMissing(t *testing.T) {
	deps, _ := newTestDeps(t)
	router := NewRouter(deps)
	id, _ := startVisitSession(t, router)

	rec := do(t, router, http.MethodDelete, "/api/visa-assessment/sessions/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/visa-assessment/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", errorCode(t, rec))

	rec = do(t, router, http.MethodDelete, "/api/visa-assessment/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSession_StoreNotConfigured(t *testing.T) {
	deps, _ := newTestDeps(t)
	deps.Sessions = nil

	rec := do(t, NewRouter(deps), http.MethodPost, "/api/visa-assessment/sessions", map[string]interface{}{"visaType": "study"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "BACKEND_NOT_CONFIGURED", errorCode(t, rec))
}

// emptyBackend answers every query successfully with no rows.
type emptyBackend struct {
	calls map[string]int
}

func (b *emptyBackend) Execute(ctx context.Context, input *querypostgresql.Input) (*querypostgresql.Output, error) {
	if b.calls == nil {
		b.calls = map[string]int{}
	}
	b.calls[input.QueryType]++
	switch input.QueryType {
	case string(models.QueryTypeVisaQuestions):
		return &querypostgresql.Output{Data: []models.Question{}}, nil
	default:
		return &querypostgresql.Output{Data: []models.RecommendationRow{}}, nil
	}
}

func TestSession_EmptyBackendUsesFallbackRecommendations(t *testing.T) {
	deps, _ := newTestDeps(t)
	backend := &emptyBackend{}
	log := logger.NewTestLogger(t)
	deps.Questions = loadquestions.NewHandler(loadquestions.LoadConfig(), backend, nil, log)
	deps.Recommendations = calculaterecommendations.NewHandler(calculaterecommendations.LoadConfig(), backend, log)
	router := NewRouter(deps)

	id, sess := startVisitSession(t, router)
	assert.Equal(t, "fallback", sess["source"])

	answer(t, router, id, map[string]interface{}{"questionId": 1, "optionId": 101})
	answer(t, router, id, map[string]interface{}{"questionId": 2, "optionId": 201})
	answer(t, router, id, map[string]interface{}{"questionId": 3, "optionId": 301})
	answer(t, router, id, map[string]interface{}{"questionId": 4, "optionId": 401})
	answer(t, router, id, map[string]interface{}{"questionId": 5, "optionIds": []int{501}})
	sess = answer(t, router, id, map[string]interface{}{"questionId": 6, "optionId": 601})
	require.Equal(t, true, sess["finished"])

	result := sess["result"].(map[string]interface{})
	assert.Len(t, result["recommendations"], 3)
	assert.Zero(t, backend.calls[string(models.QueryTypeVisaRecommendations)])
	assert.Equal(t, 1, backend.calls[string(models.QueryTypeVisaQuestions)])

	t.Run("calculate follows the question source", func(t *testing.T) {
		body := map[string]interface{}{
			"visaType": "visit",
			"answers": []map[string]interface{}{
				{"questionId": 4, "optionId": 402},
				{"questionId": 6, "optionId": 602},
			},
		}

		rec := do(t, router, http.MethodPost, "/api/visa-assessment/calculate", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out := decodeBody(t, rec)
		assert.Equal(t, "backend", out["source"])
		assert.Empty(t, out["result"].(map[string]interface{})["recommendations"])

		body["questionSource"] = "fallback"
		rec = do(t, router, http.MethodPost, "/api/visa-assessment/calculate", body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out = decodeBody(t, rec)
		assert.Equal(t, "fallback", out["source"])
		assert.Len(t, out["result"].(map[string]interface{})["recommendations"], 2)
	})
}
