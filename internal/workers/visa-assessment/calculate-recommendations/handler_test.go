package calculaterecommendations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/logger"
	"visa-portal/internal/models"
	querypostgresql "visa-portal/internal/workers/data-access/query-postgresql"
)

type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) Execute(ctx context.Context, input *querypostgresql.Input) (*querypostgresql.Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*querypostgresql.Output), args.Error(1)
}

func TestAggregate_DedupesAndDropsBlank(t *testing.T) {
	rows := []models.RecommendationRow{
		{OptionID: 1, Title: "Funds", Description: "Show statements", Remark: false},
		{OptionID: 2, Title: "Funds", Description: "Show statements", Remark: true},
		{OptionID: 3, Title: "Ties", Description: "   "},
		{OptionID: 4, Title: "Ties", Description: "Employer letter", Remark: true},
		{OptionID: 5, Title: "Funds", Description: "Show statements."},
	}

	got := Aggregate(rows)

	require.Len(t, got, 3)
	assert.Equal(t, models.Recommendation{Title: "Funds", Description: "Show statements"}, got[0])
	assert.Equal(t, models.Recommendation{Title: "Ties", Description: "Employer letter", IsPositive: true}, got[1])
	assert.Equal(t, "Show statements.", got[2].Description)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.NotNil(t, Aggregate(nil))
}

func TestExecute_BackendRows(t *testing.T) {
	querier := new(MockQuerier)
	querier.On("Execute", mock.Anything, &querypostgresql.Input{
		QueryType: string(models.QueryTypeVisaRecommendations),
		OptionIDs: []int{11, 21, 501, 502},
	}).Return(&querypostgresql.Output{Data: []models.RecommendationRow{
		{OptionID: 11, Title: "Funds", Description: "Show statements"},
		{OptionID: 501, Title: "Funds", Description: "Show statements", Remark: true},
	}}, nil)

	h := NewHandler(nil, querier, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{
		VisaType: "study",
		Answers:  []models.Answer{{QuestionID: 1, OptionID: 11, Points: 5}, {QuestionID: 2, OptionID: 21, Points: 3}},
		MultiSelectAnswers: []models.MultiSelectAnswer{{
			QuestionID: 50,
			Options:    []models.SelectedOption{{OptionID: 501}, {OptionID: 502}},
			Points:     4,
		}},
	})

	require.NoError(t, err)
	assert.Equal(t, SourceBackend, out.Source)
	assert.Equal(t, models.VisaTypeStudy, out.Result.VisaType)
	assert.Equal(t, 12, out.Result.Score)
	require.Len(t, out.Result.Recommendations, 1)
	assert.False(t, out.Result.Recommendations[0].IsPositive)
	querier.AssertExpectations(t)
}

func TestExecute_NoAnswersSkipsBackend(t *testing.T) {
	querier := new(MockQuerier)
	h := NewHandler(nil, querier, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{VisaType: "visit"})
	require.NoError(t, err)
	assert.Empty(t, out.Result.Recommendations)
	querier.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestExecute_FallbackRows(t *testing.T) {
	querier := new(MockQuerier)
	querier.On("Execute", mock.Anything, mock.Anything).Return(nil, querypostgresql.ErrDatabaseNotConfigured)

	h := NewHandler(nil, querier, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), &Input{
		VisaType: "visit",
		Answers:  []models.Answer{{QuestionID: 4, OptionID: 402}, {QuestionID: 6, OptionID: 602}},
	})

	require.NoError(t, err)
	assert.Equal(t, SourceFallback, out.Source)
	require.Len(t, out.Result.Recommendations, 2)
	assert.Equal(t, "Bank statements", out.Result.Recommendations[0].Title)
}

func TestExecute_FallbackQuestionSourceSkipsBackend(t *testing.T) {
	querier := new(MockQuerier)
	h := NewHandler(nil, querier, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{
		VisaType:       "visit",
		Answers:        []models.Answer{{QuestionID: 4, OptionID: 402}, {QuestionID: 6, OptionID: 602}},
		QuestionSource: SourceFallback,
	})

	require.NoError(t, err)
	assert.Equal(t, SourceFallback, out.Source)
	require.Len(t, out.Result.Recommendations, 2)
	assert.Equal(t, "Previous refusal", out.Result.Recommendations[1].Title)
	querier.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestExecute_Errors(t *testing.T) {
	t.Run("invalid visa type", func(t *testing.T) {
		h := NewHandler(nil, nil, logger.NewTestLogger(t))
		_, err := h.Execute(context.Background(), &Input{VisaType: "tourist"})
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeInvalidVisaType))
	})

	t.Run("backend failure without fallback", func(t *testing.T) {
		querier := new(MockQuerier)
		querier.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		cfg := LoadConfig()
		cfg.UseFallback = false
		h := NewHandler(cfg, querier, logger.NewTestLogger(t))

		_, err := h.Execute(context.Background(), &Input{
			VisaType: "study",
			Answers:  []models.Answer{{QuestionID: 1, OptionID: 101}},
		})
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeQueryExecutionFailed))
	})
}
