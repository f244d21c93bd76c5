package querypostgresql

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"visa-portal/internal/common/logger"
	"visa-portal/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createBenchmarkLogger(b *testing.B) logger.Logger {
	zapLogger, _ := zap.NewProduction()
	return logger.NewZapAdapter(zapLogger)
}

var questionColumns = []string{
	"id", "question_text", "section_name", "is_multiple", "branch_all",
	"id", "option_text", "points", "leads_to_question_id", "additional_questions", "remark",
}

var countryColumns = []string{
	"id", "slug", "name", "summary", "visa_info", "hero_image", "process_days", "updated_at",
}

var tripColumns = []string{
	"id", "title", "country_slug", "duration_days", "price_from", "currency", "summary", "highlights", "image",
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	updated := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		input          *Input
		mockQuery      func(mock sqlmock.Sqlmock)
		validateOutput func(t *testing.T, output *Output)
	}{
		{
			name:  "visa questions grouped with options",
			input: &Input{QueryType: string(models.QueryTypeVisaQuestions), VisaType: "visit"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(questionColumns).
					AddRow(1, "Purpose of travel?", "Profile", false, false, 11, "Tourism", 5, 2, nil, true).
					AddRow(1, "Purpose of travel?", "Profile", false, false, 12, "Business", 3, 2, 9, nil).
					AddRow(2, "Bank balance?", nil, nil, nil, nil, nil, nil, nil, nil, nil)
				mock.ExpectQuery(`FROM visa_questions q LEFT JOIN visa_question_options o ON o.question_id = q.id WHERE q.visa_type = \$1`).
					WithArgs("visit").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				assert.Equal(t, 2, output.RowCount)

				questions := output.Data.([]models.Question)
				require.Len(t, questions, 2)
				assert.Equal(t, "Profile", questions[0].Section)
				assert.Equal(t, models.VisaTypeVisit, questions[0].VisaType)
				require.Len(t, questions[0].Options, 2)
				assert.Equal(t, 2, *questions[0].Options[0].LeadsTo)
				assert.Nil(t, questions[0].Options[0].AdditionalQuestion)
				assert.True(t, *questions[0].Options[0].Remark)
				assert.Equal(t, 9, *questions[0].Options[1].AdditionalQuestion)
				assert.Empty(t, questions[1].Options)
			},
		},
		{
			name:  "recommendations by option ids",
			input: &Input{QueryType: string(models.QueryTypeVisaRecommendations), OptionIDs: []int{12, 11}},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"option_id", "title", "description", "remark"}).
					AddRow(12, "Funds", "Show six months of statements", false).
					AddRow(11, "Ties", nil, true)
				mock.ExpectQuery(`FROM visa_recommendations WHERE option_id = ANY\(\$1\)`).
					WithArgs(sqlmock.AnyArg()).
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				rows := output.Data.([]models.RecommendationRow)
				require.Len(t, rows, 2)
				assert.Equal(t, 12, rows[0].OptionID)
				assert.Equal(t, "Show six months of statements", rows[0].Description)
				assert.Equal(t, "", rows[1].Description)
				assert.True(t, rows[1].Remark)
			},
		},
		{
			name:  "countries list with default page",
			input: &Input{QueryType: string(models.QueryTypeCountriesList)},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(countryColumns).
					AddRow(1, "canada", "Canada", "Study and visit", nil, nil, 30, updated)
				mock.ExpectQuery(`FROM countries WHERE is_published = true ORDER BY name LIMIT \$1 OFFSET \$2`).
					WithArgs(20, 0).
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				countries := output.Data.([]models.Country)
				require.Len(t, countries, 1)
				assert.Equal(t, "canada", countries[0].Slug)
				assert.Equal(t, 30, countries[0].ProcessDays)
				assert.Equal(t, updated, countries[0].UpdatedAt)
			},
		},
		{
			name:  "blog post by slug includes body",
			input: &Input{QueryType: string(models.QueryTypeBlogPostBySlug), Slug: "student-visa-checklist"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows([]string{"id", "slug", "title", "excerpt", "author", "cover_image", "published_at", "body"}).
					AddRow(4, "student-visa-checklist", "Checklist", "Short", "Editorial", nil, updated, "Full body")
				mock.ExpectQuery(`FROM blog_posts WHERE slug = \$1 AND is_published = true`).
					WithArgs("student-visa-checklist").
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				post := output.Data.(*models.BlogPost)
				assert.Equal(t, "Full body", post.Body)
				assert.Equal(t, 1, output.RowCount)
			},
		},
		{
			name:  "trip packages filtered by country",
			input: &Input{QueryType: string(models.QueryTypeTripPackagesList), CountrySlug: "uae", Limit: 500},
			mockQuery: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(tripColumns).
					AddRow(7, "Dubai Explorer", "uae", 5, 899.0, "USD", "City and desert", []byte("{\"Desert safari\",\"Dhow cruise\"}"), nil)
				mock.ExpectQuery(`FROM trip_packages WHERE is_active = true AND country_slug = \$1`).
					WithArgs("uae", 100, 0).
					WillReturnRows(rows)
			},
			validateOutput: func(t *testing.T, output *Output) {
				packages := output.Data.([]models.TripPackage)
				require.Len(t, packages, 1)
				assert.Equal(t, []string{"Desert safari", "Dhow cruise"}, packages[0].Highlights)
				assert.Equal(t, 899.0, packages[0].PriceFrom)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))
			output, err := handler.Execute(context.Background(), tt.input)

			require.NoError(t, err)
			require.NotNil(t, output)
			assert.GreaterOrEqual(t, output.QueryExecutionTime, int64(0))
			tt.validateOutput(t, output)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_EmptyOptionIDsSkipsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, createTestLogger(t))
	output, err := handler.Execute(context.Background(), &Input{
		QueryType: string(models.QueryTypeVisaRecommendations),
		OptionIDs: []int{},
	})

	require.NoError(t, err)
	assert.Equal(t, 0, output.RowCount)
	assert.Empty(t, output.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandler_Execute_Timeout(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM visa_questions q`).
		WithArgs("study").
		WillDelayFor(200 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows(questionColumns))

	config := createTestConfig()
	config.Timeout = 50 * time.Millisecond

	handler := NewHandler(config, db, createTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
	defer cancel()

	output, err := handler.Execute(ctx, &Input{QueryType: string(models.QueryTypeVisaQuestions), VisaType: "study"})

	assert.Nil(t, output)
	assert.ErrorIs(t, err, ErrQueryTimeout)
}

func TestHandler_Execute_QueryErrors(t *testing.T) {
	tests := []struct {
		name          string
		input         *Input
		mockQuery     func(mock sqlmock.Sqlmock)
		expectedErr   error
		errorContains string
	}{
		{
			name:        "unknown query type",
			input:       &Input{QueryType: "franchise_full_details"},
			mockQuery:   func(mock sqlmock.Sqlmock) {},
			expectedErr: ErrInvalidQueryType,
		},
		{
			name:          "missing visa type",
			input:         &Input{QueryType: string(models.QueryTypeVisaQuestions)},
			mockQuery:     func(mock sqlmock.Sqlmock) {},
			expectedErr:   ErrQueryExecutionFailed,
			errorContains: "visaType",
		},
		{
			name:  "country not found",
			input: &Input{QueryType: string(models.QueryTypeCountryBySlug), Slug: "atlantis"},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM countries WHERE slug = \$1`).
					WithArgs("atlantis").
					WillReturnRows(sqlmock.NewRows(countryColumns))
			},
			expectedErr: ErrRecordNotFound,
		},
		{
			name:  "trip package not found",
			input: &Input{QueryType: string(models.QueryTypeTripPackageByID), ID: 404},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM trip_packages WHERE id = \$1`).
					WithArgs(404).
					WillReturnRows(sqlmock.NewRows(tripColumns))
			},
			expectedErr: ErrRecordNotFound,
		},
		{
			name:  "database error",
			input: &Input{QueryType: string(models.QueryTypeBlogPostsList)},
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`FROM blog_posts`).
					WillReturnError(errors.New("connection reset by peer"))
			},
			expectedErr:   ErrQueryExecutionFailed,
			errorContains: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mockQuery(mock)

			handler := NewHandler(createTestConfig(), db, createTestLogger(t))
			output, err := handler.Execute(context.Background(), tt.input)

			assert.Nil(t, output)
			assert.ErrorIs(t, err, tt.expectedErr)
			if tt.errorContains != "" {
				assert.True(t, strings.Contains(err.Error(), tt.errorContains), err.Error())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_NoDatabase(t *testing.T) {
	handler := NewHandler(nil, nil, createTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{QueryType: string(models.QueryTypeCountriesList)})
	assert.ErrorIs(t, err, ErrDatabaseNotConfigured)

	_, err = handler.Execute(context.Background(), nil)
	assert.Error(t, err)
}

// ==========================
// Benchmarks
// ==========================

func BenchmarkHandler_Execute_VisaQuestions(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	handler := NewHandler(createTestConfig(), db, createBenchmarkLogger(b))
	input := &Input{QueryType: string(models.QueryTypeVisaQuestions), VisaType: "visit"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		mock.ExpectQuery(`FROM visa_questions q`).
			WithArgs("visit").
			WillReturnRows(sqlmock.NewRows(questionColumns).
				AddRow(1, "Purpose?", "Profile", false, false, 11, "Tourism", 5, 2, nil, nil))
		_, _ = handler.Execute(context.Background(), input)
	}
}
