// internal/workers/data-access/query-postgresql/queries/registry.go
package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"visa-portal/internal/models"
)

var (
	ErrMissingParam     = errors.New("missing required parameter")
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrNotFound         = errors.New("record not found")
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// QueryFunc returns: data, rowCount, executionTime (ms), error
type QueryFunc func(ctx context.Context, db *sql.DB, params map[string]interface{}) (interface{}, int, int64, error)

var Registry = map[models.QueryType]QueryFunc{
	models.QueryTypeVisaQuestions:       VisaQuestions,
	models.QueryTypeVisaRecommendations: VisaRecommendations,
	models.QueryTypeCountriesList:       CountriesList,
	models.QueryTypeCountryBySlug:       CountryBySlug,
	models.QueryTypeBlogPostsList:       BlogPostsList,
	models.QueryTypeBlogPostBySlug:      BlogPostBySlug,
	models.QueryTypeTripPackagesList:    TripPackagesList,
	models.QueryTypeTripPackageByID:     TripPackageByID,
}

func Execute(ctx context.Context, db *sql.DB, queryType models.QueryType, params map[string]interface{}) (interface{}, int, int64, error) {
	fn, exists := Registry[queryType]
	if !exists {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrUnknownQueryType, queryType)
	}
	return fn(ctx, db, params)
}

func stringParam(params map[string]interface{}, name string) (string, error) {
	v, ok := params[name].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, name)
	}
	return v, nil
}

func intParam(params map[string]interface{}, name string) (int, bool) {
	switch v := params[name].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

// page reads limit/offset, clamping limit to maxLimit.
func page(params map[string]interface{}) (int, int) {
	limit, ok := intParam(params, "limit")
	if !ok || limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, _ := intParam(params, "offset")
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
