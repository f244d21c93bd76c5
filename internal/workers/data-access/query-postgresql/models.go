// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "visa-portal/internal/models"

type Input struct {
	QueryType   string `json:"queryType"`
	VisaType    string `json:"visaType,omitempty"`
	OptionIDs   []int  `json:"optionIds,omitempty"`
	Slug        string `json:"slug,omitempty"`
	ID          int    `json:"id,omitempty"`
	CountrySlug string `json:"countrySlug,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

var (
	QueryTypeVisaQuestions       = models.QueryTypeVisaQuestions
	QueryTypeVisaRecommendations = models.QueryTypeVisaRecommendations
	QueryTypeCountriesList       = models.QueryTypeCountriesList
	QueryTypeCountryBySlug       = models.QueryTypeCountryBySlug
	QueryTypeBlogPostsList       = models.QueryTypeBlogPostsList
	QueryTypeBlogPostBySlug      = models.QueryTypeBlogPostBySlug
	QueryTypeTripPackagesList    = models.QueryTypeTripPackagesList
	QueryTypeTripPackageByID     = models.QueryTypeTripPackageByID
)
