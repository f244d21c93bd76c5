// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeVisaQuestions       QueryType = "visa_questions"
	QueryTypeVisaRecommendations QueryType = "visa_recommendations"
	QueryTypeCountriesList       QueryType = "countries_list"
	QueryTypeCountryBySlug       QueryType = "country_by_slug"
	QueryTypeBlogPostsList       QueryType = "blog_posts_list"
	QueryTypeBlogPostBySlug      QueryType = "blog_post_by_slug"
	QueryTypeTripPackagesList    QueryType = "trip_packages_list"
	QueryTypeTripPackageByID     QueryType = "trip_package_by_id"
)
