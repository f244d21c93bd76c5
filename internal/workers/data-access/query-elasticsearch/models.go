// internal/workers/data-access/query-elasticsearch/models.go
package queryelasticsearch

import "visa-portal/internal/models"

type Input struct {
	IndexName   string     `json:"indexName,omitempty"`
	Query       string     `json:"query"`
	ContentType string     `json:"contentType,omitempty"` // country, blog or trip
	Pagination  Pagination `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Hits      []models.SearchHit `json:"hits"`
	TotalHits int64              `json:"totalHits"`
	MaxScore  float64            `json:"maxScore"`
	Took      int64              `json:"took"` // milliseconds
}
