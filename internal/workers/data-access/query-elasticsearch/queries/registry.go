// internal/workers/data-access/query-elasticsearch/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"visa-portal/internal/models"
)

const (
	defaultSize = 20
	maxSize     = 100
	snippetLen  = 160
)

type QueryResult struct {
	Hits      []models.SearchHit
	TotalHits int64
	MaxScore  float64
	Took      int64
}

// IndexNotFoundError is returned when the content index does not exist.
type IndexNotFoundError struct {
	Index string
}

func (e *IndexNotFoundError) Error() string {
	return fmt.Sprintf("index %q not found", e.Index)
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Score     float64             `json:"_score"`
			Source    contentDocument     `json:"_source"`
			Highlight map[string][]string `json:"highlight"`
		} `json:"hits"`
	} `json:"hits"`
}

type contentDocument struct {
	Type    string `json:"type"`
	Key     string `json:"key"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

func Execute(ctx context.Context, esClient *elasticsearch.Client, sq SearchQuery) (*QueryResult, error) {
	if sq.Pagination.Size < 1 {
		sq.Pagination.Size = defaultSize
	}
	if sq.Pagination.Size > maxSize {
		sq.Pagination.Size = maxSize
	}
	if sq.Pagination.From < 0 {
		sq.Pagination.From = 0
	}

	req, err := BuildQuery(sq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, &IndexNotFoundError{Index: sq.Index}
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	result := &QueryResult{
		Hits:      make([]models.SearchHit, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      time.Since(start).Milliseconds(),
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}

	for _, h := range r.Hits.Hits {
		result.Hits = append(result.Hits, models.SearchHit{
			Type:    h.Source.Type,
			Key:     h.Source.Key,
			Title:   h.Source.Title,
			Snippet: snippet(h.Highlight, h.Source.Summary),
			Score:   h.Score,
		})
	}
	return result, nil
}

// snippet prefers a highlighted fragment and falls back to the summary.
func snippet(highlight map[string][]string, summary string) string {
	for _, field := range []string{"summary", "body"} {
		if frags := highlight[field]; len(frags) > 0 {
			return frags[0]
		}
	}
	runes := []rune(summary)
	if len(runes) > snippetLen {
		return string(runes[:snippetLen]) + "…"
	}
	return summary
}
