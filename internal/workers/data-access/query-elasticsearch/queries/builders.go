package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownContentType = errors.New("unknown content type")
	ErrMissingIndex       = errors.New("index name is required")
)

// ContentTypes lists the document kinds stored in the content index.
var ContentTypes = map[string]bool{
	"country": true,
	"blog":    true,
	"trip":    true,
}

// SearchQuery describes one site search request.
type SearchQuery struct {
	Index      string
	Text       string
	Type       string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds a search request over the content index. Titles weigh
// more than summaries, summaries more than bodies.
func BuildQuery(sq SearchQuery) (*esapi.SearchRequest, error) {
	if sq.Index == "" {
		return nil, ErrMissingIndex
	}
	if sq.Type != "" && !ContentTypes[sq.Type] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownContentType, sq.Type)
	}

	body, err := json.Marshal(buildContentQuery(sq))
	if err != nil {
		return nil, err
	}

	req := esapi.SearchRequest{
		Index: []string{sq.Index},
		Body:  bytes.NewReader(body),
		From:  &sq.Pagination.From,
		Size:  &sq.Pagination.Size,
	}
	return &req, nil
}

func buildContentQuery(sq SearchQuery) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{
		map[string]interface{}{"term": map[string]interface{}{"published": true}},
	}

	if text := strings.TrimSpace(sq.Text); text != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     text,
				"fields":    []string{"title^3", "summary^2", "body"},
				"type":      "best_fields",
				"fuzziness": "AUTO",
			},
		})
	} else {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	if sq.Type != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"type": sq.Type},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
		"_source": []string{"type", "key", "title", "summary"},
		"highlight": map[string]interface{}{
			"fields": map[string]interface{}{
				"summary": map[string]interface{}{},
				"body":    map[string]interface{}{"fragment_size": 160, "number_of_fragments": 1},
			},
		},
	}
}
