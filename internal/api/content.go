package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "visa-portal/internal/common/errors"
	"visa-portal/internal/common/metrics"
	"visa-portal/internal/models"
	queryelasticsearch "visa-portal/internal/workers/data-access/query-elasticsearch"
	querypostgresql "visa-portal/internal/workers/data-access/query-postgresql"
)

const (
	kindCountry = "country"
	kindBlog    = "blog"
	kindTrip    = "trip"
	kindSearch  = "search"

	defaultPageSize = 20
	maxPageSize     = 100
)

// fallbackReason classifies a content read failure for the fallback metric.
func fallbackReason(err error) string {
	switch {
	case err == nil:
		return "not_configured"
	case errors.Is(err, querypostgresql.ErrDatabaseNotConfigured),
		errors.Is(err, queryelasticsearch.ErrElasticsearchConnectionFailed):
		return "not_configured"
	case errors.Is(err, querypostgresql.ErrRecordNotFound),
		errors.Is(err, queryelasticsearch.ErrIndexNotFound):
		return "not_found"
	case errors.Is(err, querypostgresql.ErrQueryTimeout),
		errors.Is(err, queryelasticsearch.ErrSearchTimeout):
		return "timeout"
	}
	return "query_failed"
}

func page(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.Query("limit"))
	offset, _ = strconv.Atoi(c.Query("offset"))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// listContent answers a list read. Any failure degrades to an empty list
// flagged as fallback.
func (s *Server) listContent(c *gin.Context, kind string, input *querypostgresql.Input) {
	input.Limit, input.Offset = page(c)

	var (
		out *querypostgresql.Output
		err error
	)
	if s.deps.Content != nil {
		ctx, cancel := s.requestContext(c)
		defer cancel()
		out, err = s.deps.Content.Execute(ctx, input)
	}
	if s.deps.Content == nil || err != nil {
		reason := fallbackReason(err)
		metrics.ContentFallbacks.WithLabelValues(kind, reason).Inc()
		s.log.Warn("content list served from fallback", map[string]interface{}{
			"kind":   kind,
			"reason": reason,
			"error":  err,
		})
		c.JSON(http.StatusOK, gin.H{"success": true, "items": []interface{}{}, "fallback": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   out.Data,
		"count":   out.RowCount,
		"limit":   input.Limit,
		"offset":  input.Offset,
	})
}

// getContent answers a single-item read. Any failure reads as not found.
func (s *Server) getContent(c *gin.Context, kind, key string, input *querypostgresql.Input) {
	var (
		out *querypostgresql.Output
		err error
	)
	if s.deps.Content != nil {
		ctx, cancel := s.requestContext(c)
		defer cancel()
		out, err = s.deps.Content.Execute(ctx, input)
	}
	if s.deps.Content == nil || err != nil {
		reason := fallbackReason(err)
		metrics.ContentFallbacks.WithLabelValues(kind, reason).Inc()
		if reason != "not_found" {
			s.log.Warn("content item unavailable", map[string]interface{}{
				"kind":   kind,
				"key":    key,
				"reason": reason,
				"error":  err,
			})
		}
		c.JSON(http.StatusNotFound, gin.H{"success": false, "notFound": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "item": out.Data})
}

func (s *Server) listCountries(c *gin.Context) {
	s.listContent(c, kindCountry, &querypostgresql.Input{QueryType: string(models.QueryTypeCountriesList)})
}

func (s *Server) getCountry(c *gin.Context) {
	slug := c.Param("slug")
	s.getContent(c, kindCountry, slug, &querypostgresql.Input{
		QueryType: string(models.QueryTypeCountryBySlug),
		Slug:      slug,
	})
}

func (s *Server) listBlogPosts(c *gin.Context) {
	s.listContent(c, kindBlog, &querypostgresql.Input{QueryType: string(models.QueryTypeBlogPostsList)})
}

func (s *Server) getBlogPost(c *gin.Context) {
	slug := c.Param("slug")
	s.getContent(c, kindBlog, slug, &querypostgresql.Input{
		QueryType: string(models.QueryTypeBlogPostBySlug),
		Slug:      slug,
	})
}

func (s *Server) listTripPackages(c *gin.Context) {
	s.listContent(c, kindTrip, &querypostgresql.Input{
		QueryType:   string(models.QueryTypeTripPackagesList),
		CountrySlug: strings.ToLower(strings.TrimSpace(c.Query("country"))),
	})
}

func (s *Server) getTripPackage(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		metrics.ContentFallbacks.WithLabelValues(kindTrip, "not_found").Inc()
		c.JSON(http.StatusNotFound, gin.H{"success": false, "notFound": true})
		return
	}
	s.getContent(c, kindTrip, raw, &querypostgresql.Input{
		QueryType: string(models.QueryTypeTripPackageByID),
		ID:        id,
	})
}

func (s *Server) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		s.fail(c, apperrors.NewRequestValidationFailedError("q is required"))
		return
	}
	limit, offset := page(c)

	var (
		out *queryelasticsearch.Output
		err error
	)
	if s.deps.Search != nil {
		ctx, cancel := s.requestContext(c)
		defer cancel()
		out, err = s.deps.Search.Execute(ctx, &queryelasticsearch.Input{
			Query:       q,
			ContentType: c.Query("type"),
			Pagination:  queryelasticsearch.Pagination{From: offset, Size: limit},
		})
	}
	if errors.Is(err, queryelasticsearch.ErrInvalidContentType) {
		s.fail(c, apperrors.NewRequestValidationFailedError("type must be country, blog or trip"))
		return
	}
	if s.deps.Search == nil || err != nil {
		reason := fallbackReason(err)
		metrics.ContentFallbacks.WithLabelValues(kindSearch, reason).Inc()
		s.log.Warn("search served from fallback", map[string]interface{}{
			"reason": reason,
			"error":  err,
		})
		c.JSON(http.StatusOK, gin.H{"success": true, "hits": []interface{}{}, "total": 0, "fallback": true})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"hits":    out.Hits,
		"total":   out.TotalHits,
		"took":    out.Took,
	})
}
