package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "visa-portal/internal/common/errors"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// fail writes the standard error envelope. Unclassified errors become 500
// without leaking their text.
func (s *Server) fail(c *gin.Context, err error) {
	stdErr := apperrors.Normalize(err)
	status := apperrors.HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"route":     c.FullPath(),
		"errorCode": string(stdErr.Code),
		"status":    status,
	}
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("request failed", fields)
	} else {
		s.log.Debug("request rejected", fields)
	}

	body := errorBody{Code: string(stdErr.Code), Message: stdErr.Message}
	if status < http.StatusInternalServerError {
		body.Details = stdErr.Details
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": body})
}

// bind validates the raw body against a schema and decodes it into dst.
func (s *Server) bind(c *gin.Context, schema string, dst interface{}) bool {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.fail(c, apperrors.NewRequestValidationFailedError("unreadable body"))
		return false
	}
	if len(raw) == 0 {
		s.fail(c, apperrors.NewRequestValidationFailedError("empty body"))
		return false
	}

	if s.deps.Validator != nil {
		result, err := s.deps.Validator.ValidateJSON(schema, raw)
		if err != nil {
			s.fail(c, apperrors.NewRequestValidationFailedError(err.Error()))
			return false
		}
		if !result.Valid {
			s.fail(c, apperrors.NewRequestValidationFailedError(result.Summary()))
			return false
		}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		s.fail(c, apperrors.NewRequestValidationFailedError("malformed JSON"))
		return false
	}
	return true
}
