package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAs_UnwrapsChain(t *testing.T) {
	base := NewSessionNotFoundError("abc")
	wrapped := fmt.Errorf("load session: %w", base)

	got, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, got)
	assert.True(t, HasCode(wrapped, ErrCodeSessionNotFound))
	assert.False(t, HasCode(stderrors.New("plain"), ErrCodeSessionNotFound))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeInvalidAnswer, http.StatusBadRequest},
		{ErrCodeRequestValidationFailed, http.StatusBadRequest},
		{ErrCodeCaptchaInvalid, http.StatusUnprocessableEntity},
		{ErrCodeSessionNotFound, http.StatusNotFound},
		{ErrCodeContentNotFound, http.StatusNotFound},
		{ErrCodeSessionConflict, http.StatusConflict},
		{ErrCodeQueryTimeout, http.StatusGatewayTimeout},
		{ErrCodeBackendNotConfigured, http.StatusServiceUnavailable},
		{ErrCodeReportGenerationFailed, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.code))
		})
	}
}

func TestConvertToBPMNError(t *testing.T) {
	t.Run("retryable keeps retry budget", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewCRMLeadCreateFailedError(stderrors.New("503")))
		assert.Equal(t, "CRM_UNAVAILABLE", bpmn.Code)
		assert.Equal(t, 3, bpmn.Retries)
		assert.True(t, bpmn.Retryable)

		vars := bpmn.ToErrorVariables()
		assert.Equal(t, "CRM_LEAD_CREATE_FAILED", vars["originalErrorCode"])
		assert.Equal(t, "CRM_UNAVAILABLE", vars["errorCode"])
	})

	t.Run("business error has no retries", func(t *testing.T) {
		bpmn := ConvertToBPMNError(NewInvalidAnswerError("option 9"))
		assert.Equal(t, "INVALID_ANSWER", bpmn.Code)
		assert.Zero(t, bpmn.Retries)
	})
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "ASSESSMENT", GetErrorCategory(ErrCodeSessionNotFound))
	assert.Equal(t, "ASSESSMENT", GetErrorCategory(ErrCodeQuestionSetUnavailable))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "SEARCH", GetErrorCategory(ErrCodeIndexNotFound))
	assert.Equal(t, "SECURITY", GetErrorCategory(ErrCodeCaptchaExpired))
	assert.Equal(t, "LEAD", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "REPORT", GetErrorCategory(ErrCodeReportGenerationFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeRequestValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory("UNKNOWN"))
}

func TestNormalize(t *testing.T) {
	std := Normalize(stderrors.New("kaboom"))
	assert.Equal(t, ErrorCode("INTERNAL_ERROR"), std.Code)
	assert.Equal(t, "kaboom", std.Details)

	orig := NewQueryTimeoutError("visa_questions").WithMetadata("visaType", "study")
	assert.Same(t, orig, Normalize(orig))
	assert.Equal(t, "study", orig.Metadata["visaType"])
}
