// Package errors provides standardized error handling for the HTTP API and
// BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeQuestionSetUnavailable ErrorCode = "QUESTION_SET_UNAVAILABLE"
	ErrCodeInvalidVisaType        ErrorCode = "INVALID_VISA_TYPE"
	ErrCodeInvalidAnswer          ErrorCode = "INVALID_ANSWER"
	ErrCodeSessionNotFound        ErrorCode = "SESSION_NOT_FOUND"
	ErrCodeSessionConflict        ErrorCode = "SESSION_CONFLICT"
	ErrCodeSessionFinished        ErrorCode = "SESSION_FINISHED"

	ErrCodeBackendNotConfigured     ErrorCode = "BACKEND_NOT_CONFIGURED"
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeInvalidQueryType         ErrorCode = "INVALID_QUERY_TYPE"
	ErrCodeContentNotFound          ErrorCode = "CONTENT_NOT_FOUND"

	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"

	ErrCodeRequestValidationFailed ErrorCode = "REQUEST_VALIDATION_FAILED"
	ErrCodeCaptchaInvalid          ErrorCode = "CAPTCHA_INVALID"
	ErrCodeCaptchaExpired          ErrorCode = "CAPTCHA_EXPIRED"

	ErrCodeDatabaseInsertFailed ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeDuplicateEnquiry     ErrorCode = "DUPLICATE_ENQUIRY"

	ErrCodeCRMLeadCreateFailed    ErrorCode = "CRM_LEAD_CREATE_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeReportGenerationFailed ErrorCode = "REPORT_GENERATION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// WithMetadata attaches a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// As extracts a StandardError from an error chain.
func As(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := As(err)
	return ok && stdErr.Code == code
}

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewQuestionSetUnavailableError is raised when neither the backend nor the
// embedded dataset can provide questions for a visa type.
func NewQuestionSetUnavailableError(visaType string, err error) *StandardError {
	details := fmt.Sprintf("visaType: %s", visaType)
	if err != nil {
		details = fmt.Sprintf("%s, error: %s", details, err.Error())
	}
	return newError(ErrCodeQuestionSetUnavailable, "Question set unavailable", details, true)
}

func NewInvalidVisaTypeError(visaType string) *StandardError {
	return newError(ErrCodeInvalidVisaType, "Unsupported visa type", fmt.Sprintf("visaType: %s", visaType), false)
}

func NewInvalidAnswerError(details string) *StandardError {
	return newError(ErrCodeInvalidAnswer, "Answer does not match the current question", details, false)
}

func NewSessionNotFoundError(sessionID string) *StandardError {
	return newError(ErrCodeSessionNotFound, "Assessment session not found or expired", fmt.Sprintf("sessionId: %s", sessionID), false)
}

func NewSessionConflictError(sessionID string) *StandardError {
	return newError(ErrCodeSessionConflict, "Assessment session was modified concurrently", fmt.Sprintf("sessionId: %s", sessionID), true)
}

func NewSessionFinishedError(sessionID string) *StandardError {
	return newError(ErrCodeSessionFinished, "Assessment session already finished", fmt.Sprintf("sessionId: %s", sessionID), false)
}

// NewBackendNotConfiguredError marks a missing hosted backend configuration.
func NewBackendNotConfiguredError(backend string) *StandardError {
	return newError(ErrCodeBackendNotConfigured, "Backend not configured", fmt.Sprintf("backend: %s", backend), false)
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeQueryTimeout, "Database query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

// NewInvalidQueryTypeError creates a non-retryable invalid query type error.
func NewInvalidQueryTypeError(queryType string) *StandardError {
	return newError(ErrCodeInvalidQueryType, "Unsupported query type", fmt.Sprintf("queryType: %s", queryType), false)
}

func NewContentNotFoundError(kind, key string) *StandardError {
	return newError(ErrCodeContentNotFound, fmt.Sprintf("%s not found", kind), fmt.Sprintf("key: %s", key), false)
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeElasticsearchConnectionFailed, "Elasticsearch connection error", err.Error(), true)
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeSearchQueryFailed, "Elasticsearch query error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(queryType string) *StandardError {
	return newError(ErrCodeSearchTimeout, "Elasticsearch query timeout", fmt.Sprintf("queryType: %s", queryType), true)
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return newError(ErrCodeIndexNotFound, "Elasticsearch index not found", fmt.Sprintf("indexName: %s", indexName), false)
}

func NewRequestValidationFailedError(details string) *StandardError {
	return newError(ErrCodeRequestValidationFailed, "Request validation failed", details, false)
}

func NewCaptchaInvalidError(details string) *StandardError {
	return newError(ErrCodeCaptchaInvalid, "Captcha verification failed", details, false)
}

func NewCaptchaExpiredError(captchaID string) *StandardError {
	return newError(ErrCodeCaptchaExpired, "Captcha expired", fmt.Sprintf("captchaId: %s", captchaID), false)
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

func NewDuplicateEnquiryError(email string) *StandardError {
	return newError(ErrCodeDuplicateEnquiry, "Enquiry already received", fmt.Sprintf("email: %s", email), false)
}

func NewCRMLeadCreateFailedError(err error) *StandardError {
	return newError(ErrCodeCRMLeadCreateFailed, "CRM lead creation failed", err.Error(), true)
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()), true)
}

func NewReportGenerationFailedError(err error) *StandardError {
	return newError(ErrCodeReportGenerationFailed, "PDF report generation failed", err.Error(), false)
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return newError("EXTERNAL_SERVICE_ERROR", fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError("TIMEOUT_ERROR", fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes where the
// process model uses a different name.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeCaptchaExpired:      string(ErrCodeCaptchaInvalid),
	ErrCodeDuplicateEnquiry:    "ENQUIRY_DUPLICATE",
	ErrCodeCRMLeadCreateFailed: "CRM_UNAVAILABLE",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeCRMLeadCreateFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeQuestionSetUnavailable:
		return 3

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout:
		return 2

	case ErrCodeSessionConflict:
		return 1

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. HTTP Mapping
// ==========================

// HTTPStatus maps an error code to the status returned by the public API.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidVisaType,
		ErrCodeInvalidAnswer,
		ErrCodeRequestValidationFailed,
		ErrCodeInvalidQueryType:
		return http.StatusBadRequest
	case ErrCodeCaptchaInvalid, ErrCodeCaptchaExpired:
		return http.StatusUnprocessableEntity
	case ErrCodeSessionNotFound, ErrCodeContentNotFound, ErrCodeIndexNotFound:
		return http.StatusNotFound
	case ErrCodeSessionConflict, ErrCodeSessionFinished, ErrCodeDuplicateEnquiry:
		return http.StatusConflict
	case ErrCodeQueryTimeout, ErrCodeSearchTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeBackendNotConfigured,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeQuestionSetUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ==========================
// 6. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "SESSION") || strings.Contains(codeStr, "ANSWER") ||
		strings.Contains(codeStr, "QUESTION") || strings.Contains(codeStr, "VISA"):
		return "ASSESSMENT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") ||
		strings.Contains(codeStr, "BACKEND") || strings.Contains(codeStr, "CONTENT"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH") ||
		strings.Contains(codeStr, "INDEX"):
		return "SEARCH"
	case strings.Contains(codeStr, "CAPTCHA"):
		return "SECURITY"
	case strings.Contains(codeStr, "CRM") || strings.Contains(codeStr, "NOTIFICATION") ||
		strings.Contains(codeStr, "ENQUIRY"):
		return "LEAD"
	case strings.Contains(codeStr, "REPORT"):
		return "REPORT"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
