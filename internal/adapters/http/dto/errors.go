// Package dto provides Data Transfer Objects for HTTP request/response handling
// and the mapping from domain errors to the API error envelope.
package dto

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/contentslots/internal/domain"
	"github.com/jsamuelsen/contentslots/internal/platform/logging"
)

// ErrorResponse is the standard error envelope for all error responses.
type ErrorResponse struct {
	Error   ErrorDetail `json:"error"`
	TraceID string      `json:"traceId,omitempty"`
}

// ErrorDetail contains the error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "NOT_FOUND", "VALIDATION_ERROR").
	Code string `json:"code"`

	// Message is a human-readable error message.
	Message string `json:"message"`

	// Details provides additional context about the error.
	// For validation errors, this contains field-level error messages.
	Details map[string]string `json:"details,omitempty"`
}

// Error codes for machine-readable error identification.
const (
	ErrorCodeNotFound       = "NOT_FOUND"
	ErrorCodeConflict       = "CONFLICT"
	ErrorCodeDuplicateEntry = "DUPLICATE_ENTRY"
	ErrorCodeValidation     = "VALIDATION_ERROR"
	ErrorCodeForbidden      = "FORBIDDEN"
	ErrorCodeUnauthorized   = "UNAUTHORIZED"
	ErrorCodeUnavailable    = "SERVICE_UNAVAILABLE"
	ErrorCodeStorage        = "STORAGE_ERROR"
	ErrorCodeInternal       = "INTERNAL_ERROR"
	ErrorCodeTimeout        = "TIMEOUT"
	ErrorCodeBadRequest     = "BAD_REQUEST"
)

// retryAfterSeconds is advertised on 503 responses.
const retryAfterSeconds = "1"

// NewErrorResponse creates a new error response with the given code and message.
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	}
}

// NewErrorResponseWithDetails creates an error response with additional details.
func NewErrorResponseWithDetails(code, message string, details map[string]string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// WithTraceID adds a trace ID to the error response.
func (e *ErrorResponse) WithTraceID(traceID string) *ErrorResponse {
	e.TraceID = traceID
	return e
}

// HTTPStatusFromCode maps error codes to HTTP status codes.
func HTTPStatusFromCode(code string) int {
	switch code {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeConflict, ErrorCodeDuplicateEntry:
		return http.StatusConflict
	case ErrorCodeValidation, ErrorCodeBadRequest:
		return http.StatusBadRequest
	case ErrorCodeForbidden:
		return http.StatusForbidden
	case ErrorCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MapDomainError maps a domain error to an HTTP status code and error response.
// Storage and unknown errors get a generic message so driver details stay internal.
// Pool exhaustion and an open breaker answer 503 so clients retry.
func MapDomainError(err error) (int, *ErrorResponse) {
	if err == nil {
		return http.StatusOK, nil
	}

	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound, NewErrorResponse(ErrorCodeNotFound, err.Error())

	case domain.IsDuplicateEntry(err):
		resp := NewErrorResponse(ErrorCodeDuplicateEntry, "a content slot already occupies this cell")

		var dupErr *domain.DuplicateEntryError
		if errors.As(err, &dupErr) && dupErr.Code != "" {
			resp.Error.Details = map[string]string{"storageCode": dupErr.Code}
		}

		return http.StatusConflict, resp

	case domain.IsConflict(err):
		return http.StatusConflict, NewErrorResponse(ErrorCodeConflict, err.Error())

	case domain.IsValidation(err):
		resp := NewErrorResponse(ErrorCodeValidation, err.Error())

		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) && validationErr.Field != "" {
			resp.Error.Details = map[string]string{
				validationErr.Field: validationErr.Message,
			}
		}

		return http.StatusBadRequest, resp

	case domain.IsUnavailable(err):
		return http.StatusServiceUnavailable, NewErrorResponse(ErrorCodeUnavailable, "the content store is temporarily unavailable")

	case domain.IsStorage(err):
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeStorage, "a storage error occurred")

	default:
		return http.StatusInternalServerError, NewErrorResponse(ErrorCodeInternal, "an internal error occurred")
	}
}

// GetTraceID returns the OpenTelemetry trace ID of the request, or "".
func GetTraceID(c *gin.Context) string {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}

	return ""
}

// HandleError writes the error response for err. Server-side failures are
// logged with full detail, including the storage code when there is one.
func HandleError(c *gin.Context, err error) {
	status, resp := MapDomainError(err)
	resp.TraceID = GetTraceID(c)

	if status >= http.StatusInternalServerError {
		attrs := []any{
			slog.Any("error", err),
			slog.String(logging.KeyTraceID, resp.TraceID),
		}

		var storageErr *domain.StorageError
		if errors.As(err, &storageErr) {
			attrs = append(attrs, slog.String("storage_code", storageErr.Code), slog.String("storage_op", storageErr.Op))
		}

		logging.FromContext(c.Request.Context()).ErrorContext(c.Request.Context(), "request failed", attrs...)
	}

	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", retryAfterSeconds)
	}

	c.JSON(status, resp)
}

// RespondWithErrorCode writes an error response with a specific error code.
// Use it for adapter-level failures that do not originate from domain errors.
func RespondWithErrorCode(c *gin.Context, code, message string) {
	c.JSON(HTTPStatusFromCode(code), NewErrorResponse(code, message).WithTraceID(GetTraceID(c)))
}

// RespondWithValidationErrors writes a 400 response with field-level validation errors.
func RespondWithValidationErrors(c *gin.Context, fieldErrors map[string]string) {
	c.JSON(http.StatusBadRequest, NewErrorResponseWithDetails(
		ErrorCodeValidation,
		"request validation failed",
		fieldErrors,
	).WithTraceID(GetTraceID(c)))
}
