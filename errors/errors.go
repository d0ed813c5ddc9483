package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies a failure class across the core. Codes are stable
// strings so the presentation layer can switch on them.
type ErrorCode string

const (
	ErrorCode_INTERNAL            ErrorCode = "INTERNAL"
	ErrorCode_INVALID_INPUT       ErrorCode = "INVALID_INPUT"
	ErrorCode_PARSE_FAILED        ErrorCode = "PARSE_FAILED"
	ErrorCode_PAYLOAD_TOO_LARGE   ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrorCode_DEVICE_BUSY         ErrorCode = "DEVICE_BUSY"
	ErrorCode_DEVICE_UNAVAILABLE  ErrorCode = "DEVICE_UNAVAILABLE"
	ErrorCode_AUTH_FAILED         ErrorCode = "AUTH_FAILED"
	ErrorCode_RATE_LIMITED        ErrorCode = "RATE_LIMITED"
	ErrorCode_TIMEOUT             ErrorCode = "TIMEOUT"
	ErrorCode_SERVICE_UNAVAILABLE ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorCode_SCORING_CONFIG      ErrorCode = "SCORING_CONFIG"
	ErrorCode_SESSION_NOT_FOUND   ErrorCode = "SESSION_NOT_FOUND"
	ErrorCode_MODEL_NOT_LOADED    ErrorCode = "MODEL_NOT_LOADED"
)

// String returns the code as a plain string.
func (c ErrorCode) String() string {
	return string(c)
}

// AppError is the custom error type carried across component boundaries.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf extracts the ErrorCode from err, or INTERNAL when err is not an
// AppError.
func CodeOf(err error) ErrorCode {
	var ae AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrorCode_INTERNAL
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// General Errors

func ErrInternal(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_INTERNAL,
		Message:  "Internal error",
	}
}

// ErrInvalidInput covers empty or malformed transcripts and bad request
// parameters. Never retried, surfaced immediately.
func ErrInvalidInput(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_INPUT,
		Message:  message,
	}
}

// Feedback / AI Errors

// ErrParseFailed indicates the AI response did not match the expected
// structure. The feedback engine recovers from this locally; it is not
// surfaced to callers.
func ErrParseFailed(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_PARSE_FAILED,
		Message:  "Failed to parse AI response",
	}
}

func ErrAuthFailed(service string) AppError {
	return AppError{
		HTTPCode: http.StatusUnauthorized,
		Code:     ErrorCode_AUTH_FAILED,
		Message:  "Authentication with external service failed",
	}.WithDetail("service", service)
}

func ErrRateLimited(service string) AppError {
	return AppError{
		HTTPCode: http.StatusTooManyRequests,
		Code:     ErrorCode_RATE_LIMITED,
		Message:  "Rate limit exceeded",
	}.WithDetail("service", service)
}

func ErrTimeout(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusGatewayTimeout,
		Code:     ErrorCode_TIMEOUT,
		Message:  "External service timed out",
	}.WithDetail("service", service)
}

func ErrServiceUnavailable(service string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_SERVICE_UNAVAILABLE,
		Message:  "External service unavailable",
	}.WithDetail("service", service)
}

// ErrScoringConfig indicates a scoring configuration invariant violation
// (weights not summing to 1.0). Fatal at startup, never recoverable at
// runtime.
func ErrScoringConfig(message string) AppError {
	return AppError{
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_SCORING_CONFIG,
		Message:  message,
	}
}

// Audio / Transcription Errors

func ErrDeviceBusy(deviceID int) AppError {
	return AppError{
		HTTPCode: http.StatusConflict,
		Code:     ErrorCode_DEVICE_BUSY,
		Message:  "Capture device already has an open session",
	}.WithDetail("device_id", fmt.Sprintf("%d", deviceID))
}

func ErrDeviceUnavailable(deviceID int, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_DEVICE_UNAVAILABLE,
		Message:  "Capture device unavailable",
	}.WithDetail("device_id", fmt.Sprintf("%d", deviceID))
}

// ErrPayloadTooLarge indicates an audio buffer exceeds the active
// backend's input limit. Surfaced immediately, never retried.
func ErrPayloadTooLarge(backend string, size, limit int) AppError {
	return AppError{
		HTTPCode: http.StatusRequestEntityTooLarge,
		Code:     ErrorCode_PAYLOAD_TOO_LARGE,
		Message:  "Audio payload exceeds backend limit",
	}.WithDetail("backend", backend).
		WithDetail("size_bytes", fmt.Sprintf("%d", size)).
		WithDetail("limit_bytes", fmt.Sprintf("%d", limit))
}

func ErrModelNotLoaded(model string) AppError {
	return AppError{
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_MODEL_NOT_LOADED,
		Message:  "Local transcription model not loaded",
	}.WithDetail("model", model)
}

func ErrSessionNotFound(sessionID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_SESSION_NOT_FOUND,
		Message:  "Recording session not found",
	}.WithDetail("session_id", sessionID)
}
