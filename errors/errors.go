package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode identifies the error class an AppError belongs to.
type ErrorCode string

const (
	ErrorCode_INTERNAL          ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT  ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NETWORK           ErrorCode = "NETWORK"
	ErrorCode_SERVER            ErrorCode = "SERVER"
	ErrorCode_PAYLOAD           ErrorCode = "PAYLOAD"
	ErrorCode_JOB_FAILED        ErrorCode = "JOB_FAILED"
	ErrorCode_FILE_TOO_LARGE    ErrorCode = "FILE_TOO_LARGE"
	ErrorCode_NOT_FOUND         ErrorCode = "NOT_FOUND"
	ErrorCode_HISTORY_FAILED    ErrorCode = "HISTORY_FAILED"
	ErrorCode_BACKEND_UNHEALTHY ErrorCode = "BACKEND_UNHEALTHY"
)

func (c ErrorCode) String() string { return string(c) }

// AppError is the custom error type for the application
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

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e AppError) Unwrap() error { return e.Raw }

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
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

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  message,
	}
}

// Validation Errors (raised synchronously, never retried)

func ErrMissingJobID() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  "Job ID is required",
	}
}

func ErrMissingTranscript() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  "No transcript available. Please upload audio or enter text first.",
	}
}

func ErrTranscriptTooLong(length, limit int) AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  "Transcript exceeds the maximum length",
	}.WithDetail("length", fmt.Sprintf("%d", length)).
		WithDetail("limit", fmt.Sprintf("%d", limit))
}

func ErrNoParticipants() AppError {
	return AppError{
		HTTPCode: http.StatusBadRequest,
		Code:     ErrorCode_INVALID_ARGUMENT,
		Message:  "Could not identify participants. Please enter participants manually.",
	}
}

// Network Errors (connection refused / timeout)

func ErrNetwork(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_NETWORK,
		Message:  "Cannot connect to the server. Please check your network connection and make sure the API server is running.",
	}
}

func ErrBackendUnreachable(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusServiceUnavailable,
		Code:     ErrorCode_BACKEND_UNHEALTHY,
		Message:  "Cannot connect to the API server. Please check your backend is running.",
	}
}

// Server-reported failures (HTTP 4xx/5xx, structured detail passed through)

func ErrServer(httpCode int, detail string) AppError {
	msg := detail
	if msg == "" {
		msg = fmt.Sprintf("Server returned status %d", httpCode)
	}
	return AppError{
		HTTPCode: httpCode,
		Code:     ErrorCode_SERVER,
		Message:  msg,
	}
}

func ErrFileTooLarge() AppError {
	return AppError{
		HTTPCode: http.StatusRequestEntityTooLarge,
		Code:     ErrorCode_FILE_TOO_LARGE,
		Message:  "File is too large. Please try a smaller file.",
	}
}

func ErrNoJobID() AppError {
	return AppError{
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_SERVER,
		Message:  "No job ID received from server",
	}
}

func ErrJobFailed(message string) AppError {
	if message == "" {
		message = "Processing failed"
	}
	return AppError{
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_JOB_FAILED,
		Message:  message,
	}
}

// Payload-shape errors (decode failures of the response envelope itself;
// missing fields inside a result are defaulted, not raised)

func ErrPayload(err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusBadGateway,
		Code:     ErrorCode_PAYLOAD,
		Message:  "Unexpected response from server",
	}
}

// History Errors

func ErrHistoryFailed(operation string, err error) AppError {
	return AppError{
		Raw:      err,
		HTTPCode: http.StatusInternalServerError,
		Code:     ErrorCode_HISTORY_FAILED,
		Message:  fmt.Sprintf("Job history operation failed: %s", operation),
	}
}

func ErrJobNotFound(jobID string) AppError {
	return AppError{
		HTTPCode: http.StatusNotFound,
		Code:     ErrorCode_NOT_FOUND,
		Message:  "Job not found",
	}.WithDetail("job_id", jobID)
}

// IsNetwork reports whether err is a network-class AppError. Polling
// terminates only on this class; every other poll error keeps the loop alive.
func IsNetwork(err error) bool {
	var app AppError
	if errors.As(err, &app) {
		return app.Code == ErrorCode_NETWORK || app.Code == ErrorCode_BACKEND_UNHEALTHY
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or ErrorCode_INTERNAL for plain errors.
func CodeOf(err error) ErrorCode {
	var app AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return ErrorCode_INTERNAL
}
