package http

import (
	"fmt"
	"net/http"
	"time"
)

// Error codes returned in AppError.Code.
const (
	CodeNotFound          = "ERR_NOT_FOUND"
	CodeRateLimited       = "ERR_RATE_LIMITED"
	CodeUnavailable       = "ERR_UNAVAILABLE"
	CodeInternal          = "ERR_INTERNAL"
	CodeInvalidMarketCap  = "ERR_INVALID_MARKET_CAP"
	CodeSessionNotFound   = "ERR_SESSION_NOT_FOUND"
	CodeAnalysisNotCached = "ERR_ANALYSIS_NOT_CACHED"
)

// AppError is a domain failure rendered with an HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
	// RetryAfter is sent as the Retry-After header when positive.
	RetryAfter time.Duration `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Code, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError builds an error with the given code and status.
func NewAppError(code, message string, status int) *AppError {
	return &AppError{Code: code, Message: message, Status: status}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error. It is logged, never rendered.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// WithRetryAfter tells the client when to try again.
func (e *AppError) WithRetryAfter(d time.Duration) *AppError {
	e.RetryAfter = d
	return e
}

func NotFoundError(message string) *AppError {
	return NewAppError(CodeNotFound, message, http.StatusNotFound)
}

func NotFoundErrorf(format string, a ...interface{}) *AppError {
	return NotFoundError(fmt.Sprintf(format, a...))
}

// UnprocessableError is for well-formed requests the domain refuses.
func UnprocessableError(code, message string) *AppError {
	return NewAppError(code, message, http.StatusUnprocessableEntity)
}

func TooManyRequestsError(message string) *AppError {
	return NewAppError(CodeRateLimited, message, http.StatusTooManyRequests)
}

// ServiceUnavailableError reports an upstream (market or model API) failure.
func ServiceUnavailableError(message string) *AppError {
	return NewAppError(CodeUnavailable, message, http.StatusServiceUnavailable)
}

func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, message, http.StatusInternalServerError)
}
