package http

import (
	"fmt"
	"net/http"
)

// Error codes carried in AppError.Code.
const (
	CodeInvalidDate      = "ERR_INVALID_DATE"
	CodeInvalidRange     = "ERR_INVALID_RANGE"
	CodeInsufficientData = "ERR_INSUFFICIENT_DATA"
	CodeRateLimited      = "ERR_RATE_LIMITED"
	CodeInternal         = "ERR_INTERNAL"
)

// AppError is an error that knows its HTTP status and client-facing code.
type AppError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Params  map[string]any `json:"params,omitempty"`
	Status  int            `json:"-"`
	Err     error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates an application error for field (may be empty).
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{Code: code, Field: field, Message: message, Status: status}
}

// WithParam attaches a machine-readable detail.
func (e *AppError) WithParam(key string, value any) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]any, 1)
	}
	e.Params[key] = value
	return e
}

// WithError records the cause; it is never serialized.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// InvalidDateError reports a query date that matches no accepted layout.
func InvalidDateError(field string) *AppError {
	return NewAppError(CodeInvalidDate, field, field+" is not a valid date", http.StatusBadRequest)
}

// InvalidRangeError reports a window whose start is after its end.
func InvalidRangeError(from, to string) *AppError {
	return NewAppError(CodeInvalidRange, "", from+" must not be after "+to, http.StatusBadRequest)
}

// InsufficientDataError is a 422: the request was valid but the selected
// window has too few rows to fit and score a model.
func InsufficientDataError(stage string, got, need int) *AppError {
	return NewAppError(CodeInsufficientData, "",
		fmt.Sprintf("not enough rows for %s: got %d, need %d", stage, got, need),
		http.StatusUnprocessableEntity).
		WithParam("stage", stage).
		WithParam("got", got).
		WithParam("need", need)
}

// TooManyRequestsError is a 429.
func TooManyRequestsError() *AppError {
	return NewAppError(CodeRateLimited, "", "rate limit exceeded", http.StatusTooManyRequests)
}

// InternalError is a 500 whose message is safe to show.
func InternalError(message string) *AppError {
	return NewAppError(CodeInternal, "", message, http.StatusInternalServerError)
}
