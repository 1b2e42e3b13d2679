package errors

import (
	"net/http"

	"github.com/go-chi/render"
)

// Error codes carried by APIError
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
)

// APIError is an error raised directly by an HTTP handler, with the status
// and code the client sees
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// Render implements render.Renderer
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError is one failed field of a request
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors lists every failed field of a request
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

var (
	ErrInvalidRequest     = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrDatasetUnavailable = New(http.StatusServiceUnavailable, CodeDatasetUnavailable, "Dataset is not loaded")
)

// NewValidationErrors builds a 400 carrying every failed field
func NewValidationErrors(errors []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errors},
	)
}
