package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Common error types following RFC 7807
const (
	TypeValidation  = "/errors/validation"
	TypeNotFound    = "/errors/not-found"
	TypeRateLimit   = "/errors/rate-limit"
	TypeInternal    = "/errors/internal"
	TypeServiceDown = "/errors/service-unavailable"
	TypeTimeout     = "/errors/timeout"
)

// Domain-specific error types
const (
	TypeDataMissing = "/errors/data/missing"
	TypeDataSchema  = "/errors/data/schema"
	TypeStorage     = "/errors/data/storage"
	TypeConfig      = "/errors/config"
)

// ErrorHandler provides centralized error handling
type ErrorHandler struct {
	logger       *slog.Logger
	includeStack bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeStack bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeStack: includeStack,
	}
}

// HandleError converts any error to RFC 7807 format and responds
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())
	problem := h.ErrorToProblem(err, r)

	level := slog.LevelWarn
	if problem.Status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(r.Context(), level, "request failed",
		slog.String("error", err.Error()),
		slog.Int("status", problem.Status),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	problem.WithExtension("trace_id", reqID)

	if h.includeStack {
		problem.WithExtension("stack", getStackTrace())
	}

	_ = render.Render(w, r, problem)
}

// ErrorToProblem converts an error to RFC 7807 Problem Details
func (h *ErrorHandler) ErrorToProblem(err error, r *http.Request) *ProblemDetails {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewProblemDetails(
			http.StatusGatewayTimeout,
			TypeTimeout,
			"Request Timeout",
			"The request took too long to process and was cancelled",
			r.URL.Path,
		)
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return h.apiErrorToProblem(apiErr, r)
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return h.appErrorToProblem(appErr, r)
	}

	return NewProblemDetails(
		http.StatusInternalServerError,
		TypeInternal,
		"Internal Server Error",
		"An unexpected error occurred while processing your request",
		r.URL.Path,
	)
}

// appErrorToProblem maps application error types to HTTP problems
func (h *ErrorHandler) appErrorToProblem(appErr *AppError, r *http.Request) *ProblemDetails {
	var (
		status      int
		problemType string
	)

	switch appErr.Type {
	case ErrTypeValidation:
		status, problemType = http.StatusBadRequest, TypeValidation
	case ErrTypeNotFound:
		status, problemType = http.StatusNotFound, TypeNotFound
	case ErrTypeMissingInput:
		status, problemType = http.StatusServiceUnavailable, TypeDataMissing
	case ErrTypeSchema:
		status, problemType = http.StatusInternalServerError, TypeDataSchema
	case ErrTypeStorage:
		status, problemType = http.StatusInternalServerError, TypeStorage
	case ErrTypeConfig:
		status, problemType = http.StatusInternalServerError, TypeConfig
	default:
		status, problemType = http.StatusInternalServerError, TypeInternal
	}

	problem := NewProblemDetails(
		status,
		problemType,
		http.StatusText(status),
		appErr.Message,
		r.URL.Path,
	).WithExtension("error_type", string(appErr.Type))

	if len(appErr.Context) > 0 && status < http.StatusInternalServerError {
		problem.WithExtension("context", appErr.Context)
	}

	return problem
}

// apiErrorToProblem converts APIError to ProblemDetails
func (h *ErrorHandler) apiErrorToProblem(apiErr *APIError, r *http.Request) *ProblemDetails {
	problemType := TypeInternal
	switch apiErr.ErrorCode {
	case CodeValidationFailed, CodeInvalidRequest:
		problemType = TypeValidation
	case CodeNotFound:
		problemType = TypeNotFound
	case CodeDatasetUnavailable:
		problemType = TypeServiceDown
	}

	problem := NewProblemDetails(
		apiErr.StatusCode,
		problemType,
		http.StatusText(apiErr.StatusCode),
		apiErr.Message,
		r.URL.Path,
	).WithExtension("error_code", apiErr.ErrorCode)

	if apiErr.Details != nil {
		problem.WithExtension("details", apiErr.Details)
	}

	return problem
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusNotFound,
		TypeNotFound,
		"Not Found",
		"The requested resource was not found",
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	_ = render.Render(w, r, problem)
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	problem := NewProblemDetails(
		http.StatusMethodNotAllowed,
		TypeInternal,
		"Method Not Allowed",
		fmt.Sprintf("Method %s is not allowed for this endpoint", r.Method),
		r.URL.Path,
	).WithExtension("trace_id", middleware.GetReqID(r.Context()))

	_ = render.Render(w, r, problem)
}

// getStackTrace returns the current stack trace
func getStackTrace() string {
	buf := make([]byte, 1024*8)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
