package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	apierrors "escolacli/internal/errors"
)

// ValidationMiddleware validates request structs using struct tags
type ValidationMiddleware struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewValidationMiddleware creates a validator that reports fields by their JSON names
func NewValidationMiddleware(logger *slog.Logger) *ValidationMiddleware {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("printable", isPrintable)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &ValidationMiddleware{
		validator: v,
		logger:    logger.With(slog.String("component", "validation_middleware")),
	}
}

// ValidateStruct validates a struct and returns an APIError listing every failed field
func (m *ValidationMiddleware) ValidateStruct(v interface{}) error {
	err := m.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.New(http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: m.formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func (m *ValidationMiddleware) formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "printable":
		return fmt.Sprintf("%s must not contain control characters", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isPrintable rejects strings with control characters
func isPrintable(fl validator.FieldLevel) bool {
	for _, r := range fl.Field().String() {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
