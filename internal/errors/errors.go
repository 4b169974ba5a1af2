package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	errbuilder "github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/gin-gonic/gin"
)

// Category classifies an error for handling and logging.
type Category string

const (
	CategoryValidation    Category = "validation"
	CategoryNetwork       Category = "network"
	CategoryTimeout       Category = "timeout"
	CategoryExternalAPI   Category = "external_api"
	CategoryStorage       Category = "storage"
	CategoryInternal      Category = "internal"
	CategoryConfiguration Category = "configuration"
)

// AppError wraps an errbuilder error with service-level context. The scoring
// engine itself never produces errors; everything here originates in the
// surrounding adapters, storage and HTTP layers.
type AppError struct {
	*errbuilder.ErrBuilder
	Category   Category  `json:"category"`
	HTTPStatus int       `json:"http_status"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(e.Category)), e.ErrBuilder.Msg)
}

func (e *AppError) Unwrap() error {
	return e.ErrBuilder.Unwrap()
}

func newAppError(builder *errbuilder.ErrBuilder, category Category, status int) *AppError {
	return &AppError{
		ErrBuilder: builder,
		Category:   category,
		HTTPStatus: status,
		Timestamp:  time.Now(),
	}
}

// NewValidationError reports a malformed client request.
func NewValidationError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryValidation, http.StatusBadRequest)
}

// NewExternalAPIError reports a failed call to a metric source.
func NewExternalAPIError(apiName string, cause error) *AppError {
	errMap := errbuilder.ErrorMap{}
	errMap.Set("api_name", errors.New(apiName))

	builder := errbuilder.New().
		WithCode(errbuilder.CodeUnavailable).
		WithMsg(fmt.Sprintf("%s API error", apiName)).
		WithDetails(errbuilder.NewErrDetails(errMap))
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryExternalAPI, http.StatusBadGateway)
}

// NewTimeoutError reports an upstream deadline or cancellation.
func NewTimeoutError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeDeadlineExceeded).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryTimeout, http.StatusGatewayTimeout)
}

// NewStorageError reports a snapshot persistence failure.
func NewStorageError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryStorage, http.StatusInternalServerError)
}

// NewInternalError reports an unexpected failure.
func NewInternalError(message string, cause error) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg(message)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return newAppError(builder, CategoryInternal, http.StatusInternalServerError)
}

// NewConfigurationError reports invalid service configuration.
func NewConfigurationError(message string) *AppError {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(message)
	return newAppError(builder, CategoryConfiguration, http.StatusInternalServerError)
}

// ToAppError coerces any error into an AppError, classifying common network
// and context failures.
func ToAppError(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.Canceled) {
		return NewTimeoutError("request cancelled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError("request deadline exceeded", err)
	}
	msg := err.Error()
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") {
		return NewExternalAPIError("upstream", err)
	}
	return NewInternalError("unexpected error", err)
}

// Respond writes an AppError as a JSON response.
func Respond(c *gin.Context, err error) {
	appErr := ToAppError(err)
	c.JSON(appErr.HTTPStatus, gin.H{
		"error":    appErr.ErrBuilder.Msg,
		"category": appErr.Category,
	})
}
