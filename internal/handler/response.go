package handler

import (
	"errors"
	"net/http"

	"github.com/cofoundry/gateway/internal/backend"
	"github.com/cofoundry/gateway/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://cofoundry.app/errors/validation"
	ErrorTypeNotFound     = "https://cofoundry.app/errors/not-found"
	ErrorTypeUnauthorized = "https://cofoundry.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://cofoundry.app/errors/forbidden"
	ErrorTypeConflict     = "https://cofoundry.app/errors/conflict"
	ErrorTypeTooLarge     = "https://cofoundry.app/errors/too-large"
	ErrorTypeUpstream     = "https://cofoundry.app/errors/upstream"
	ErrorTypeInternal     = "https://cofoundry.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail)
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusForbidden, ErrorTypeForbidden, "Forbidden", detail)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail)
}

// NewTooLargeError creates a payload too large error response
func NewTooLargeError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusRequestEntityTooLarge, ErrorTypeTooLarge, "Payload Too Large", detail)
}

// NewBadGatewayError creates an error response for an unreachable backend
func NewBadGatewayError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusBadGateway, ErrorTypeUpstream, "Bad Gateway", detail)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return newProblem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail)
}

func newProblem(c echo.Context, status int, typ, title, detail string) error {
	return c.JSON(status, ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// fieldErrors maps validation sentinels to the field they concern
var fieldErrors = []struct {
	err   error
	field string
}{
	{domain.ErrEquityTotal, "data.users"},
	{domain.ErrNoShareholders, "data.users"},
	{domain.ErrLabelRequired, "label"},
	{domain.ErrContentRequired, "content"},
	{domain.ErrTitleRequired, "title"},
	{domain.ErrSummaryRequired, "summary"},
	{domain.ErrInvalidTag, "tag"},
	{domain.ErrInvalidStage, "stage"},
	{domain.ErrInvalidStatus, "status"},
	{domain.ErrInvalidCategory, "category"},
	{domain.ErrInvalidProgress, "progress_percent"},
	{domain.ErrInvalidHours, "weekly_commitment_hours"},
}

// respondError translates a service error into a Problem Details response.
// Backend errors keep the backend's status and message.
func respondError(c echo.Context, err error, action string) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			return NewValidationError(c, "Validation failed", []ValidationError{
				{Field: fe.field, Message: fe.err.Error()},
			})
		}
	}

	var apiErr *backend.APIError
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrWorkspaceRequired):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrIdentityRequired), errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		return NewForbiddenError(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrScenarioLocked):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrFileTooLarge):
		return NewTooLargeError(c, err.Error())
	case errors.As(err, &apiErr):
		return c.JSON(apiErr.Status, ProblemDetails{
			Type:     problemType(apiErr.Status),
			Title:    http.StatusText(apiErr.Status),
			Status:   apiErr.Status,
			Detail:   apiErr.Message,
			Instance: c.Request().URL.Path,
		})
	case errors.Is(err, backend.ErrUnavailable):
		log.Warn().Err(err).Str("path", c.Request().URL.Path).Msg(action + ": backend unavailable")
		return NewBadGatewayError(c, "Backend unavailable")
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(action)
	return NewInternalError(c, action)
}

func problemType(status int) string {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrorTypeValidation
	case http.StatusUnauthorized:
		return ErrorTypeUnauthorized
	case http.StatusForbidden:
		return ErrorTypeForbidden
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusConflict:
		return ErrorTypeConflict
	case http.StatusRequestEntityTooLarge:
		return ErrorTypeTooLarge
	}
	if status >= 500 {
		return ErrorTypeUpstream
	}
	return ErrorTypeInternal
}
