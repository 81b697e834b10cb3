package api

import (
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap maps the backend status onto the shared sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidInput
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	case http.StatusConflict:
		return apperrors.ErrConflict
	default:
		return apperrors.ErrUpstream
	}
}

// ToAppError converts an *APIError into an AppError for the HTTP surface.
// Backend 4xx statuses and messages pass through; 5xx become 502. Other
// errors are returned unchanged.
func ToAppError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	status := apiErr.Status
	if status < 400 || status >= 500 {
		return apperrors.Upstream(apiErr.Message, err)
	}

	code := "BACKEND_ERROR"
	switch {
	case errors.Is(apiErr, apperrors.ErrNotFound):
		code = "NOT_FOUND"
	case errors.Is(apiErr, apperrors.ErrInvalidInput):
		code = "INVALID_INPUT"
	case errors.Is(apiErr, apperrors.ErrUnauthorized):
		code = "UNAUTHORIZED"
	case errors.Is(apiErr, apperrors.ErrForbidden):
		code = "FORBIDDEN"
	case errors.Is(apiErr, apperrors.ErrConflict):
		code = "CONFLICT"
	}
	return &apperrors.AppError{
		Code:    code,
		Message: apiErr.Message,
		Status:  status,
		Err:     fmt.Errorf("backend %d: %w", status, err),
	}
}
