package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/FACorreiaa/ach-dashboard/internal/app/models"
)

// APIError is a backend response that was not a success. Status is the HTTP status code.
type APIError struct {
	Status   int
	Message  string
	Envelope models.Envelope[json.RawMessage]
}

func newAPIError(status int, payload []byte) *APIError {
	e := &APIError{Status: status}
	if err := json.Unmarshal(payload, &e.Envelope); err == nil {
		e.Message = e.Envelope.Error
		if e.Message == "" {
			e.Message = e.Envelope.Message
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	if e.Message == "" {
		e.Message = fmt.Sprintf("request failed with status %d", status)
	}
	return e
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) HTTPStatus() int {
	return e.Status
}

// Is maps backend statuses onto the shared model errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case models.ErrUnauthenticated:
		return e.Status == http.StatusUnauthorized
	case models.ErrForbidden:
		return e.Status == http.StatusForbidden
	case models.ErrNotFound:
		return e.Status == http.StatusNotFound
	case models.ErrBadRequest:
		return e.Status == http.StatusBadRequest
	case models.ErrValidation:
		return e.Status == http.StatusUnprocessableEntity
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0 for transport and local failures.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func IsClientError(err error) bool {
	s := StatusCode(err)
	return s >= 400 && s < 500
}

func IsServerError(err error) bool {
	return StatusCode(err) >= 500
}

// ErrorMessage is the short user-facing text of err: the backend's envelope message for API
// errors, a generic message otherwise.
func ErrorMessage(err error) string {
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, context.DeadlineExceeded):
		return "The server took too long to respond"
	default:
		return "Unable to reach the server"
	}
}
