package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/npezzotti/go-opschat/internal/chat"
)

type ApiError struct {
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Err        error             `json:"-"`
}

func (e *ApiError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}

	return e.Message
}

func (e *ApiError) Unwrap() error {
	return e.Err
}

func lower(s string) string {
	return strings.ToLower(s)
}

func newApiError(statusCode int) *ApiError {
	return &ApiError{
		StatusCode: statusCode,
		Message:    lower(http.StatusText(statusCode)),
	}
}

func NewBadRequestError() *ApiError {
	return newApiError(http.StatusBadRequest)
}

func NewValidationError(details map[string]string) *ApiError {
	e := newApiError(http.StatusBadRequest)
	e.Details = details
	return e
}

func NewNotFoundError() *ApiError {
	return newApiError(http.StatusNotFound)
}

func NewInternalServerError(err error) *ApiError {
	e := newApiError(http.StatusInternalServerError)
	e.Err = err
	return e
}

func NewUnauthorizedError() *ApiError {
	return newApiError(http.StatusUnauthorized)
}

func NewForbiddenError() *ApiError {
	return newApiError(http.StatusForbidden)
}

func NewConflictError(err error) *ApiError {
	e := newApiError(http.StatusConflict)
	e.Err = err
	return e
}

func NewGoneError() *ApiError {
	return newApiError(http.StatusGone)
}

// errorFromService maps an error returned by the chat service to the
// response sent to the client.
func errorFromService(err error) *ApiError {
	var vErr *chat.ValidationError
	switch {
	case errors.As(err, &vErr):
		return NewValidationError(map[string]string{vErr.Field: vErr.Message})
	case errors.Is(err, chat.ErrNotFound):
		return NewNotFoundError()
	case errors.Is(err, chat.ErrForbidden):
		return NewForbiddenError()
	case errors.Is(err, chat.ErrGone):
		return NewGoneError()
	case errors.Is(err, chat.ErrConflict):
		e := NewConflictError(err)
		e.Message = err.Error()
		return e
	default:
		return NewInternalServerError(err)
	}
}
