package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrConflict           = errors.New("record changed concurrently")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrUnavailable        = errors.New("service unavailable")
	ErrCaptchaRequired    = errors.New("captcha required")
	ErrCaptchaFailed      = errors.New("captcha verification failed")
	ErrPollTimeout        = errors.New("polling timed out")
	ErrNotConfigured      = errors.New("integration not configured")
)

// FromStatus classifies an upstream HTTP status code.
func FromStatus(code int) error {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrInvalidInput
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrAlreadyExists
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return ErrUnavailable
	default:
		return fmt.Errorf("unexpected upstream status %d", code)
	}
}

// HTTPStatus picks the response code for err.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrCaptchaRequired):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrCaptchaFailed):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrPollTimeout):
		return http.StatusAccepted
	case errors.Is(err, ErrNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// UserMessage returns the text shown to end users for err.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, ErrUnauthorized):
		return "your session has expired, please sign in again"
	case errors.Is(err, ErrForbidden):
		return "you do not have access to this resource"
	case errors.Is(err, ErrNotFound):
		return "the requested resource was not found"
	case errors.Is(err, ErrInvalidInput):
		return "the request is invalid"
	case errors.Is(err, ErrCaptchaRequired):
		return "please complete the captcha"
	case errors.Is(err, ErrCaptchaFailed):
		return "captcha verification failed"
	case errors.Is(err, ErrAlreadyExists):
		return "the resource already exists"
	case errors.Is(err, ErrConflict):
		return "the resource was changed, reload and try again"
	case errors.Is(err, ErrPollTimeout):
		return "your order is still being processed, refresh the status in a moment"
	case errors.Is(err, ErrNotConfigured):
		return "this feature is not available"
	default:
		return "service is temporarily unavailable, please retry"
	}
}
