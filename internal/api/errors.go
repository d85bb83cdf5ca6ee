// Copyright (c) 2025 Million Media
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ActionError is the normalized failure shape for every backend call.
// All transport, decode, and server-side failures collapse into this one
// type, so callers never see raw net/http errors.
type ActionError struct {
	// Reason is a short machine-oriented category.
	Reason string `json:"error"`

	// Message is the human-readable description, taken from the backend
	// response body when one was available.
	Message string `json:"message"`

	// StatusCode is the HTTP status, or 500 when the request never
	// produced a response.
	StatusCode int `json:"statusCode"`

	cause error
}

func (e *ActionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Reason
}

func (e *ActionError) Unwrap() error {
	return e.cause
}

// Reason categories.
const (
	ReasonRequest  = "request_failed"
	ReasonResponse = "invalid_response"
	ReasonServer   = "server_error"
	ReasonTimeout  = "timeout"
)

// normalizeError wraps any error into an *ActionError. Errors that are
// already normalized pass through unchanged.
func normalizeError(err error) *ActionError {
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return actionErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &ActionError{
			Reason:     ReasonTimeout,
			Message:    "request timed out",
			StatusCode: http.StatusGatewayTimeout,
			cause:      err,
		}
	}

	msg := "an unknown error occurred"
	if err != nil {
		msg = err.Error()
	}
	return &ActionError{
		Reason:     ReasonRequest,
		Message:    msg,
		StatusCode: http.StatusInternalServerError,
		cause:      err,
	}
}

// serverError builds the normalized error for a non-2xx response, preferring
// the backend's own message when the body carried one.
func serverError(status int, message string) *ActionError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &ActionError{
		Reason:     ReasonServer,
		Message:    message,
		StatusCode: status,
	}
}

// IsActionError reports whether err is (or wraps) a normalized backend
// error, returning it when so.
func IsActionError(err error) (*ActionError, bool) {
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return actionErr, true
	}
	return nil, false
}
