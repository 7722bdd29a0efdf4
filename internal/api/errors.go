package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	// KindNetwork means no response reached the server.
	KindNetwork ErrorKind = iota
	// KindAuth covers 401s, expired tokens and rejected credentials.
	KindAuth
	// KindValidation covers 4xx responses carrying field-level detail.
	KindValidation
	// KindServer covers 5xx responses.
	KindServer
)

// Error is what every failed client call returns. Message is safe to show
// to the user as-is; Fields carries per-field validation detail when the
// backend provides it.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
	Fields  map[string][]string
	cause   error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return "api: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func IsAuthError(err error) bool       { return hasKind(err, KindAuth) }
func IsNetworkError(err error) bool    { return hasKind(err, KindNetwork) }
func IsValidationError(err error) bool { return hasKind(err, KindValidation) }
func IsServerError(err error) bool     { return hasKind(err, KindServer) }

func hasKind(err error, kind ErrorKind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func networkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "could not reach the server", cause: err}
}

// classify maps a non-2xx response to the error surface. The backend sends
// {"message": "...", "errors": {"field": ["..."]}} on validation failures.
func classify(status int, body []byte) *Error {
	var payload struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	_ = json.Unmarshal(body, &payload)

	apiErr := &Error{Status: status, Message: payload.Message, Fields: payload.Errors}

	switch {
	case status == http.StatusUnauthorized:
		apiErr.Kind = KindAuth
		if apiErr.Message == "" {
			apiErr.Message = "authentication required"
		}
	case status >= 500:
		apiErr.Kind = KindServer
		if apiErr.Message == "" {
			apiErr.Message = "the server failed to handle the request"
		}
	default:
		apiErr.Kind = KindValidation
		if apiErr.Message == "" {
			apiErr.Message = "the request was rejected"
		}
	}
	return apiErr
}
