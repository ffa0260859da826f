package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel failure classes. Match with errors.Is; inspect the concrete
// *Error with errors.As for the backend message and field details.
var (
	// ErrNoToken means an operation needed a stored credential and none
	// was present.
	ErrNoToken = errors.New("api: no token stored")

	// ErrAuthRequired means a request required authentication and was
	// blocked before it was sent.
	ErrAuthRequired = errors.New("api: authentication required")

	// ErrUnauthorized is a 401 from the backend: the credential was
	// missing, expired, or rejected.
	ErrUnauthorized = errors.New("api: unauthorized")

	// ErrForbidden is a 403: authenticated, but not allowed. Distinct from
	// ErrUnauthorized and never treated as a session failure.
	ErrForbidden = errors.New("api: forbidden")

	// ErrValidation is a 422 carrying field-level detail.
	ErrValidation = errors.New("api: validation failed")

	// ErrServer is any 5xx.
	ErrServer = errors.New("api: server error")

	// ErrNetwork is a transport failure with no response.
	ErrNetwork = errors.New("api: network failure")
)

// Error is a typed request failure. Message is safe to surface to users;
// raw transport detail stays in the wrapped cause.
type Error struct {
	// Status is the HTTP status, or 0 when no response was received.
	Status int

	// Code is the backend's machine-readable error code, when provided.
	Code string

	// Message is the user-facing message, taken from the backend's error
	// envelope when available.
	Message string

	// Details carries field-level validation detail on 422 responses.
	Details map[string]any

	kind error
}

// Error returns the user-facing message.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.kind != nil {
		return e.kind.Error()
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Unwrap exposes the sentinel class for errors.Is.
func (e *Error) Unwrap() error { return e.kind }

// errorEnvelope accepts both backend failure shapes:
// {"detail": "..."} and {"error": {"code", "message", "details"}}.
type errorEnvelope struct {
	Detail string `json:"detail"`
	Err    *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

// errorFromResponse builds an *Error of the given class from a failure
// response body.
func errorFromResponse(kind error, status int, body []byte) *Error {
	e := &Error{Status: status, kind: kind}

	var env errorEnvelope
	if len(body) > 0 && json.Unmarshal(body, &env) == nil {
		switch {
		case env.Err != nil:
			e.Code = env.Err.Code
			e.Message = env.Err.Message
			e.Details = env.Err.Details
		case env.Detail != "":
			e.Message = env.Detail
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// StatusCode returns the HTTP status carried by an api error, or 0 when the
// error is not an *Error.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}
