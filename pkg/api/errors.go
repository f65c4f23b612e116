package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is an HTTP-level failure with the backend's message attached.
// Transport failures (no response at all) are plain wrapped errors, so
// callers can tell "server said no" from "could not reach the server".
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %s (status %d)", e.Message, e.StatusCode)
}

func (e *Error) IsAuth() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// Temporary reports whether retrying later could help. Client errors
// (4xx) are permanent until the request itself changes.
func (e *Error) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// AsError unwraps err into *Error when the backend actually responded.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError reports whether err is a transport failure rather than
// an HTTP response. Restore and the order cache fall back to local state
// only in this case.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}
	_, isAPI := AsError(err)
	return !isAPI
}

func decodeError(status int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Details string `json:"details"`
		Message string `json:"message"`
	}
	msg := ""
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Detail != "":
			msg = payload.Detail
		case payload.Details != "":
			msg = payload.Details
		case payload.Message != "":
			msg = payload.Message
		}
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	return &Error{StatusCode: status, Message: msg}
}
