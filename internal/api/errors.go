package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is a non-2xx backend response. The backend's own message is kept
// verbatim so the dashboards can surface it to the user.
type Error struct {
	StatusCode int    `json:"status"`
	Message    string `json:"message"`
	Endpoint   string `json:"endpoint"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s: %d %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: %s: %s", e.Endpoint, http.StatusText(e.StatusCode))
}

// decodeError builds an *Error from a response body. Backend error bodies
// are JSON with either a "message" or an "error" field; anything else keeps
// the raw text so nothing is swallowed.
func decodeError(status int, endpoint string, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	msg := ""
	if err := json.Unmarshal(body, &payload); err == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Error
		}
	}
	if msg == "" {
		msg = string(body)
	}
	return &Error{StatusCode: status, Message: msg, Endpoint: endpoint}
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsConflict reports whether err is a backend 409: the slot was taken
// between the availability pre-check and the create call.
func IsConflict(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsUnauthorized reports whether err means the session token was rejected.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}
