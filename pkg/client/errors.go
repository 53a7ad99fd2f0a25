package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error is a non-2xx response.
type Error struct {
	Message string
	Status  int
	Code    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

// IsStatus reports whether err is an *Error with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// DecodeError means a 2xx response did not match the expected schema.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode response from %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// errorFromResponse picks the message: detail, then details when it is a string,
// then message, then the status text.
func errorFromResponse(res *http.Response, raw []byte) *Error {
	statusText := strings.TrimSpace(strings.TrimPrefix(res.Status, fmt.Sprintf("%d", res.StatusCode)))
	if statusText == "" {
		statusText = http.StatusText(res.StatusCode)
	}
	e := &Error{Status: res.StatusCode, Message: "API request failed: " + statusText}

	var body struct {
		Detail  string          `json:"detail"`
		Details json.RawMessage `json:"details"`
		Message string          `json:"message"`
		Code    string          `json:"code"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return e
	}
	e.Code = body.Code

	var details string
	if len(body.Details) > 0 {
		_ = json.Unmarshal(body.Details, &details)
	}
	switch {
	case body.Detail != "":
		e.Message = body.Detail
	case details != "":
		e.Message = details
	case body.Message != "":
		e.Message = body.Message
	}
	return e
}
