package tdam

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors. Operations wrap these with context; match with errors.Is.
var (
	// ErrMissingCredentials is returned when a required credential is neither
	// passed explicitly nor present in the environment.
	ErrMissingCredentials = errors.New("missing credentials")

	// ErrAuthenticationRequired is returned when an authenticated-only
	// operation is called on a public client.
	ErrAuthenticationRequired = errors.New("method requires authentication")

	// ErrInvalidArgument is returned when a caller-supplied parameter violates
	// a precondition. No request is issued.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrSymbolNotFound is returned when the upstream answered successfully
	// but resolved nothing for the requested symbol or contract.
	ErrSymbolNotFound = errors.New("symbol not found")

	// ErrMissingField is returned when a successful response lacks a key the
	// operation depends on.
	ErrMissingField = errors.New("missing field in response")
)

// HTTPError is returned when the API answers with a non-2xx status after the
// permitted retry, if any, has been spent.
type HTTPError struct {
	StatusCode int
	Body       []byte
	Message    string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, msg)
}

// IsNotFound returns true if the error is a 404 Not Found.
func (e *HTTPError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if the error is a 401 Unauthorized.
func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsForbidden returns true if the error is a 403 Forbidden.
func (e *HTTPError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// errorResponse represents the JSON structure of API error responses.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Message          string `json:"message"`
}

// newHTTPError builds an HTTPError from a status and raw body, pulling a
// human readable message out of the body when it is JSON.
func newHTTPError(status int, body []byte) *HTTPError {
	httpErr := &HTTPError{
		StatusCode: status,
		Body:       body,
	}
	if len(body) == 0 {
		return httpErr
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return httpErr
	}

	switch {
	case errResp.ErrorDescription != "":
		httpErr.Message = errResp.ErrorDescription
	case errResp.Error != "":
		httpErr.Message = errResp.Error
	case errResp.Message != "":
		httpErr.Message = errResp.Message
	}
	return httpErr
}

// decodeJSON decodes a response body into the given target.
func decodeJSON(body []byte, target any) error {
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
