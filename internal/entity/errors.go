package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Input errors
	ErrMissingInput     = errors.New("please provide an image, text, or both")
	ErrMissingField     = errors.New("required field is missing")
	ErrInvalidFormat    = errors.New("invalid format")
	ErrInvalidParameter = errors.New("invalid parameter")

	// File errors
	ErrInvalidFile      = errors.New("invalid file")
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidMediaType = errors.New("invalid media type")

	// Configuration errors
	ErrMissingCredential = errors.New("API key not configured")

	// Wizard errors
	ErrBusy        = errors.New("a request is already in progress")
	ErrInvalidStep = errors.New("action not available on this step")
	ErrNoResult    = errors.New("result not available")
)

// UpstreamError is any failure reported by (or while reaching) the completion API.
// StatusCode is zero when the failure happened before an HTTP status was received.
type UpstreamError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion API error (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("completion API error: %s", e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Details renders the status in the form relayed to the client, or "" when unknown
func (e *UpstreamError) Details() string {
	if e.StatusCode == 0 {
		return ""
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}
