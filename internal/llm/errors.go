package llm

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when the configured provider has no credential
var ErrMissingCredential = errors.New("llm credential not configured")

// APIError is a non-success response from a provider
type APIError struct {
	Provider   Provider
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// ResponseError means the provider answered but the content was unusable
type ResponseError struct {
	Message string
	Cause   error
}

func (e *ResponseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ResponseError) Unwrap() error {
	return e.Cause
}
