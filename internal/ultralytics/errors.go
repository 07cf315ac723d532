package ultralytics

import (
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned before any network activity when the client
// has no credential to send.
var ErrMissingAPIKey = errors.New("ultralytics API key is missing")

// ConfigError marks a misconfigured client. It is detected up front, never
// as a consequence of a failed call.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string { return fmt.Sprintf("configuration: %v", e.Err) }

func (e *ConfigError) Unwrap() error { return e.Err }

// TransportError covers timeouts and connection failures reaching the
// hosted endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("inference request failed: %v", e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-success reply from the hosted endpoint. Body is kept for
// diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("inference service returned status %d: %s", e.StatusCode, e.Body)
}
