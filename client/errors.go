package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is any failed request. Status 0 means the request never got a
// response (network failure, timeout); those are always retryable.
type APIError struct {
	Status  int
	Message string
	Field   string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Retryable reports whether repeating the request could succeed. Client
// errors are deterministic and never retryable; server errors and network
// failures are.
func (e *APIError) Retryable() bool {
	return e.Status == 0 || e.Status >= 500
}

func (e *APIError) NotFound() bool {
	return e.Status == http.StatusNotFound
}

// Conflict marks duplicate-name and stock collisions; the UI should show
// the message on the named field instead of a generic failure.
func (e *APIError) Conflict() bool {
	return e.Status == http.StatusConflict
}

// IsNotFound reports whether err is an APIError with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

func IsRetryable(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}

// parseAPIError digs the human message out of an error body. Different
// backends spell the key differently, so all known spellings are tried
// before falling back to the raw body.
func parseAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err == nil {
		for _, key := range []string{"message", "detail", "error"} {
			if value, ok := body[key].(string); ok && value != "" {
				apiErr.Message = value
				break
			}
		}
		if field, ok := body["field"].(string); ok {
			apiErr.Field = field
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
