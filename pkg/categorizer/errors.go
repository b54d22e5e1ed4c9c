package categorizer

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey = errors.New("gemini API key missing")
	ErrNoResponse    = errors.New("no response received from gemini API")
)

// APIError is a non-success response from the classification endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini API request failed with status %d: %s", e.StatusCode, e.Body)
}

// RateLimited reports whether the upstream rejected the call with 429.
func (e *APIError) RateLimited() bool {
	return e.StatusCode == 429
}
