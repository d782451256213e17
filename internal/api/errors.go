package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is a structured error returned by the HTTP API.
type APIError struct {
	Status    int
	Code      string
	ErrorCode int
	Message   string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Status > 0 {
		return fmt.Sprintf("api error: %d", e.Status)
	}
	return "api error"
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsBadRequest reports whether err is a 400 from the API.
func IsBadRequest(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
