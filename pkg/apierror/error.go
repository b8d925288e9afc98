package apierror

import (
	"encoding/json"
	"net/http"
)

// Error represents a structured API error response.
type Error struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// ToJSON converts the error to JSON bytes.
func (e *Error) ToJSON() []byte {
	body, _ := json.Marshal(map[string]any{
		"success": false,
		"error":   e,
	})
	return body
}

// NotFound creates a 404 error.
func NotFound(message string) *Error {
	return &Error{StatusCode: http.StatusNotFound, Code: "not_found", Message: message}
}

// InternalError creates a 500 error.
func InternalError(message string) *Error {
	return &Error{StatusCode: http.StatusInternalServerError, Code: "internal_error", Message: message}
}

// Unavailable creates a 503 error.
func Unavailable(message string) *Error {
	return &Error{StatusCode: http.StatusServiceUnavailable, Code: "unavailable", Message: message}
}
