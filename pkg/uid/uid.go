// Package uid generates opaque unique tokens. Used for request ids and as
// the absolute-fallback listing identity when a scrape exposes neither a
// site id nor a usable URL.
package uid

import "github.com/google/uuid"

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
