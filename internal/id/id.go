// Package id generates prefixed NanoIDs.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RequestPrefix tags ids sent as X-Request-ID.
const RequestPrefix = "req"

// Generate creates a prefixed unique ID, e.g. "req-V1StGXR8_Z5jdHi6B-myT".
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// RequestID returns a fresh request id. When the system has no entropy it
// returns an empty string and the header is omitted.
func RequestID() string {
	id, err := Generate(RequestPrefix)
	if err != nil {
		return ""
	}
	return id
}
