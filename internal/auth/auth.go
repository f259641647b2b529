// Package auth provides the credentials the partner and public APIs accept.
package auth

import (
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Header names.
const (
	HeaderAPIKey            = "X-API-Key"
	HeaderVerificationToken = "X-Verification-Token"
)

// Credential authenticates an outgoing request.
type Credential interface {
	Apply(h http.Header)
}

// APIKey is an insurance company's partner API key.
type APIKey string

// Apply sets the X-API-Key header.
func (k APIKey) Apply(h http.Header) {
	h.Set(HeaderAPIKey, string(k))
}

func (k APIKey) String() string {
	return Redact(string(k))
}

// VerificationToken is the short-lived token returned by OTP verification.
type VerificationToken string

// Apply sets the X-Verification-Token header.
func (t VerificationToken) Apply(h http.Header) {
	h.Set(HeaderVerificationToken, string(t))
}

func (t VerificationToken) String() string {
	return Redact(string(t))
}

// LoadAPIKey reads an API key from a file, ignoring surrounding whitespace.
func LoadAPIKey(path string) (APIKey, error) {
	if path == "" {
		return "", fmt.Errorf("API key path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("key file %s is empty", path)
	}
	return APIKey(key), nil
}

// Redact shortens a secret for logs.
func Redact(secret string) string {
	if len(secret) <= 6 {
		return secret
	}
	return secret[:6] + "..."
}
