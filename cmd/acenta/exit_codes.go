package main

import (
	"errors"

	"github.com/kaan069/yolsepetigoAcenta/internal/api"
	"github.com/kaan069/yolsepetigoAcenta/internal/geo"
)

// Exit codes let scripts tell failure classes apart.
const (
	// ExitCodeGeneralError indicates a generic error
	ExitCodeGeneralError = 1

	// ExitCodeConfigError indicates the configuration could not be loaded or validated
	ExitCodeConfigError = 2

	// ExitCodeInvalidInput indicates a payload or flag was rejected before sending
	ExitCodeInvalidInput = 3

	// ExitCodeAuthError indicates a missing or rejected credential
	ExitCodeAuthError = 4

	// ExitCodeGeolocation indicates no position fix could be obtained
	ExitCodeGeolocation = 5
)

// configError marks configuration failures.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ce *configError
	var apiErr *api.APIError
	var geoErr *geo.Error

	switch {
	case errors.As(err, &ce):
		return ExitCodeConfigError
	case errors.Is(err, api.ErrInvalidPayload), errors.Is(err, errInvalidFlag):
		return ExitCodeInvalidInput
	case errors.Is(err, api.ErrMissingCredential):
		return ExitCodeAuthError
	case errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403):
		return ExitCodeAuthError
	case errors.As(err, &geoErr):
		return ExitCodeGeolocation
	default:
		return ExitCodeGeneralError
	}
}
