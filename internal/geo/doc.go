// Package geo acquires a device position and classifies geolocation failures.
//
// A Locator is the platform position provider. Acquire wraps it with the bounded
// wait the location share flow needs and turns every failure into an *Error whose
// Kind tells the caller what to show the user.
package geo
