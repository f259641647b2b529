// Package api provides the REST client for the roadside-assistance platform.
//
// Two base URLs are involved:
//   - Public API (https://api.yolpaketi.com): OTP and customer tow-truck requests
//   - Partner API (https://api.yolsepetigo.com/insurance): insurance company
//     registration, profile, requests and pricing
//
// Partner endpoints authenticate with the X-API-Key header. The customer
// tow-truck request authenticates with the X-Verification-Token returned by
// OTP verification.
//
// Only GET requests are retried. Creating, cancelling or updating anything is
// never repeated automatically.
package api
