// Package connection implements the reconnecting WebSocket primitive.
//
// The package provides:
//   - Client: a single gorilla/websocket connection with keepalive pings
//   - Backoff: exponential reconnect delay (floor 1s, factor 2, ceiling 30s by default)
//   - Reconnector: owns one Client at a time and re-dials after unplanned closes
//
// A Reconnector never holds a live socket and a pending reconnect timer at the
// same time, and after Stop it neither dials nor invokes its Handler again.
package connection
