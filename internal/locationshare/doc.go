// Package locationshare submits a customer's position over a one-shot socket.
//
// Share acquires a fix, connects to <ws_url>/<token>/, sends a single
// share_location frame and waits for the first of: a location_received reply,
// an error reply, the reply timeout, the socket closing, or cancellation. The
// socket and timer are released on every path. Share never retries.
package locationshare
