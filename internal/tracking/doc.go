// Package tracking keeps a live subscription to one request's event stream.
//
// A Connection is keyed by a tracking token. It connects to
// <ws_url>/<token>/, reconnects with exponential backoff after any unplanned
// close, and dispatches decoded events to the most recently supplied
// Callbacks. Frames that are not valid JSON or carry an unknown type are
// dropped.
//
// Lifecycle mirrors an owning view: New activates, Update re-renders with new
// options, Close unmounts. After Close no socket is opened and no callback runs.
package tracking
