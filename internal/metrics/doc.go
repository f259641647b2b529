// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Tracking stream connection state, reconnects and message rates
//   - Discarded stream frames by reason
//   - Location share outcomes and latency
//   - REST API calls by operation and status
//
// A nil *Metrics is valid and records nothing.
package metrics
