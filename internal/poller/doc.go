// Package poller re-fetches authoritative request state over REST.
//
// The tracking stream only says that something changed. The Poller turns
// those signals into GET /requests/{id}/ calls:
//   - Refresh queues one fetch per request id, coalescing duplicates
//   - at most one fetch per id is in flight at a time
//   - watched ids are also refreshed on a fixed interval
//   - fetches run with bounded concurrency
package poller
