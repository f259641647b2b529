// Package journal persists received tracking events to PostgreSQL.
//
// Events are queued without blocking the tracking stream, batched, and written
// with COPY into the append-only tracking_events table. When the database is
// unreachable the queue keeps the newest events up to a fixed limit.
package journal
