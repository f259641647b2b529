// Package database opens the PostgreSQL pool behind the tracking event journal.
package database
