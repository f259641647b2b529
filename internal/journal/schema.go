package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Table is the journal table name.
const Table = "tracking_events"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tracking_events (
		id          BIGSERIAL   PRIMARY KEY,
		token       TEXT        NOT NULL,
		event_type  TEXT        NOT NULL,
		offer_id    BIGINT,
		payload     JSONB       NOT NULL,
		received_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS tracking_events_token_received_idx
		ON tracking_events (token, received_at)`,
}

// Execer runs a statement. *pgxpool.Pool implements it.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// EnsureSchema creates the journal table and its index if they are missing.
func EnsureSchema(ctx context.Context, db Execer) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure %s schema: %w", Table, err)
		}
	}
	return nil
}
