package db

import (
	"database/sql"
)

// MigrateUp creates the subscribers table and its indexes if they do not
// exist. The schema matches the subscription service that owns the write
// path; this service only reads from it, but local and CI environments need
// the table bootstrapped.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS subscribers (
    id              SERIAL PRIMARY KEY,
    email           TEXT NOT NULL UNIQUE,
    subscribed_at   TIMESTAMPTZ NOT NULL,
    unsubscribed_at TIMESTAMPTZ,
    email_verified  BOOLEAN NOT NULL DEFAULT FALSE,
    verified_at     TIMESTAMPTZ,
    ip_address      TEXT,
    user_agent      TEXT,
    country         TEXT,
    city            TEXT,
    created_at      TIMESTAMPTZ DEFAULT now(),
    updated_at      TIMESTAMPTZ DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_subscribers_email ON subscribers(email)`,
		// 24h-window counts filter on these columns
		`CREATE INDEX IF NOT EXISTS idx_subscribers_subscribed_at ON subscribers(subscribed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_subscribers_unsubscribed_at ON subscribers(unsubscribed_at) WHERE unsubscribed_at IS NOT NULL`,
		// Active-subscriber count scans only verified, not-unsubscribed rows
		`CREATE INDEX IF NOT EXISTS idx_subscribers_active ON subscribers(email_verified) WHERE unsubscribed_at IS NULL`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}
