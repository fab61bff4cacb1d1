package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// schemaStatements is applied in order on startup. Every statement is
// idempotent, so a restart against an existing database is a no-op.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS initiates (
		id          BIGSERIAL PRIMARY KEY,
		name        TEXT NOT NULL,
		age         INTEGER NOT NULL DEFAULT 0,
		gender      TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL,
		telegram    TEXT NOT NULL,
		moniker     TEXT NOT NULL DEFAULT '',
		role        TEXT NOT NULL DEFAULT '',
		skills      TEXT NOT NULL DEFAULT '',
		oat         TEXT NOT NULL UNIQUE,
		status      TEXT NOT NULL DEFAULT 'pending',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		reviewed_at TIMESTAMPTZ,
		reviewed_by TEXT,
		chat_id     BIGINT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_initiates_status ON initiates (status, created_at)`,

	`CREATE TABLE IF NOT EXISTS elders (
		user_id    BIGINT PRIMARY KEY,
		username   TEXT NOT NULL DEFAULT '',
		rank       TEXT NOT NULL DEFAULT 'elder',
		granted_by BIGINT NOT NULL,
		added_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS members (
		chat_id    BIGINT NOT NULL,
		user_id    BIGINT NOT NULL,
		username   TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		joined_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		warn_count INTEGER NOT NULL DEFAULT 0,
		banned     BOOLEAN NOT NULL DEFAULT FALSE,
		ban_reason TEXT NOT NULL DEFAULT '',
		banned_at  TIMESTAMPTZ,
		PRIMARY KEY (chat_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS warnings (
		id         BIGSERIAL PRIMARY KEY,
		chat_id    BIGINT NOT NULL,
		user_id    BIGINT NOT NULL,
		issued_by  BIGINT NOT NULL,
		reason     TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_warnings_member ON warnings (chat_id, user_id)`,

	`CREATE TABLE IF NOT EXISTS tickets (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		username   TEXT NOT NULL DEFAULT '',
		chat_id    BIGINT NOT NULL,
		message    TEXT NOT NULL,
		replied    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS chat_settings (
		chat_id           BIGINT PRIMARY KEY,
		assistant_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		enabled_by        BIGINT NOT NULL DEFAULT 0,
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS outbox (
		id         BIGSERIAL PRIMARY KEY,
		kind       TEXT NOT NULL,
		recipient  TEXT NOT NULL,
		subject    TEXT NOT NULL DEFAULT '',
		body       TEXT NOT NULL,
		sent       BOOLEAN NOT NULL DEFAULT FALSE,
		attempts   INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		sent_at    TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbox_unsent ON outbox (created_at) WHERE sent = FALSE`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
