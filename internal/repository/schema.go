package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
	id              UUID PRIMARY KEY,
	username        TEXT NOT NULL UNIQUE,
	full_name       TEXT NOT NULL,
	password_hash   TEXT NOT NULL,
	birthday        TEXT NOT NULL DEFAULT '',
	phone_no        TEXT NOT NULL UNIQUE,
	phone_verified  BOOLEAN NOT NULL DEFAULT FALSE,
	profile_pic_url TEXT,
	device_token    TEXT,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pins (
	id            UUID PRIMARY KEY,
	user_id       UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	latitude      DOUBLE PRECISION NOT NULL,
	longitude     DOUBLE PRECISION NOT NULL,
	title         TEXT NOT NULL,
	caption       TEXT NOT NULL DEFAULT '',
	visibility    INT NOT NULL DEFAULT 0,
	photo_url     TEXT,
	location_tags TEXT[] NOT NULL DEFAULT '{}',
	user_tags     TEXT[] NOT NULL DEFAULT '{}',
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_pins_user_created ON pins (user_id, created_at DESC);

CREATE TABLE IF NOT EXISTS friendships (
	id         UUID PRIMARY KEY,
	source_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	target_id  UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	status     TEXT NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL
);

-- one edge per unordered pair, whichever side initiated
CREATE UNIQUE INDEX IF NOT EXISTS idx_friendships_pair ON friendships (
	LEAST(source_id, target_id), GREATEST(source_id, target_id)
);

CREATE TABLE IF NOT EXISTS pin_likes (
	pin_id     UUID NOT NULL REFERENCES pins(id) ON DELETE CASCADE,
	user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (pin_id, user_id)
);
`

// EnsureSchema creates the tables and indexes if they do not exist yet
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
