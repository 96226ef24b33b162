// Package postgres installs database-side helpers for working with
// stored UUIDv7 values. Columns hold the raw v7 form; facades exist
// only at application boundaries, so the key never reaches the
// database. The migration pins the key fingerprint so every process
// talking to one database provably carries the same key.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stateless-me/uuidv47"
)

// ErrKeyMismatch is returned when the database was migrated with a
// different key than the application is configured with.
var ErrKeyMismatch = errors.New("uuidv47: database key fingerprint does not match application key")

// Migrate runs the idempotent migration: it records the fingerprint of
// key and installs the SQL helper functions. If the database already
// carries a different fingerprint, Migrate returns ErrKeyMismatch and
// changes nothing.
func Migrate(ctx context.Context, db *sql.DB, key uuidv47.Key) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _uuid47_config (
			id int PRIMARY KEY DEFAULT 1 CHECK (id = 1),
			fingerprint text NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("uuidv47: create config table: %w", err)
	}

	fp := key.Fingerprint()

	var stored string
	err = db.QueryRowContext(ctx, `SELECT fingerprint FROM _uuid47_config`).Scan(&stored)
	if err == nil {
		if stored != fp {
			return fmt.Errorf("%w: db has %s, app has %s", ErrKeyMismatch, stored, fp)
		}
	} else if errors.Is(err, sql.ErrNoRows) {
		_, err = db.ExecContext(ctx, `INSERT INTO _uuid47_config (fingerprint) VALUES ($1)`, fp)
		if err != nil {
			return fmt.Errorf("uuidv47: insert config: %w", err)
		}
	} else {
		return fmt.Errorf("uuidv47: read config: %w", err)
	}

	_, err = db.ExecContext(ctx, helperSQL)
	if err != nil {
		return fmt.Errorf("uuidv47: install helpers: %w", err)
	}

	return nil
}

// GetFingerprint reads the pinned key fingerprint from the database.
func GetFingerprint(ctx context.Context, db *sql.DB) (string, error) {
	var fp string
	err := db.QueryRowContext(ctx, `SELECT fingerprint FROM _uuid47_config`).Scan(&fp)
	return fp, err
}

// helperSQL carries the introspection and generation functions. They
// operate on the raw stored form and never see the key.
const helperSQL = `
-- Version nibble of a stored value
CREATE OR REPLACE FUNCTION uuid47_version(u uuid)
  RETURNS int
  LANGUAGE sql
  IMMUTABLE PARALLEL SAFE STRICT LEAKPROOF
  AS $$
  SELECT get_byte(uuid_send(u), 6) >> 4;
$$;

-- Millisecond timestamp carried in the first 48 bits of a v7 value
CREATE OR REPLACE FUNCTION uuid47_timestamp(u uuid)
  RETURNS timestamptz
  LANGUAGE sql
  IMMUTABLE PARALLEL SAFE STRICT LEAKPROOF
  AS $$
  SELECT to_timestamp((
    (get_byte(uuid_send(u), 0)::bigint << 40) |
    (get_byte(uuid_send(u), 1)::bigint << 32) |
    (get_byte(uuid_send(u), 2)::bigint << 24) |
    (get_byte(uuid_send(u), 3)::bigint << 16) |
    (get_byte(uuid_send(u), 4)::bigint << 8) |
    (get_byte(uuid_send(u), 5)::bigint)
  )::numeric / 1000);
$$;

-- Server-side v7 generation, for defaults and backfills
CREATE OR REPLACE FUNCTION uuid47_generate()
  RETURNS uuid
  LANGUAGE sql
  VOLATILE
  AS $$
  SELECT encode(
    set_bit(
      set_bit(
        overlay(uuid_send(gen_random_uuid())
                PLACING substring(int8send(floor(extract(epoch FROM clock_timestamp()) * 1000)::bigint) FROM 3)
                FROM 1 FOR 6),
        52, 1),
      53, 1),
    'hex')::uuid;
$$;

-- Smallest v7 value for a timestamp, for range scans over id columns
CREATE OR REPLACE FUNCTION uuid47_boundary(ts timestamptz)
  RETURNS uuid
  LANGUAGE sql
  IMMUTABLE PARALLEL SAFE STRICT
  AS $$
  SELECT encode(
    overlay('\x00000000000070008000000000000000'::bytea
            PLACING substring(int8send(floor(extract(epoch FROM ts) * 1000)::bigint) FROM 3)
            FROM 1 FOR 6),
    'hex')::uuid;
$$;
`
