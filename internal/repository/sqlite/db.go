// Package sqlite implements the repository interfaces on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"shootdesk-backend/internal/repository"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL CHECK (name <> ''),
	phone       TEXT,
	role        TEXT NOT NULL CHECK (role IN ('admin', 'photographer')),
	push_token  TEXT,
	created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS credentials (
	profile_id    TEXT PRIMARY KEY REFERENCES profiles(id),
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS availability (
	id             TEXT PRIMARY KEY,
	user_id        TEXT NOT NULL REFERENCES profiles(id),
	available_date TEXT NOT NULL,
	created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, available_date)
);

CREATE TABLE IF NOT EXISTS shoots (
	id              TEXT PRIMARY KEY,
	merchant_name   TEXT NOT NULL CHECK (merchant_name <> ''),
	location        TEXT NOT NULL,
	shoot_date      TEXT NOT NULL,
	shoot_time      TEXT NOT NULL,
	photographer_id TEXT REFERENCES profiles(id),
	status          TEXT NOT NULL DEFAULT 'Assigned' CHECK (status IN
		('Assigned', 'Accepted', 'Reached', 'Started', 'Completed', 'QC_Uploaded', 'Approved')),
	qc_link         TEXT,
	raw_link        TEXT,
	payout          REAL CHECK (payout IS NULL OR payout > 0),
	created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_availability_date ON availability (available_date);
CREATE INDEX IF NOT EXISTS idx_shoots_photographer ON shoots (photographer_id);
CREATE INDEX IF NOT EXISTS idx_shoots_date ON shoots (shoot_date);
`

// Open opens a SQLite database and enables foreign keys
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Migrate creates the tables if they do not exist
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// NewStore wires the SQLite repositories into a repository.Store
func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		Profiles:     NewProfileRepository(db),
		Credentials:  NewCredentialRepository(db),
		Availability: NewAvailabilityRepository(db),
		Shoots:       NewShootRepository(db),
	}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}
