package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL CHECK (name <> ''),
	phone       TEXT,
	role        TEXT NOT NULL CHECK (role IN ('admin', 'photographer')),
	push_token  TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS credentials (
	profile_id    UUID PRIMARY KEY REFERENCES profiles(id),
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS availability (
	id             UUID PRIMARY KEY,
	user_id        UUID NOT NULL REFERENCES profiles(id),
	available_date DATE NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (user_id, available_date)
);

CREATE TABLE IF NOT EXISTS shoots (
	id              UUID PRIMARY KEY,
	merchant_name   TEXT NOT NULL CHECK (merchant_name <> ''),
	location        TEXT NOT NULL,
	shoot_date      DATE NOT NULL,
	shoot_time      TIME NOT NULL,
	photographer_id UUID REFERENCES profiles(id),
	status          TEXT NOT NULL DEFAULT 'Assigned' CHECK (status IN
		('Assigned', 'Accepted', 'Reached', 'Started', 'Completed', 'QC_Uploaded', 'Approved')),
	qc_link         TEXT,
	raw_link        TEXT,
	payout          DOUBLE PRECISION CHECK (payout IS NULL OR payout > 0),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_availability_date ON availability (available_date);
CREATE INDEX IF NOT EXISTS idx_shoots_photographer ON shoots (photographer_id);
CREATE INDEX IF NOT EXISTS idx_shoots_date ON shoots (shoot_date);
`

// Migrate creates the tables if they do not exist
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
