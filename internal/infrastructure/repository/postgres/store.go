package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables on startup when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026053101)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	clinic_id TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS medicines (
	id TEXT PRIMARY KEY,
	clinic_id TEXT NOT NULL,
	name TEXT NOT NULL,
	manufacturer TEXT NOT NULL,
	batch_no TEXT NOT NULL,
	quantity INTEGER NOT NULL DEFAULT 0,
	expiry_date TEXT NOT NULL,
	cold_chain BOOLEAN NOT NULL DEFAULT FALSE,
	temperature_range JSONB,
	last_shipment_id TEXT NOT NULL DEFAULT '',
	last_shipment_date TEXT NOT NULL DEFAULT '',
	shipment_status TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_medicines_clinic ON medicines(clinic_id);

CREATE TABLE IF NOT EXISTS shipments (
	id TEXT PRIMARY KEY,
	clinic_id TEXT NOT NULL,
	medicine_id TEXT NOT NULL,
	medicine_name TEXT NOT NULL,
	courier TEXT NOT NULL,
	tracking_number TEXT NOT NULL,
	status TEXT NOT NULL,
	pickup_date TEXT NOT NULL,
	estimated_delivery TEXT NOT NULL,
	actual_delivery TEXT NOT NULL DEFAULT '',
	cold_chain BOOLEAN NOT NULL DEFAULT FALSE,
	min_temp DOUBLE PRECISION,
	max_temp DOUBLE PRECISION,
	current_location JSONB,
	temperature_log JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_shipments_clinic ON shipments(clinic_id);

CREATE TABLE IF NOT EXISTS patients (
	id TEXT PRIMARY KEY,
	clinic_id TEXT NOT NULL,
	name TEXT NOT NULL,
	email TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	date_of_birth TEXT NOT NULL,
	medical_history JSONB NOT NULL DEFAULT '[]'::jsonb,
	allergies JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_patients_clinic_name ON patients(clinic_id, name);

CREATE TABLE IF NOT EXISTS records (
	id TEXT PRIMARY KEY,
	clinic_id TEXT NOT NULL,
	patient_id TEXT NOT NULL,
	date TEXT NOT NULL,
	type TEXT NOT NULL,
	summary TEXT NOT NULL,
	files JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_patient ON records(clinic_id, patient_id);
CREATE INDEX IF NOT EXISTS idx_records_created_at ON records(clinic_id, created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}
