package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/fieldlab-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client. The caller owns the handle and
// must Close it on shutdown.
func NewPostgres(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// postgresSchema mirrors the document layout: sample images are embedded as JSONB.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	first_name    TEXT NOT NULL,
	middle_name   TEXT,
	last_name     TEXT NOT NULL,
	suffix        TEXT,
	email         TEXT,
	patient_id    TEXT,
	is_approved   BOOLEAN NOT NULL DEFAULT FALSE,
	is_active     BOOLEAN NOT NULL DEFAULT FALSE,
	last_login    TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS patients (
	id                         TEXT PRIMARY KEY,
	user_id                    TEXT,
	first_name                 TEXT NOT NULL,
	middle_name                TEXT,
	last_name                  TEXT NOT NULL,
	suffix                     TEXT,
	date_of_birth              TEXT,
	gender                     TEXT,
	age                        INTEGER,
	civil_status               TEXT,
	phone_number               TEXT,
	alternate_phone            TEXT,
	email                      TEXT,
	address                    TEXT,
	barangay                   TEXT,
	municipality               TEXT,
	province                   TEXT,
	emergency_contact_name     TEXT,
	emergency_contact_phone    TEXT,
	emergency_contact_relation TEXT,
	medical_history            TEXT,
	allergies                  TEXT,
	current_medications        TEXT,
	symptoms                   TEXT,
	referring_physician        TEXT,
	notes                      TEXT,
	created_at                 TIMESTAMPTZ NOT NULL,
	updated_at                 TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sample_collections (
	id              TEXT PRIMARY KEY,
	patient_id      TEXT NOT NULL,
	patient_name    TEXT,
	sample_type     TEXT NOT NULL,
	notes           TEXT,
	images          JSONB NOT NULL DEFAULT '[]',
	collected_by    TEXT,
	collection_date TIMESTAMPTZ NOT NULL,
	lab_status      TEXT NOT NULL DEFAULT 'pending',
	lab_comments    TEXT NOT NULL DEFAULT '',
	reviewed_by     TEXT NOT NULL DEFAULT '',
	reviewed_at     TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sample_collections_patient ON sample_collections (patient_id);

CREATE TABLE IF NOT EXISTS sample_images (
	id           TEXT PRIMARY KEY,
	filename     TEXT NOT NULL,
	content_type TEXT NOT NULL,
	size         BIGINT NOT NULL,
	path         TEXT NOT NULL,
	uploaded_by  TEXT,
	uploaded_at  TIMESTAMPTZ NOT NULL
);
`

// EnsurePostgresSchema creates the tables used by the Postgres storage driver.
func EnsurePostgresSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("ensure postgres schema: %w", err)
	}
	return nil
}
