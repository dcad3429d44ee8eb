// Package sqlite implementa los repositorios sobre SQLite (driver modernc,
// sin cgo). Es el storage por defecto cuando hay SQLITE_PATH y no hay
// Postgres configurado.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Open abre (o crea) la base y deja el esquema al día.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	// SQLite con un solo writer; el pool no ayuda acá.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL;`,
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA foreign_keys = ON;`,
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate crea las tablas si no existen.
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("sqlite: migrate: db is nil")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS pets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			species TEXT NOT NULL,
			breed TEXT NOT NULL DEFAULT '',
			sex TEXT NOT NULL,
			birth_date TEXT NULL,
			intake_type TEXT NOT NULL,
			intake_date TEXT NOT NULL,
			status TEXT NOT NULL,
			vaccinated INTEGER NOT NULL DEFAULT 0,
			sterilized INTEGER NOT NULL DEFAULT 0,
			dewormed INTEGER NOT NULL DEFAULT 0,
			adoption_date TEXT NULL,
			adopter_id TEXT NOT NULL DEFAULT '',
			adopter_name TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS adoption_requests (
			id TEXT PRIMARY KEY,
			pet_id TEXT NOT NULL REFERENCES pets(id),
			applicant_id TEXT NOT NULL DEFAULT '',
			applicant_name TEXT NOT NULL,
			applicant_contact TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			review_at TEXT NULL,
			interview_at TEXT NULL,
			trial_at TEXT NULL,
			adoption_at TEXT NULL,
			notes TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS follow_ups (
			id TEXT PRIMARY KEY,
			pet_id TEXT NOT NULL REFERENCES pets(id),
			request_id TEXT NOT NULL DEFAULT '',
			type TEXT NOT NULL,
			scheduled TEXT NOT NULL,
			completed INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT NULL,
			condition TEXT NOT NULL DEFAULT '',
			observations TEXT NOT NULL DEFAULT '',
			responsible_by TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			version INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS medical_records (
			id TEXT PRIMARY KEY,
			pet_id TEXT NOT NULL REFERENCES pets(id),
			kind TEXT NOT NULL,
			event_date TEXT NOT NULL,
			next_dose TEXT NULL,
			sterilizing INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_requests_pet ON adoption_requests(pet_id);
		CREATE INDEX IF NOT EXISTS idx_follow_ups_pet ON follow_ups(pet_id);
		CREATE INDEX IF NOT EXISTS idx_medical_pet ON medical_records(pet_id);
	`)
	if err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// Las fechas viajan como TEXT RFC3339Nano.
func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func fmtTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: fmtTime(*t), Valid: true}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func parseTimePtr(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
