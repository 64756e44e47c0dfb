// Package sqlite implements the repository interfaces on SQLite via the
// pure-Go modernc.org/sqlite driver, so the binary builds without CGo.
//
// One *DB value implements every repository interface; main wires the same
// handle into each service. ":memory:" gives tests a fresh isolated store.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB pool and exposes one store per repository interface.
// The stores share the pool; main hands each service the store it needs.
type DB struct {
	conn *sql.DB

	Users        *UserStore
	Applications *ApplicationStore
	Activities   *ActivityStore
	Analytics    *AnalyticsStore
	EmailLogs    *EmailLogStore
}

// New opens the database, applies pragmas, and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed during writes; foreign keys are off by
	// default in SQLite and we rely on them for cascade deletes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{
		conn:         conn,
		Users:        &UserStore{conn: conn},
		Applications: &ApplicationStore{conn: conn},
		Activities:   &ActivityStore{conn: conn},
		Analytics:    &AnalyticsStore{conn: conn},
		EmailLogs:    &EmailLogStore{conn: conn},
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates all tables. CREATE TABLE IF NOT EXISTS keeps this safe
// to run on every start.
func (db *DB) migrate() error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id                 TEXT PRIMARY KEY,
				email              TEXT NOT NULL UNIQUE,
				password_hash      TEXT NOT NULL,
				first_name         TEXT NOT NULL DEFAULT '',
				last_name          TEXT NOT NULL DEFAULT '',
				role               TEXT NOT NULL DEFAULT 'user',
				is_email_verified  INTEGER NOT NULL DEFAULT 0,
				is_active          INTEGER NOT NULL DEFAULT 1,
				verification_token TEXT NOT NULL DEFAULT '',
				created_at         DATETIME NOT NULL,
				updated_at         DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_users_verification_token ON users(verification_token);
		`},
		{"applications", `
			CREATE TABLE IF NOT EXISTS applications (
				id               TEXT PRIMARY KEY,
				user_id          TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				company_name     TEXT NOT NULL,
				job_title        TEXT NOT NULL,
				application_date DATETIME NOT NULL,
				status           TEXT NOT NULL DEFAULT 'applied',
				notes            TEXT NOT NULL DEFAULT '',
				resume_url       TEXT NOT NULL DEFAULT '',
				interview_date   DATETIME,
				created_at       DATETIME NOT NULL,
				updated_at       DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_applications_user_status ON applications(user_id, status);
			CREATE INDEX IF NOT EXISTS idx_applications_company ON applications(company_name);
			CREATE INDEX IF NOT EXISTS idx_applications_date ON applications(application_date);
		`},
		{"activities", `
			CREATE TABLE IF NOT EXISTS activities (
				id             TEXT PRIMARY KEY,
				application_id TEXT NOT NULL REFERENCES applications(id) ON DELETE CASCADE,
				kind           TEXT NOT NULL,
				description    TEXT NOT NULL,
				created_at     DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_activities_application ON activities(application_id, created_at);
		`},
		{"system_snapshots", `
			CREATE TABLE IF NOT EXISTS system_snapshots (
				id                      TEXT PRIMARY KEY,
				total_users             INTEGER NOT NULL DEFAULT 0,
				total_applications      INTEGER NOT NULL DEFAULT 0,
				active_applications     INTEGER NOT NULL DEFAULT 0,
				applications_this_month INTEGER NOT NULL DEFAULT 0,
				applications_this_week  INTEGER NOT NULL DEFAULT 0,
				status_distribution     TEXT NOT NULL DEFAULT '{}',
				top_companies           TEXT NOT NULL DEFAULT '[]',
				monthly_trend           TEXT NOT NULL DEFAULT '[]',
				created_at              DATETIME NOT NULL,
				updated_at              DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_system_snapshots_created ON system_snapshots(created_at);
		`},
		{"user_snapshots", `
			CREATE TABLE IF NOT EXISTS user_snapshots (
				id                      TEXT PRIMARY KEY,
				user_id                 TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
				total_applications      INTEGER NOT NULL DEFAULT 0,
				applications_this_month INTEGER NOT NULL DEFAULT 0,
				applications_this_week  INTEGER NOT NULL DEFAULT 0,
				status_distribution     TEXT NOT NULL DEFAULT '{}',
				top_companies           TEXT NOT NULL DEFAULT '[]',
				average_response_days   REAL NOT NULL DEFAULT 0,
				created_at              DATETIME NOT NULL,
				updated_at              DATETIME NOT NULL
			);
		`},
		// user_id here is a weak reference on purpose: broadcast attempts
		// may outlive the account they targeted, and the log must survive
		// user deletion.
		{"email_logs", `
			CREATE TABLE IF NOT EXISTS email_logs (
				id            TEXT PRIMARY KEY,
				user_id       TEXT NOT NULL DEFAULT '',
				kind          TEXT NOT NULL,
				recipient     TEXT NOT NULL,
				subject       TEXT NOT NULL,
				sent_at       DATETIME NOT NULL,
				success       INTEGER NOT NULL DEFAULT 0,
				error_message TEXT NOT NULL DEFAULT ''
			);
			CREATE INDEX IF NOT EXISTS idx_email_logs_sent ON email_logs(sent_at);
		`},
	}

	for _, m := range stmts {
		if _, err := db.conn.Exec(m.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", m.name, err)
		}
	}
	return nil
}
