package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates the SQLite DB file, ensures tables exist and seeds
// the built-in day types and schedules on first run.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := seedDefaults(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return db, nil
}

const sqliteDriverName = "sqlite"

const schemaZones = `
CREATE TABLE IF NOT EXISTS zones (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    thermostats TEXT NOT NULL,
    temp_sensors TEXT,
    humidity_sensors TEXT,
    schedule_id TEXT,
    enabled BOOLEAN NOT NULL DEFAULT 1
);
`

const schemaSchedules = `
CREATE TABLE IF NOT EXISTS schedules (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    enabled BOOLEAN NOT NULL DEFAULT 1,
    week TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
`

const schemaDayTypes = `
CREATE TABLE IF NOT EXISTS day_types (
    id TEXT PRIMARY KEY,
    schedule TEXT NOT NULL,
    description TEXT
);
`

const schemaModeEvents = `
CREATE TABLE IF NOT EXISTS mode_events (
    id TEXT PRIMARY KEY,
    occurred_at TIMESTAMP NOT NULL,
    type TEXT NOT NULL,
    message TEXT NOT NULL,
    meta TEXT
);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL
);
`

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaZones,
		schemaSchedules,
		schemaDayTypes,
		schemaModeEvents,
		schemaUsers,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}

// Built-in day type templates: six HH:MM/temp tokens starting at 00:00.
var defaultDayTypes = []struct{ id, schedule, description string }{
	{"workday", "00:00/17 06:30/19 07:00/21 09:00/17 16:00/21 23:00/17", "Regular work day"},
	{"weekend_day", "00:00/17 07:00/21 12:00/21 18:00/21 22:00/21 23:00/17", "Weekend day, heated through"},
	{"eco_day", "00:00/16 06:00/17 08:00/18 16:00/18 20:00/17 23:00/16", "Reduced eco day"},
}

// defaultSchedules define the canonical "default" and "eco" week plans the
// mode appliers depend on.
var defaultSchedules = []struct{ id, name, week string }{
	{"default", "Default", `{"monday":"workday","tuesday":"workday","wednesday":"workday","thursday":"workday","friday":"workday","saturday":"weekend_day","sunday":"weekend_day"}`},
	{"eco", "Eco", `{"monday":"eco_day","tuesday":"eco_day","wednesday":"eco_day","thursday":"eco_day","friday":"eco_day","saturday":"eco_day","sunday":"eco_day"}`},
}

// seedDefaults inserts the built-in day types and schedules when missing.
// User edits to existing rows are never overwritten.
func seedDefaults(db *sql.DB) error {
	for _, dt := range defaultDayTypes {
		if _, err := db.Exec(
			`INSERT OR IGNORE INTO day_types (id, schedule, description) VALUES (?, ?, ?)`,
			dt.id, dt.schedule, dt.description,
		); err != nil {
			return fmt.Errorf("seed day type %q: %w", dt.id, err)
		}
	}
	for _, s := range defaultSchedules {
		if _, err := db.Exec(
			`INSERT OR IGNORE INTO schedules (id, name, description, enabled, week, created_at, updated_at)
			 VALUES (?, ?, '', 1, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
			s.id, s.name, s.week,
		); err != nil {
			return fmt.Errorf("seed schedule %q: %w", s.id, err)
		}
	}
	return nil
}
