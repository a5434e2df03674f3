package storage

import (
	"database/sql"
	"fmt"
)

var migrations = []string{
	// Migration 1: Initial schema
	`CREATE TABLE IF NOT EXISTS budget_items (
		id          TEXT PRIMARY KEY,
		client_id   TEXT NOT NULL,
		item_code   TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		unit_price  REAL NOT NULL DEFAULT 0.0,
		quantity    REAL NOT NULL DEFAULT 0.0,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(client_id, item_code)
	);

	CREATE INDEX IF NOT EXISTS idx_items_client ON budget_items(client_id);

	CREATE TABLE IF NOT EXISTS budget_settings (
		id          TEXT PRIMARY KEY,
		client_id   TEXT NOT NULL,
		total_funds REAL NOT NULL DEFAULT 0.0,
		start_date  TEXT NOT NULL,
		end_date    TEXT NOT NULL,
		is_active   INTEGER NOT NULL DEFAULT 1,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_settings_client ON budget_settings(client_id, is_active);

	CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		client_id    TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'scheduled',
		session_date TEXT NOT NULL,
		notes        TEXT NOT NULL DEFAULT '',
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_client ON sessions(client_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(session_date);

	CREATE TABLE IF NOT EXISTS session_products (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		item_code  TEXT NOT NULL,
		quantity   REAL NOT NULL DEFAULT 0.0,
		unit_price REAL NOT NULL DEFAULT 0.0
	);

	CREATE INDEX IF NOT EXISTS idx_products_session ON session_products(session_id);

	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`,
}

// runMigrations applies pending schema migrations.
func runMigrations(db *sql.DB) error {
	// Ensure migration tracking table exists
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return fmt.Errorf("create migration table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("check migration version: %w", err)
	}

	for i := currentVersion; i < len(migrations); i++ {
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec(migrations[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("run migration %d: %w", i+1, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", i+1); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", i+1, err)
		}
	}

	return nil
}
