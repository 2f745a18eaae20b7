package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Initialize opens the SQLite database at path, creating parent directories
// on demand, and applies the schema. The database holds only the brightness
// history; settings live in their own JSON file.
func Initialize(path string, logger *logrus.Logger) (*sqlx.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer, local file
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.WithField("path", path).Info("Database initialized")
	return db, nil
}

func applySchema(db *sqlx.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS brightness_history (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		display_id    TEXT NOT NULL,
		display_name  TEXT NOT NULL,
		level         INTEGER NOT NULL,
		source        TEXT NOT NULL DEFAULT 'api',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_brightness_history_created_at
		ON brightness_history(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
