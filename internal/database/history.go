package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// HistoryEntry is one applied brightness change.
type HistoryEntry struct {
	ID          int64     `db:"id" json:"id"`
	DisplayID   string    `db:"display_id" json:"display_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Level       int       `db:"level" json:"level"`
	Source      string    `db:"source" json:"source"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// HistoryRepository persists and queries brightness changes.
type HistoryRepository struct {
	db    *sqlx.DB
	limit int
}

// NewHistoryRepository creates a repository. limit caps how many rows Recent
// returns when the caller asks for more or passes zero.
func NewHistoryRepository(db *sqlx.DB, limit int) *HistoryRepository {
	if limit <= 0 {
		limit = 100
	}
	return &HistoryRepository{db: db, limit: limit}
}

// Record inserts one applied brightness change.
func (r *HistoryRepository) Record(ctx context.Context, displayID, displayName string, level int, source string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO brightness_history (display_id, display_name, level, source) VALUES (?, ?, ?, ?)`,
		displayID, displayName, level, source)
	return err
}

// Recent returns the newest entries, newest first.
func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > r.limit {
		limit = r.limit
	}

	entries := []HistoryEntry{}
	err := r.db.SelectContext(ctx, &entries,
		`SELECT id, display_id, display_name, level, source, created_at
		 FROM brightness_history ORDER BY id DESC LIMIT ?`, limit)
	return entries, err
}

// Prune deletes entries older than the retention window.
func (r *HistoryRepository) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC()
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM brightness_history WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
