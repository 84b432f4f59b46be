package inbox

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sentinelops/sentinel/internal/api"
)

// Cache persists the inbox to SQLite so `notify list` has something to
// show before the first fetch and when the backend is unreachable.
type Cache struct {
	conn *sql.DB
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS notifications (
	position   INTEGER NOT NULL,
	id         TEXT PRIMARY KEY,
	type       TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	details    TEXT NOT NULL DEFAULT '',
	priority   TEXT NOT NULL,
	created_at TEXT NOT NULL,
	is_read    INTEGER NOT NULL DEFAULT 0,
	action_url TEXT NOT NULL DEFAULT ''
);
`

// OpenCache opens or creates the notification cache file.
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := conn.Exec(cacheSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &Cache{conn: conn}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.conn.Close()
}

// Save replaces the cached list with the given one, preserving order.
func (c *Cache) Save(ctx context.Context, items []api.Notification) error {
	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM notifications"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear cache: %w", err)
	}

	for i, n := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (position, id, type, title, message, details, priority, created_at, is_read, action_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, i, n.ID, string(n.Type), n.Title, n.Message, n.Details, n.Priority,
			n.CreatedAt.UTC().Format(time.RFC3339Nano), n.IsRead, n.ActionURL)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("cache notification %s: %w", n.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns the cached list in its saved order.
func (c *Cache) Load(ctx context.Context) ([]api.Notification, error) {
	rows, err := c.conn.QueryContext(ctx, `
		SELECT id, type, title, message, details, priority, created_at, is_read, action_url
		FROM notifications ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	defer rows.Close()

	var out []api.Notification
	for rows.Next() {
		var n api.Notification
		var typ, createdAt string
		if err := rows.Scan(&n.ID, &typ, &n.Title, &n.Message, &n.Details, &n.Priority, &createdAt, &n.IsRead, &n.ActionURL); err != nil {
			return nil, fmt.Errorf("scan cached notification: %w", err)
		}
		n.Type = api.NotificationType(typ)
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			n.CreatedAt = ts
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
