package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection that holds session journals.
type DB struct {
	conn *sql.DB
	path string
}

// New opens (or creates) the SQLite file at dbPath and applies migrations.
func New(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, path: dbPath}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			next_block_id INTEGER NOT NULL DEFAULT 0,
			current_step INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		// One row per history entry; step is the position in the linear history.
		`CREATE TABLE IF NOT EXISTS snapshots (
			document_id TEXT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
			step INTEGER NOT NULL,
			snapshot_json TEXT NOT NULL,
			PRIMARY KEY (document_id, step)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_document ON snapshots(document_id)`,
		`ALTER TABLE documents ADD COLUMN edit_mode INTEGER NOT NULL DEFAULT 1`,
	}

	for _, m := range migrations {
		if _, err := db.conn.Exec(m); err != nil {
			// Re-running ADD COLUMN on an upgraded database fails; ignore that.
			if strings.Contains(m, "ALTER TABLE") && strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}

	return nil
}
