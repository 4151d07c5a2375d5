package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const preferencesSchemaSQL = `
CREATE TABLE IF NOT EXISTS preferences (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

// SQLitePersister stores each top-level setting as a JSON value in a
// preferences table.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (creating if needed) the database at dbPath.
func NewSQLitePersister(dbPath string) (*SQLitePersister, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("sqlite settings: db path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), FileModeDir); err != nil {
		return nil, fmt.Errorf("sqlite settings: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite settings: open db: %w", err)
	}
	p := &SQLitePersister{db: db}
	if err := p.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return p, nil
}

func (p *SQLitePersister) init() error {
	if _, err := p.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("sqlite settings: set busy timeout: %w", err)
	}
	if _, err := p.db.Exec(preferencesSchemaSQL); err != nil {
		return fmt.Errorf("sqlite settings: create schema: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (p *SQLitePersister) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

// Load implements Persister. An empty table yields defaults.
func (p *SQLitePersister) Load(ctx context.Context) (Settings, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT key, value FROM preferences")
	if err != nil {
		return Settings{}, fmt.Errorf("sqlite settings: query: %w", err)
	}
	defer rows.Close()

	raw := make(map[string]any)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Settings{}, fmt.Errorf("sqlite settings: scan: %w", err)
		}
		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err != nil {
			return Settings{}, fmt.Errorf("sqlite settings: decode %s: %w", key, err)
		}
		raw[key] = decoded
	}
	if err := rows.Err(); err != nil {
		return Settings{}, fmt.Errorf("sqlite settings: iterate: %w", err)
	}
	return Decode(raw)
}

// Save implements Persister. Keys missing from s are deleted.
func (p *SQLitePersister) Save(ctx context.Context, s Settings) error {
	doc := s.ToMap()
	now := time.Now().UTC().Format(time.RFC3339)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite settings: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	existing, err := existingKeys(ctx, tx)
	if err != nil {
		return err
	}
	for _, key := range existing {
		if _, ok := doc[key]; ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM preferences WHERE key = ?", key); err != nil {
			return fmt.Errorf("sqlite settings: delete %s: %w", key, err)
		}
	}

	for key, value := range doc {
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("sqlite settings: encode %s: %w", key, err)
		}
		_, err = tx.ExecContext(ctx, `
INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(encoded), now)
		if err != nil {
			return fmt.Errorf("sqlite settings: upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite settings: commit: %w", err)
	}
	return nil
}

func existingKeys(ctx context.Context, tx *sql.Tx) ([]string, error) {
	rows, err := tx.QueryContext(ctx, "SELECT key FROM preferences")
	if err != nil {
		return nil, fmt.Errorf("sqlite settings: list keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("sqlite settings: scan key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
