package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SQLiteBackend keeps every user blob in a single-table database.
// Useful when the data directory should be one portable file.
type SQLiteBackend struct {
	db   *sqlx.DB
	path string
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	if path == "" {
		path = "photos.db"
	}
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		username   TEXT PRIMARY KEY,
		blob       BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteBackend{db: db, path: path}, nil
}

func (b *SQLiteBackend) Type() BackendType {
	return BackendSQLite
}

func (b *SQLiteBackend) Put(key string, blob []byte) error {
	_, err := b.db.Exec(
		`INSERT INTO users (username, blob, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(username) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at`,
		key, blob, time.Now(),
	)
	return err
}

func (b *SQLiteBackend) Get(key string) ([]byte, bool, error) {
	var blob []byte
	err := b.db.Get(&blob, `SELECT blob FROM users WHERE username = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

func (b *SQLiteBackend) Delete(key string) error {
	_, err := b.db.Exec(`DELETE FROM users WHERE username = ?`, key)
	return err
}

func (b *SQLiteBackend) List() ([]string, error) {
	var keys []string
	if err := b.db.Select(&keys, `SELECT username FROM users ORDER BY username`); err != nil {
		return nil, err
	}
	return keys, nil
}

func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func (b *SQLiteBackend) Description() string {
	if b.path == ":memory:" {
		return "SQLite (in-memory)"
	}
	return fmt.Sprintf("SQLite (%s)", b.path)
}
