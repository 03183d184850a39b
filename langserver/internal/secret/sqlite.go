package secret

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite stores secrets in a sqlite database readable by the current user only.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens the database at path. When path is empty the default
// location under $XDG_DATA_HOME is used.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		dir, err := secretDir()
		if err != nil {
			return nil, fmt.Errorf("secretDir: %w", err)
		}
		path = filepath.Join(dir, "secrets.sqlite3")
	}

	if err := touch(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	s := &SQLite{db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS secrets (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create secrets table: %w", err)
	}
	return nil
}

func (s *SQLite) Store(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO secrets (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to store secret %s: %w", key, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM secrets WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get secret %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete secret %s: %w", key, err)
	}
	return nil
}

// touch creates path with mode 0600 so the database never becomes world readable.
func touch(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create directory(%s), %w", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create secret file(%s), %w", path, err)
	}
	f.Close()

	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to chmod secret file(%s), %w", path, err)
	}
	return nil
}

func secretDir() (string, error) {
	dataPath, ok := dataPath()
	if !ok {
		return "", fmt.Errorf("data path not found")
	}
	return filepath.Join(dataPath, "copilotls"), nil
}

func dataPath() (string, bool) {
	if path := os.Getenv("XDG_DATA_HOME"); path != "" {
		return path, true
	}

	if path := os.Getenv("HOME"); path != "" {
		return filepath.Join(path, ".local", "share"), true
	}

	return "", false
}
