package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/erabu/internal/models"
)

// ErrNotFound is returned for lookups of ids that do not exist.
var ErrNotFound = errors.New("not found")

// SQLiteStorage implements Storage using SQLite. Full file records are
// stored as JSON next to the columns needed for queries, so the schema
// survives record shape changes without migrations.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a database at dbPath and applies the
// schema. Parent directories are created as needed.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS files (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL,
		record TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT,
		icon TEXT,
		created_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveFiles upserts the given records in a single transaction.
func (s *SQLiteStorage) SaveFiles(ctx context.Context, files []models.File) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (id, name, path, record, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, path=excluded.path,
		 record=excluded.record, updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i := range files {
		record, err := json.Marshal(&files[i])
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", files[i].ID, err)
		}
		if _, err := stmt.ExecContext(ctx, files[i].ID, files[i].Name, files[i].Path, string(record), now); err != nil {
			return fmt.Errorf("upsert %s: %w", files[i].ID, err)
		}
	}
	return tx.Commit()
}

// LoadFiles returns every stored record.
func (s *SQLiteStorage) LoadFiles(ctx context.Context) ([]models.File, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		var f models.File
		if err := json.Unmarshal([]byte(record), &f); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// DeleteFile removes one record. Missing ids are not an error.
func (s *SQLiteStorage) DeleteFile(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, id)
	return err
}

// CountFiles returns the number of stored records.
func (s *SQLiteStorage) CountFiles(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&n)
	return n, err
}

// Categories returns all categories ordered by name.
func (s *SQLiteStorage) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, icon, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var cats []models.Category
	for rows.Next() {
		var c models.Category
		var color, icon sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &color, &icon, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Color = color.String
		c.Icon = icon.String
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// SaveCategory upserts a category.
func (s *SQLiteStorage) SaveCategory(ctx context.Context, c *models.Category) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, color, icon, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, color=excluded.color, icon=excluded.icon`,
		c.ID, c.Name, c.Color, c.Icon, c.CreatedAt)
	return err
}

// DeleteCategory removes a category by id.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

// GetPreference returns the stored value for key, or ErrNotFound.
func (s *SQLiteStorage) GetPreference(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return value, err
}

// SetPreference upserts a preference value.
func (s *SQLiteStorage) SetPreference(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value)
	return err
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
