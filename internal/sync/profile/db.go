package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB is the profile registry, a single-file sqlite database.
type DB struct {
	db *sql.DB
}

// Open opens (creating if needed) the registry at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	instance := &DB{db: db}
	if err := instance.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return instance, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
	name TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	dest TEXT NOT NULL,
	mode TEXT NOT NULL,
	concurrency INTEGER NOT NULL DEFAULT 0,
	abort_on_error INTEGER NOT NULL DEFAULT 0,
	export_formats TEXT,
	exclude_patterns TEXT,
	updated_at INTEGER NOT NULL
);
`

// Upsert inserts or replaces a profile by name.
func (d *DB) Upsert(ctx context.Context, p Profile) error {
	formats, err := json.Marshal(p.ExportFormats)
	if err != nil {
		return err
	}
	excludes, err := json.Marshal(p.Exclude)
	if err != nil {
		return err
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO profiles (
			name, source, dest, mode, concurrency, abort_on_error, export_formats, exclude_patterns, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source=excluded.source,
			dest=excluded.dest,
			mode=excluded.mode,
			concurrency=excluded.concurrency,
			abort_on_error=excluded.abort_on_error,
			export_formats=excluded.export_formats,
			exclude_patterns=excluded.exclude_patterns,
			updated_at=excluded.updated_at
	`, p.Name, p.Source, p.Dest, p.Mode, p.Concurrency, boolToInt(p.AbortOnError), string(formats), string(excludes), p.UpdatedAt)
	return err
}

// Get returns a profile by name, or sql.ErrNoRows when absent.
func (d *DB) Get(ctx context.Context, name string) (*Profile, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT name, source, dest, mode, concurrency, abort_on_error, export_formats, exclude_patterns, updated_at
		FROM profiles WHERE name = ?
	`, name)
	return scanProfile(row.Scan)
}

// List returns all profiles ordered by name.
func (d *DB) List(ctx context.Context) ([]Profile, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT name, source, dest, mode, concurrency, abort_on_error, export_formats, exclude_patterns, updated_at
		FROM profiles ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

// Delete removes a profile by name. Deleting an absent profile is a no-op.
func (d *DB) Delete(ctx context.Context, name string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM profiles WHERE name = ?`, name)
	return err
}

func scanProfile(scan func(dest ...any) error) (*Profile, error) {
	var p Profile
	var abortOnError int
	var formats, excludes string
	err := scan(&p.Name, &p.Source, &p.Dest, &p.Mode, &p.Concurrency, &abortOnError, &formats, &excludes, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.AbortOnError = abortOnError != 0
	if formats != "" && formats != "null" {
		_ = json.Unmarshal([]byte(formats), &p.ExportFormats)
	}
	if excludes != "" && excludes != "null" {
		_ = json.Unmarshal([]byte(excludes), &p.Exclude)
	}
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
