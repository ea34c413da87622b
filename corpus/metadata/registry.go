// Package metadata maintains the corpus registry: a small SQLite
// database recording, per corpus, its document count, the indexes it
// carries, and the calendar range its dates cover. The query engine
// never reads it; the builder writes it and the CLI reports from it.
package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Info describes one registered corpus.
type Info struct {
	Name          string
	DocumentCount int
	Indexes       []string
	StartDate     time.Time
	EndDate       time.Time
	UpdatedAt     time.Time
}

// Registry wraps the metadata database.
type Registry struct {
	db *sql.DB
}

// Open opens (or creates) the registry at path and ensures the schema.
func Open(path string) (*Registry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open metadata db: %w", err)
	}
	r := &Registry{db: db}
	if err := r.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Registry) ensureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS corpora (
  name        TEXT PRIMARY KEY,
  doc_count   INTEGER NOT NULL,
  indexes     TEXT NOT NULL,
  start_date  TEXT,
  end_date    TEXT,
  updated_at  TEXT NOT NULL
);`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create metadata schema: %w", err)
	}
	return nil
}

// Put inserts or replaces a corpus record.
func (r *Registry) Put(ctx context.Context, info Info) error {
	var start, end string
	if !info.StartDate.IsZero() {
		start = info.StartDate.Format(dateLayout)
	}
	if !info.EndDate.IsZero() {
		end = info.EndDate.Format(dateLayout)
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO corpora (name, doc_count, indexes, start_date, end_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  doc_count = excluded.doc_count,
  indexes = excluded.indexes,
  start_date = excluded.start_date,
  end_date = excluded.end_date,
  updated_at = excluded.updated_at`,
		info.Name, info.DocumentCount, strings.Join(info.Indexes, ","),
		start, end, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("put corpus %q: %w", info.Name, err)
	}
	return nil
}

// Get returns the record for one corpus; the boolean reports presence.
func (r *Registry) Get(ctx context.Context, name string) (Info, bool, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT name, doc_count, indexes, start_date, end_date, updated_at
FROM corpora WHERE name = ?`, name)
	info, err := scanInfo(row)
	if err == sql.ErrNoRows {
		return Info{}, false, nil
	}
	if err != nil {
		return Info{}, false, fmt.Errorf("get corpus %q: %w", name, err)
	}
	return info, true, nil
}

// List returns every registered corpus ordered by name.
func (r *Registry) List(ctx context.Context) ([]Info, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT name, doc_count, indexes, start_date, end_date, updated_at
FROM corpora ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list corpora: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, fmt.Errorf("list corpora: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (r *Registry) Close() error { return r.db.Close() }

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanInfo(s scanner) (Info, error) {
	var info Info
	var indexes, start, end, updated string
	if err := s.Scan(&info.Name, &info.DocumentCount, &indexes, &start, &end, &updated); err != nil {
		return Info{}, err
	}
	if indexes != "" {
		info.Indexes = strings.Split(indexes, ",")
	}
	if start != "" {
		if t, err := time.Parse(dateLayout, start); err == nil {
			info.StartDate = t
		}
	}
	if end != "" {
		if t, err := time.Parse(dateLayout, end); err == nil {
			info.EndDate = t
		}
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		info.UpdatedAt = t
	}
	return info, nil
}
