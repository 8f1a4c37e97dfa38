// Package sqlitestore implements a store backend on a single SQLite database
// using the pure Go modernc.org/sqlite driver.
package sqlitestore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store/internal/record"

	_ "modernc.org/sqlite"
)

// Store is a SQLite backed store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and migrates its
// schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "sqlite path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	// modernc.org/sqlite registers the driver as "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps the pragmas and transactions on the same handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dashboards (
			position INTEGER PRIMARY KEY,
			link TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			is_main INTEGER NOT NULL,
			level TEXT NOT NULL,
			parent TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS reports (
			link TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS trash (
			link TEXT PRIMARY KEY,
			doc TEXT NOT NULL,
			deleted_at_unixms INTEGER NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// Dashboards implements store.Backend.
func (s *Store) Dashboards(ctx context.Context) ([]dashboard.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT link, title, is_main, level, parent FROM dashboards ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []dashboard.Entry{}
	for rows.Next() {
		var (
			e     dashboard.Entry
			level string
		)
		if err := rows.Scan(&e.Link, &e.Title, &e.IsMain, &level, &e.Parent); err != nil {
			return nil, err
		}
		if e.Level, err = dashboard.ParseLevel(level); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "dashboard %q", e.Link)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceDashboards implements store.Backend.
func (s *Store) ReplaceDashboards(ctx context.Context, entries []dashboard.Entry) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM dashboards`); err != nil {
			return err
		}
		for i, e := range dashboard.Clone(entries) {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO dashboards (position, link, title, is_main, level, parent) VALUES (?, ?, ?, ?, ?, ?)`,
				i, e.Link, e.Title, e.IsMain, e.Level.String(), e.Parent)
			if err != nil {
				return fmt.Errorf("insert %q: %w", e.Link, err)
			}
		}
		return nil
	})
}

// Report implements store.Backend.
func (s *Store) Report(ctx context.Context, link string) ([]byte, error) {
	return report(ctx, s.db, link)
}

// ScaffoldReport implements store.Backend.
func (s *Store) ScaffoldReport(ctx context.Context, link string) error {
	if err := record.CheckKey(link); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (link, doc) VALUES (?, ?) ON CONFLICT (link) DO NOTHING`,
		link, string(record.Scaffold(link)))
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return record.Exists(link)
	}
	return err
}

// RenameReport implements store.Backend.
func (s *Store) RenameReport(ctx context.Context, oldLink, newLink string) error {
	if err := record.CheckKey(newLink); err != nil {
		return err
	}
	return s.tx(ctx, func(tx *sql.Tx) error {
		doc, err := report(ctx, tx, oldLink)
		if err != nil || oldLink == newLink {
			return err
		}
		if _, err := report(ctx, tx, newLink); err == nil {
			return record.Exists(newLink)
		} else if !stderrors.Is(err, record.ErrNotFound) {
			return err
		}
		relinked, err := record.Relink(doc, newLink)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM reports WHERE link = ?`, oldLink); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `INSERT INTO reports (link, doc) VALUES (?, ?)`, newLink, string(relinked))
		return err
	})
}

// DeleteReport implements store.Backend. The report is moved to the trash
// table.
func (s *Store) DeleteReport(ctx context.Context, link string) error {
	return s.tx(ctx, func(tx *sql.Tx) error {
		doc, err := report(ctx, tx, link)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO trash (link, doc, deleted_at_unixms) VALUES (?, ?, ?)
			 ON CONFLICT (link) DO UPDATE SET doc = excluded.doc, deleted_at_unixms = excluded.deleted_at_unixms`,
			link, string(doc), time.Now().UnixMilli())
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM reports WHERE link = ?`, link)
		return err
	})
}

// Close implements store.Backend.
func (s *Store) Close() error { return s.db.Close() }

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func report(ctx context.Context, q querier, link string) ([]byte, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT doc FROM reports WHERE link = ?`, link).Scan(&doc)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, record.NotFound(link)
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

func (s *Store) tx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
