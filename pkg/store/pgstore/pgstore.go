// Package pgstore implements a store backend on PostgreSQL using lib/pq.
//
// The connection and the schema are initialised lazily on first use, so
// [New] never touches the network.
package pgstore

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store/internal/record"
)

const (
	defaultTablePrefix = "navtree"
	operationTimeout   = 5 * time.Second
)

type sqlOpenFunc func(driverName, dsn string) (*sql.DB, error)

// Store is a PostgreSQL backed store.
type Store struct {
	dsn    string
	prefix string
	openDB sqlOpenFunc

	initOnce sync.Once
	initErr  error
	db       *sql.DB
}

// Option configures a [Store].
type Option func(*Store)

// WithTablePrefix sets the prefix of the table names. The default is
// "navtree", giving navtree_dashboards, navtree_reports and navtree_trash.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			s.prefix = prefix
		}
	}
}

// New creates a store for the database at dsn.
func New(dsn string, opts ...Option) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "postgres dsn is required")
	}
	s := &Store{
		dsn:    dsn,
		prefix: defaultTablePrefix,
		openDB: sql.Open,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) table(name string) string {
	return pq.QuoteIdentifier(s.prefix + "_" + name)
}

func (s *Store) ensureReady() error {
	s.initOnce.Do(func() {
		db, err := s.openDB("postgres", s.dsn)
		if err != nil {
			s.initErr = err
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
		defer cancel()

		stmts := []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					position INTEGER PRIMARY KEY,
					link TEXT NOT NULL UNIQUE,
					title TEXT NOT NULL,
					is_main BOOLEAN NOT NULL,
					level TEXT NOT NULL,
					parent TEXT NOT NULL
				)`, s.table("dashboards")),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					link TEXT PRIMARY KEY,
					doc TEXT NOT NULL
				)`, s.table("reports")),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s (
					link TEXT PRIMARY KEY,
					doc TEXT NOT NULL,
					deleted_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				)`, s.table("trash")),
		}
		for _, st := range stmts {
			if _, err := db.ExecContext(ctx, st); err != nil {
				_ = db.Close()
				s.initErr = err
				return
			}
		}
		s.db = db
	})
	if s.initErr != nil {
		return errors.Wrap(errors.ErrCodeNetwork, s.initErr, "postgres store unavailable")
	}
	return nil
}

func (s *Store) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, operationTimeout)
}

// Dashboards implements store.Backend.
func (s *Store) Dashboards(ctx context.Context) ([]dashboard.Entry, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`SELECT link, title, is_main, level, parent FROM %s ORDER BY position`, s.table("dashboards"))
	rows, err := s.db.QueryContext(ctx, query)
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
	return s.tx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		table := s.table("dashboards")
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
		insert := fmt.Sprintf(`INSERT INTO %s (position, link, title, is_main, level, parent) VALUES ($1, $2, $3, $4, $5, $6)`, table)
		for i, e := range dashboard.Clone(entries) {
			if _, err := tx.ExecContext(ctx, insert, i, e.Link, e.Title, e.IsMain, e.Level.String(), e.Parent); err != nil {
				return fmt.Errorf("insert %q: %w", e.Link, err)
			}
		}
		return nil
	})
}

// Report implements store.Backend.
func (s *Store) Report(ctx context.Context, link string) ([]byte, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	ctx, cancel := s.timeout(ctx)
	defer cancel()
	return s.report(ctx, s.db, link)
}

// ScaffoldReport implements store.Backend.
func (s *Store) ScaffoldReport(ctx context.Context, link string) error {
	if err := record.CheckKey(link); err != nil {
		return err
	}
	if err := s.ensureReady(); err != nil {
		return err
	}
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	query := fmt.Sprintf(`INSERT INTO %s (link, doc) VALUES ($1, $2) ON CONFLICT (link) DO NOTHING`, s.table("reports"))
	res, err := s.db.ExecContext(ctx, query, link, string(record.Scaffold(link)))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return record.Exists(link)
	}
	return nil
}

// RenameReport implements store.Backend.
func (s *Store) RenameReport(ctx context.Context, oldLink, newLink string) error {
	if err := record.CheckKey(newLink); err != nil {
		return err
	}
	return s.tx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		doc, err := s.report(ctx, tx, oldLink)
		if err != nil || oldLink == newLink {
			return err
		}
		relinked, err := record.Relink(doc, newLink)
		if err != nil {
			return err
		}
		table := s.table("reports")
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE link = $1`, table), oldLink); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`INSERT INTO %s (link, doc) VALUES ($1, $2)`, table), newLink, string(relinked))
		if isUniqueViolation(err) {
			return record.Exists(newLink)
		}
		return err
	})
}

// DeleteReport implements store.Backend. The report is moved to the trash
// table.
func (s *Store) DeleteReport(ctx context.Context, link string) error {
	return s.tx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		doc, err := s.report(ctx, tx, link)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`
			INSERT INTO %s (link, doc, deleted_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (link)
			DO UPDATE SET doc = EXCLUDED.doc, deleted_at = NOW()`, s.table("trash")), link, string(doc))
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE link = $1`, s.table("reports")), link)
		return err
	})
}

// Close implements store.Backend.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) report(ctx context.Context, q querier, link string) ([]byte, error) {
	var doc string
	query := fmt.Sprintf(`SELECT doc FROM %s WHERE link = $1`, s.table("reports"))
	err := q.QueryRowContext(ctx, query, link).Scan(&doc)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, record.NotFound(link)
	}
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

func (s *Store) tx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	ctx, cancel := s.timeout(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && pqErr.Code == "23505"
}
