// Package redisstore implements a store backend on Redis.
//
// The collection is a single JSON value; each report is its own key:
//
//	<prefix>dashboards
//	<prefix>report:<link>
//	<prefix>trash:<link>
package redisstore

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/store/internal/record"
)

// DefaultPrefix is the key prefix used when Options.Prefix is empty.
const DefaultPrefix = "navtree:"

// Options configures a [Store].
type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string

	// Client, when set, is used instead of dialing Addr.
	Client *redis.Client
}

// Store is a Redis backed store.
type Store struct {
	rdb    *redis.Client
	prefix string
	owned  bool
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, opts Options) (*Store, error) {
	s := &Store{rdb: opts.Client, prefix: opts.Prefix}
	if s.prefix == "" {
		s.prefix = DefaultPrefix
	}
	if s.rdb == nil {
		if opts.Addr == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "redis address is required")
		}
		s.rdb = redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
		s.owned = true
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		s.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "redis %s unreachable", s.rdb.Options().Addr)
	}
	return s, nil
}

func (s *Store) dashboardsKey() string     { return s.prefix + "dashboards" }
func (s *Store) reportKey(l string) string { return s.prefix + "report:" + l }
func (s *Store) trashKey(l string) string  { return s.prefix + "trash:" + l }

// Dashboards implements store.Backend.
func (s *Store) Dashboards(ctx context.Context) ([]dashboard.Entry, error) {
	data, err := s.rdb.Get(ctx, s.dashboardsKey()).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return []dashboard.Entry{}, nil
	}
	if err != nil {
		return nil, err
	}
	return record.DecodeEntries(data)
}

// ReplaceDashboards implements store.Backend.
func (s *Store) ReplaceDashboards(ctx context.Context, entries []dashboard.Entry) error {
	data, err := record.EncodeEntries(entries)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.dashboardsKey(), data, 0).Err()
}

// Report implements store.Backend.
func (s *Store) Report(ctx context.Context, link string) ([]byte, error) {
	doc, err := s.rdb.Get(ctx, s.reportKey(link)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, record.NotFound(link)
	}
	return doc, err
}

// ScaffoldReport implements store.Backend.
func (s *Store) ScaffoldReport(ctx context.Context, link string) error {
	if err := record.CheckKey(link); err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, s.reportKey(link), record.Scaffold(link), 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return record.Exists(link)
	}
	return nil
}

// RenameReport implements store.Backend. The target key is claimed with
// SETNX before the old key is removed.
func (s *Store) RenameReport(ctx context.Context, oldLink, newLink string) error {
	if err := record.CheckKey(newLink); err != nil {
		return err
	}
	doc, err := s.Report(ctx, oldLink)
	if err != nil || oldLink == newLink {
		return err
	}
	relinked, err := record.Relink(doc, newLink)
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, s.reportKey(newLink), relinked, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return record.Exists(newLink)
	}
	return s.rdb.Del(ctx, s.reportKey(oldLink)).Err()
}

// DeleteReport implements store.Backend. The report is moved to the trash
// namespace.
func (s *Store) DeleteReport(ctx context.Context, link string) error {
	doc, err := s.Report(ctx, link)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.trashKey(link), doc, 0)
		pipe.Del(ctx, s.reportKey(link))
		return nil
	})
	return err
}

// Close implements store.Backend. A client passed in Options is left open.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.rdb.Close()
}
