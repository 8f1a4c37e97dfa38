package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/navigation"
	"github.com/matzehuels/navtree/pkg/store/internal/record"
	"github.com/matzehuels/navtree/pkg/store/mongostore"
	"github.com/matzehuels/navtree/pkg/store/pgstore"
	"github.com/matzehuels/navtree/pkg/store/redisstore"
	"github.com/matzehuels/navtree/pkg/store/sqlitestore"
)

// Sentinel errors wrapped by the coded errors every backend returns.
var (
	// ErrNotFound is wrapped when a report does not exist.
	ErrNotFound = record.ErrNotFound

	// ErrExists is wrapped when a report already exists.
	ErrExists = record.ErrExists
)

// Backend is a remote store.
type Backend interface {
	navigation.Remote

	// Report returns the report document stored under link.
	Report(ctx context.Context, link string) ([]byte, error)

	// Close releases the backend's connections.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMongo    = "mongo"
)

// Backends lists the names accepted by [Open].
var Backends = []string{BackendMemory, BackendFile, BackendSQLite, BackendPostgres, BackendRedis, BackendMongo}

// Config selects and configures a backend.
type Config struct {
	Backend string // One of Backends; defaults to "file"
	Dir     string // Data directory for the file backend and the default SQLite path

	SQLitePath  string // Defaults to Dir/navtree.db
	PostgresDSN string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	MongoURI      string
	MongoDatabase string
}

// Open creates the backend named by cfg.Backend.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if name == "" {
		name = BackendFile
	}

	switch name {
	case BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return backend(NewFile(cfg.Dir))
	case BackendSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = filepath.Join(cfg.Dir, "navtree.db")
		}
		return backend(sqlitestore.Open(ctx, path))
	case BackendPostgres:
		return backend(pgstore.New(cfg.PostgresDSN))
	case BackendRedis:
		return backend(redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		}))
	case BackendMongo:
		return backend(mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase))
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "unknown store backend %q (want one of %s)",
		cfg.Backend, strings.Join(Backends, ", "))
}

// backend converts a concrete constructor result without leaking a typed nil.
func backend[B Backend](b B, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Describe returns a short human-readable description of cfg's target.
func Describe(cfg Config) string {
	switch strings.ToLower(cfg.Backend) {
	case BackendMemory:
		return "memory"
	case BackendSQLite:
		if cfg.SQLitePath != "" {
			return "sqlite " + cfg.SQLitePath
		}
		return "sqlite " + filepath.Join(cfg.Dir, "navtree.db")
	case BackendPostgres:
		return "postgres"
	case BackendRedis:
		return fmt.Sprintf("redis %s/%d", cfg.RedisAddr, cfg.RedisDB)
	case BackendMongo:
		return "mongo " + cfg.MongoDatabase
	}
	return "file " + cfg.Dir
}

var (
	_ Backend = (*Memory)(nil)
	_ Backend = (*File)(nil)
	_ Backend = (*sqlitestore.Store)(nil)
	_ Backend = (*pgstore.Store)(nil)
	_ Backend = (*redisstore.Store)(nil)
	_ Backend = (*mongostore.Store)(nil)
)
