// Package config loads the navtree configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/navtree/config.toml
// (~/.config/navtree/config.toml when XDG_CONFIG_HOME is unset):
//
//	[client]
//	url = "http://127.0.0.1:8480"
//	timeout = "10s"
//	settle_delay = "1.25s"
//	retries = 3
//
//	[server]
//	addr = "127.0.0.1:8480"
//	backend = "file"
//	data_dir = "~/.local/share/navtree"
//
//	[server.redis]
//	addr = "localhost:6379"
//
// A missing file yields [Default]. NAVTREE_URL overrides client.url and
// command flags override both.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/navigation"
	"github.com/matzehuels/navtree/pkg/remote"
	"github.com/matzehuels/navtree/pkg/store"
)

const (
	appName  = "navtree"
	fileName = "config.toml"

	// EnvURL overrides client.url.
	EnvURL = "NAVTREE_URL"

	// DefaultAddr is the listen address of `navtree serve`.
	DefaultAddr = "127.0.0.1:8480"
)

// Config is the decoded configuration file.
type Config struct {
	Client Client `toml:"client"`
	Server Server `toml:"server"`

	// Undecoded lists keys present in the file but unknown to Config.
	Undecoded []string `toml:"-"`
}

// Client configures commands that talk to a remote store.
// An empty URL makes commands open the [server] backend directly.
type Client struct {
	URL         string        `toml:"url"`
	Timeout     time.Duration `toml:"timeout"`
	SettleDelay time.Duration `toml:"settle_delay"`
	Retries     int           `toml:"retries"`
}

// Server configures `navtree serve` and local backends.
type Server struct {
	Addr     string `toml:"addr"`
	Backend  string `toml:"backend"`
	DataDir  string `toml:"data_dir"`
	SQLite   string `toml:"sqlite"`
	Postgres string `toml:"postgres"`
	Redis    Redis  `toml:"redis"`
	Mongo    Mongo  `toml:"mongo"`
}

type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

type Mongo struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Client: Client{
			Timeout:     remote.DefaultTimeout,
			SettleDelay: navigation.DefaultSettleDelay,
			Retries:     remote.DefaultRetries,
		},
		Server: Server{
			Addr:    DefaultAddr,
			Backend: store.BackendFile,
			DataDir: dataDir(),
		},
	}
}

// Path returns the default config file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// CacheDir returns the directory for remote snapshots (~/.cache/navtree/).
func CacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appName)
	}
	return appName
}

// Load reads the file at path on top of [Default] and applies the
// environment. An empty path selects [Path]. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		for _, key := range md.Undecoded() {
			cfg.Undecoded = append(cfg.Undecoded, key.String())
		}
	case os.IsNotExist(err):
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read config %s", path)
	}

	cfg.applyEnv()
	cfg.Server.DataDir = expandHome(cfg.Server.DataDir)
	cfg.Server.SQLite = expandHome(cfg.Server.SQLite)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if u := os.Getenv(EnvURL); u != "" {
		c.Client.URL = u
	}
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// Validate rejects values no command could work with.
func (c *Config) Validate() error {
	if c.Client.Timeout < 0 || c.Client.SettleDelay < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "client durations must not be negative")
	}
	if c.Client.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "client.retries must be at least 1, got %d", c.Client.Retries)
	}
	backend := strings.ToLower(c.Server.Backend)
	if backend != "" && !slices.Contains(store.Backends, backend) {
		return errors.New(errors.ErrCodeUnsupported, "unknown backend %q (want one of %s)",
			c.Server.Backend, strings.Join(store.Backends, ", "))
	}
	return nil
}

// StoreConfig maps the [server] section onto a store configuration.
func (s Server) StoreConfig() store.Config {
	return store.Config{
		Backend:       s.Backend,
		Dir:           s.DataDir,
		SQLitePath:    s.SQLite,
		PostgresDSN:   s.Postgres,
		RedisAddr:     s.Redis.Addr,
		RedisPassword: s.Redis.Password,
		RedisDB:       s.Redis.DB,
		RedisPrefix:   s.Redis.Prefix,
		MongoURI:      s.Mongo.URI,
		MongoDatabase: s.Mongo.Database,
	}
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write stores c at path, creating parent directories.
func (c *Config) Write(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
