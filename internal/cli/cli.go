package cli

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/navtree/internal/config"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/httputil"
	"github.com/matzehuels/navtree/pkg/navigation"
	"github.com/matzehuels/navtree/pkg/observability"
	"github.com/matzehuels/navtree/pkg/remote"
	"github.com/matzehuels/navtree/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "navtree"

	// snapshotTTL bounds how old a cached remote collection may be when the
	// server cannot be reached.
	snapshotTTL = 7 * 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	url        string
	backend    string
	dataDir    string
	verbose    bool

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the loaded configuration, or the defaults before any
// command ran.
func (c *CLI) Config() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// loadConfig reads the config file and applies the global flags on top.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	for _, key := range cfg.Undecoded {
		c.Logger.Warn("unknown config key", "key", key)
	}
	if c.url != "" {
		cfg.Client.URL = c.url
	}
	if c.backend != "" {
		cfg.Server.Backend = c.backend
	}
	if c.dataDir != "" {
		cfg.Server.DataDir = c.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Backends
// =============================================================================

// openBackend connects to the remote server when a URL is configured and
// opens the configured local backend otherwise.
func (c *CLI) openBackend(ctx context.Context) (store.Backend, error) {
	cfg := c.Config()
	if cfg.Client.URL == "" {
		c.Logger.Debug("opening local backend", "backend", store.Describe(cfg.Server.StoreConfig()))
		return store.Open(ctx, cfg.Server.StoreConfig())
	}

	opts := []remote.Option{
		remote.WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
		remote.WithRetries(cfg.Client.Retries, remote.DefaultRetryDelay),
		remote.WithLogger(c.Logger),
	}
	if cache, err := snapshotCache(); err == nil {
		opts = append(opts, remote.WithSnapshots(cache))
	} else {
		c.Logger.Debug("snapshot cache disabled", "err", err)
	}
	client, err := remote.New(cfg.Client.URL, opts...)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("using remote store", "url", client.URL())
	return client, nil
}

func snapshotDir() (string, error) {
	dir, err := config.CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshots"), nil
}

func snapshotCache() (*httputil.Cache, error) {
	dir, err := snapshotDir()
	if err != nil {
		return nil, err
	}
	return httputil.NewCache(dir, snapshotTTL)
}

// =============================================================================
// Sessions
// =============================================================================

// session is a loaded navigation service over an open backend.
type session struct {
	svc      *navigation.Service
	backend  store.Backend
	failures *failureHooks
	restore  observability.StoreHooks
}

type sessionOptions struct {
	settleDelay time.Duration
	navigate    func(url string)
}

// openSession opens the backend and loads the collection. Remote calls that
// fail are recorded so that [session.finish] can report them.
func (c *CLI) openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	backend, err := c.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	navigate := opts.navigate
	if navigate == nil {
		navigate = func(url string) { c.Logger.Debug("navigate", "url", url) }
	}
	svc := navigation.New(backend,
		navigation.WithLogger(c.Logger),
		navigation.WithSettleDelay(opts.settleDelay),
		navigation.WithRequestTimeout(c.Config().Client.Timeout),
		navigation.WithNavigator(navigation.NavigatorFunc(navigate)),
	)

	s := &session{
		svc:      svc,
		backend:  backend,
		failures: &failureHooks{},
		restore:  observability.Store(),
	}
	observability.SetStoreHooks(s.failures)

	if err := svc.Load(ctx); err != nil {
		_ = s.close()
		return nil, err
	}
	return s, nil
}

// finish waits for pending remote calls and closes the session. It returns
// an error when any remote call failed.
func (s *session) finish(ctx context.Context) error {
	flushErr := s.svc.Flush(ctx)
	closeErr := s.close()
	if flushErr != nil {
		return flushErr
	}
	if err := s.failures.err(); err != nil {
		return err
	}
	return closeErr
}

func (s *session) close() error {
	err := s.svc.Close()
	if cerr := s.backend.Close(); err == nil {
		err = cerr
	}
	observability.SetStoreHooks(s.restore)
	return err
}

// failureHooks records failed remote calls.
type failureHooks struct {
	observability.NoopStoreHooks

	mu     sync.Mutex
	failed []string
	first  error
}

func (f *failureHooks) OnPersistComplete(_ context.Context, op, link string, _ time.Duration, err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.first == nil {
		f.first = err
	}
	if link != "" {
		op += " " + link
	}
	f.failed = append(f.failed, op)
}

func (f *failureHooks) err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.first == nil {
		return nil
	}
	code := errors.GetCode(f.first)
	if code == "" {
		code = errors.ErrCodeNetwork
	}
	return errors.Wrap(code, f.first,
		"%d remote update(s) failed (%s); the local view may differ from the store", len(f.failed), f.failed[0])
}
